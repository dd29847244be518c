package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/types"
)

type SheetSectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sections []*types.SheetSection) ([]*types.SheetSection, error)
	GetByID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.SheetSection, error)
	GetBySheetIDs(ctx context.Context, tx *gorm.DB, sheetIDs []uuid.UUID) ([]*types.SheetSection, error)
	NextOrder(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) (int, error)
}

type sheetSectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSheetSectionRepo(db *gorm.DB, baseLog *logger.Logger) SheetSectionRepo {
	repoLog := baseLog.With("repo", "SheetSectionRepo")
	return &sheetSectionRepo{db: db, log: repoLog}
}

func (ssr *sheetSectionRepo) Create(ctx context.Context, tx *gorm.DB, sections []*types.SheetSection) ([]*types.SheetSection, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}

	if len(sections) == 0 {
		return []*types.SheetSection{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sections).Error; err != nil {
		return nil, err
	}

	return sections, nil
}

func (ssr *sheetSectionRepo) GetByID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.SheetSection, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}

	var results []*types.SheetSection
	if err := transaction.WithContext(ctx).
		Where("id = ?", sectionID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (ssr *sheetSectionRepo) GetBySheetIDs(ctx context.Context, tx *gorm.DB, sheetIDs []uuid.UUID) ([]*types.SheetSection, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}

	var results []*types.SheetSection
	if len(sheetIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("sheet_id IN ?", sheetIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// NextOrder returns max(order)+1 within the sheet, 1 when the sheet has no
// sections yet. The value is derived per call from storage, never from an
// in-memory counter; the (sheet_id, order) unique index catches concurrent
// appends that observed the same base.
func (ssr *sheetSectionRepo) NextOrder(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}

	var maxOrder int
	if err := transaction.WithContext(ctx).
		Model(&types.SheetSection{}).
		Where("sheet_id = ?", sheetID).
		Select(`COALESCE(MAX("order"), 0)`).
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}
