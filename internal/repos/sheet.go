package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/types"
)

type SheetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sheets []*types.Sheet) ([]*types.Sheet, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, sheetIDs []uuid.UUID) ([]*types.Sheet, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Sheet, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Sheet, error)
	GetTreeBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Sheet, error)
	ListSlugsByProblemID(ctx context.Context, tx *gorm.DB, problemID uuid.UUID) ([]string, error)
}

type sheetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSheetRepo(db *gorm.DB, baseLog *logger.Logger) SheetRepo {
	repoLog := baseLog.With("repo", "SheetRepo")
	return &sheetRepo{db: db, log: repoLog}
}

func (sr *sheetRepo) Create(ctx context.Context, tx *gorm.DB, sheets []*types.Sheet) ([]*types.Sheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(sheets) == 0 {
		return []*types.Sheet{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sheets).Error; err != nil {
		return nil, err
	}

	return sheets, nil
}

func (sr *sheetRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sheetIDs []uuid.UUID) ([]*types.Sheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Sheet
	if len(sheetIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", sheetIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *sheetRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Sheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Sheet
	if err := transaction.WithContext(ctx).
		Where("slug = ?", slug).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (sr *sheetRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Sheet{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	exists := count > 0
	return exists, nil
}

func (sr *sheetRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Sheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Sheet
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListSlugsByProblemID resolves the slugs of every sheet whose tree embeds
// the given problem through some section link.
func (sr *sheetRepo) ListSlugsByProblemID(ctx context.Context, tx *gorm.DB, problemID uuid.UUID) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var slugs []string
	if err := transaction.WithContext(ctx).
		Model(&types.Sheet{}).
		Distinct().
		Joins("JOIN sheet_section ON sheet_section.sheet_id = sheet.id").
		Joins("JOIN section_problem ON section_problem.section_id = sheet_section.id").
		Where("section_problem.problem_id = ?", problemID).
		Pluck("sheet.slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}

// GetTreeBySlug reconstructs the full ordered hierarchy in one read:
// sections ascending by order, problems ascending by order within each
// section, and every join row carrying its problem record as stored
// (inactive problems included).
func (sr *sheetRepo) GetTreeBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Sheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	orderAsc := func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}})
	}

	var results []*types.Sheet
	if err := transaction.WithContext(ctx).
		Preload("Sections", orderAsc).
		Preload("Sections.Problems", orderAsc).
		Preload("Sections.Problems.Problem").
		Where("slug = ?", slug).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
