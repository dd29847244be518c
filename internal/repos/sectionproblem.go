package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/types"
)

type SectionProblemRepo interface {
	CreateSkipDuplicates(ctx context.Context, tx *gorm.DB, links []*types.SectionProblem) (int64, error)
	GetBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.SectionProblem, error)
	NextOrder(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int, error)
}

type sectionProblemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionProblemRepo(db *gorm.DB, baseLog *logger.Logger) SectionProblemRepo {
	repoLog := baseLog.With("repo", "SectionProblemRepo")
	return &sectionProblemRepo{db: db, log: repoLog}
}

// CreateSkipDuplicates inserts the links, silently skipping any row whose
// (section_id, problem_id) pair already exists, and reports how many rows
// were actually written. Skipped rows still consumed an order value, so the
// order sequence is not guaranteed dense after skips.
func (spr *sectionProblemRepo) CreateSkipDuplicates(ctx context.Context, tx *gorm.DB, links []*types.SectionProblem) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = spr.db
	}

	if len(links) == 0 {
		return 0, nil
	}

	result := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "section_id"}, {Name: "problem_id"}},
			DoNothing: true,
		}).
		Create(&links)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (spr *sectionProblemRepo) GetBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.SectionProblem, error) {
	transaction := tx
	if transaction == nil {
		transaction = spr.db
	}

	var results []*types.SectionProblem
	if len(sectionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("section_id IN ?", sectionIDs).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// NextOrder returns max(order)+1 within the section, 1 for an empty section.
func (spr *sectionProblemRepo) NextOrder(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = spr.db
	}

	var maxOrder int
	if err := transaction.WithContext(ctx).
		Model(&types.SectionProblem{}).
		Where("section_id = ?", sectionID).
		Select(`COALESCE(MAX("order"), 0)`).
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}
