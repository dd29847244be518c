package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/types"
)

type ProblemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, problems []*types.Problem) ([]*types.Problem, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, problemIDs []uuid.UUID) ([]*types.Problem, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Problem, error)
	GetActiveBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Problem, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
	CountActive(ctx context.Context, tx *gorm.DB) (int64, error)
	ListActive(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Problem, error)
	ListInactive(ctx context.Context, tx *gorm.DB) ([]*types.Problem, error)
	UpdateBySlug(ctx context.Context, tx *gorm.DB, slug string, updates map[string]interface{}) error
}

type problemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProblemRepo(db *gorm.DB, baseLog *logger.Logger) ProblemRepo {
	repoLog := baseLog.With("repo", "ProblemRepo")
	return &problemRepo{db: db, log: repoLog}
}

func (pr *problemRepo) Create(ctx context.Context, tx *gorm.DB, problems []*types.Problem) ([]*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(problems) == 0 {
		return []*types.Problem{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&problems).Error; err != nil {
		return nil, err
	}

	return problems, nil
}

func (pr *problemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, problemIDs []uuid.UUID) ([]*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Problem

	if len(problemIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", problemIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *problemRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Problem
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

func (pr *problemRepo) GetActiveBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Problem
	if err := transaction.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (pr *problemRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Problem{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	exists := count > 0
	return exists, nil
}

func (pr *problemRepo) CountActive(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Problem{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (pr *problemRepo) ListActive(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Problem
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *problemRepo) ListInactive(ctx context.Context, tx *gorm.DB) ([]*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Problem
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", false).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *problemRepo) UpdateBySlug(ctx context.Context, tx *gorm.DB, slug string, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(updates) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Problem{}).
		Where("slug = ?", slug).
		Updates(updates).Error
}
