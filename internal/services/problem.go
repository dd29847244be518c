package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/basecase/basecase-backend/internal/apierr"
	rediscache "github.com/basecase/basecase-backend/internal/clients/redis"
	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/repos"
	"github.com/basecase/basecase-backend/internal/slug"
	"github.com/basecase/basecase-backend/internal/types"
)

type CreateProblemInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Tags        []string `json:"tags"`
	Link        string   `json:"link"`
	Companies   []string `json:"companies"`
}

// UpdateProblemInput carries the allow-listed mutable fields; nil means the
// field was absent from the request and stays untouched.
type UpdateProblemInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Difficulty  *string   `json:"difficulty"`
	Tags        *[]string `json:"tags"`
	Link        *string   `json:"link"`
	Companies   *[]string `json:"companies"`
}

type Pagination struct {
	TotalProblems   int64 `json:"totalProblems"`
	TotalPages      int   `json:"totalPages"`
	CurrentPage     int   `json:"currentPage"`
	ProblemsPerPage int   `json:"problemsPerPage"`
}

type ProblemPage struct {
	Problems   []*types.Problem `json:"problems"`
	Pagination Pagination       `json:"pagination"`
}

type ProblemService interface {
	Create(ctx context.Context, tx *gorm.DB, in CreateProblemInput) (*types.Problem, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, problemSlug string) (*types.Problem, error)
	Update(ctx context.Context, tx *gorm.DB, problemSlug string, in UpdateProblemInput) (*types.Problem, error)
	ListActive(ctx context.Context, tx *gorm.DB, page int) (*ProblemPage, error)
	ListInactive(ctx context.Context, tx *gorm.DB) ([]*types.Problem, error)
}

type problemService struct {
	db          *gorm.DB
	log         *logger.Logger
	problemRepo repos.ProblemRepo
	sheetRepo   repos.SheetRepo
	treeCache   rediscache.SheetCache
	perPage     int
}

func NewProblemService(
	db *gorm.DB,
	baseLog *logger.Logger,
	problemRepo repos.ProblemRepo,
	sheetRepo repos.SheetRepo,
	treeCache rediscache.SheetCache,
	perPage int,
) ProblemService {
	serviceLog := baseLog.With("service", "ProblemService")
	if perPage <= 0 {
		perPage = 10
	}
	return &problemService{
		db:          db,
		log:         serviceLog,
		problemRepo: problemRepo,
		sheetRepo:   sheetRepo,
		treeCache:   treeCache,
		perPage:     perPage,
	}
}

// Cached sheet trees embed problem records, so any problem mutation drops
// the cached tree of every sheet containing it. Best effort.
func (ps *problemService) invalidateSheetTrees(ctx context.Context, tx *gorm.DB, problemID uuid.UUID) {
	if ps.treeCache == nil {
		return
	}
	slugs, err := ps.sheetRepo.ListSlugsByProblemID(ctx, tx, problemID)
	if err != nil {
		ps.log.Warn("Sheet cache invalidation lookup failed", "error", err, "problem_id", problemID)
		return
	}
	for _, sheetSlug := range slugs {
		ps.treeCache.Invalidate(ctx, sheetSlug)
	}
}

func (ps *problemService) Create(ctx context.Context, tx *gorm.DB, in CreateProblemInput) (*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	if in.Title == "" || in.Difficulty == "" {
		return nil, apierr.Invalid("missing_fields", "title and difficulty are required")
	}

	problemSlug := slug.Make(in.Title)

	// Check-then-suffix is two statements; a concurrent create of the same
	// title can slip between them. The slug unique index is the backstop and
	// a lost race surfaces as a 409.
	exists, err := ps.problemRepo.SlugExists(ctx, transaction, problemSlug)
	if err != nil {
		return nil, apierr.Internal("check_slug_failed", fmt.Errorf("check slug: %w", err))
	}
	if exists {
		problemSlug = slug.WithSuffix(problemSlug)
	}

	now := time.Now()
	problem := &types.Problem{
		ID:          uuid.New(),
		Slug:        problemSlug,
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  in.Difficulty,
		Tags:        jsonArray(in.Tags),
		Link:        in.Link,
		Companies:   jsonArray(in.Companies),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := ps.problemRepo.Create(ctx, transaction, []*types.Problem{problem}); err != nil {
		ps.log.Error("Create problem failed", "error", err, "slug", problemSlug)
		return nil, apierr.FromStore("create_problem", err)
	}

	return problem, nil
}

// SoftDelete is not idempotent: once a problem is inactive it is treated as
// not found, so a repeated call fails instead of succeeding as a no-op.
func (ps *problemService) SoftDelete(ctx context.Context, tx *gorm.DB, problemSlug string) (*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	problem, err := ps.problemRepo.GetActiveBySlug(ctx, transaction, problemSlug)
	if err != nil {
		return nil, apierr.Internal("load_problem_failed", fmt.Errorf("load problem: %w", err))
	}
	if problem == nil {
		return nil, apierr.NotFound("problem_not_found", "problem not found or already deleted")
	}

	if err := ps.problemRepo.UpdateBySlug(ctx, transaction, problemSlug, map[string]interface{}{
		"is_active": false,
	}); err != nil {
		ps.log.Error("Soft delete failed", "error", err, "slug", problemSlug)
		return nil, apierr.Internal("delete_problem_failed", fmt.Errorf("soft delete problem: %w", err))
	}

	ps.invalidateSheetTrees(ctx, transaction, problem.ID)

	problem.IsActive = false
	return problem, nil
}

func (ps *problemService) Update(ctx context.Context, tx *gorm.DB, problemSlug string, in UpdateProblemInput) (*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	problem, err := ps.problemRepo.GetActiveBySlug(ctx, transaction, problemSlug)
	if err != nil {
		return nil, apierr.Internal("load_problem_failed", fmt.Errorf("load problem: %w", err))
	}
	if problem == nil {
		return nil, apierr.NotFound("problem_not_found", "problem not found")
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Difficulty != nil {
		updates["difficulty"] = *in.Difficulty
	}
	if in.Tags != nil {
		updates["tags"] = jsonArray(*in.Tags)
	}
	if in.Link != nil {
		updates["link"] = *in.Link
	}
	if in.Companies != nil {
		updates["companies"] = jsonArray(*in.Companies)
	}

	newSlug := problemSlug
	if in.Title != nil {
		newSlug = slug.Make(*in.Title)
		existing, err := ps.problemRepo.GetBySlug(ctx, transaction, newSlug)
		if err != nil {
			return nil, apierr.Internal("check_slug_failed", fmt.Errorf("check slug: %w", err))
		}
		// Suffix only when the derived slug belongs to a different record;
		// re-deriving the record's own slug needs no suffix.
		if existing != nil && existing.Slug != problemSlug {
			newSlug = slug.WithSuffix(newSlug)
		}
		updates["slug"] = newSlug
	}

	if len(updates) == 0 {
		return problem, nil
	}

	if err := ps.problemRepo.UpdateBySlug(ctx, transaction, problemSlug, updates); err != nil {
		ps.log.Error("Update problem failed", "error", err, "slug", problemSlug)
		return nil, apierr.FromStore("update_problem", err)
	}

	ps.invalidateSheetTrees(ctx, transaction, problem.ID)

	updated, err := ps.problemRepo.GetBySlug(ctx, transaction, newSlug)
	if err != nil {
		return nil, apierr.Internal("load_problem_failed", fmt.Errorf("reload problem: %w", err))
	}
	if updated == nil {
		return nil, apierr.Internal("load_problem_failed", fmt.Errorf("problem vanished after update"))
	}
	return updated, nil
}

func (ps *problemService) ListActive(ctx context.Context, tx *gorm.DB, page int) (*ProblemPage, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	if page < 1 {
		page = 1
	}

	total, err := ps.problemRepo.CountActive(ctx, transaction)
	if err != nil {
		return nil, apierr.Internal("count_problems_failed", fmt.Errorf("count problems: %w", err))
	}

	totalPages := int(math.Ceil(float64(total) / float64(ps.perPage)))

	// Page 1 of an empty catalogue is a valid empty result, not an error.
	if page > totalPages && total != 0 {
		return nil, apierr.NotFound("page_not_found", "page %d not found", page)
	}

	offset := (page - 1) * ps.perPage
	problems, err := ps.problemRepo.ListActive(ctx, transaction, offset, ps.perPage)
	if err != nil {
		return nil, apierr.Internal("list_problems_failed", fmt.Errorf("list problems: %w", err))
	}
	if problems == nil {
		problems = []*types.Problem{}
	}

	return &ProblemPage{
		Problems: problems,
		Pagination: Pagination{
			TotalProblems:   total,
			TotalPages:      totalPages,
			CurrentPage:     page,
			ProblemsPerPage: ps.perPage,
		},
	}, nil
}

// ListInactive fails on an empty result set. That is intentionally not
// symmetric with ListActive, which treats an empty catalogue as a valid
// empty page.
func (ps *problemService) ListInactive(ctx context.Context, tx *gorm.DB) ([]*types.Problem, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	problems, err := ps.problemRepo.ListInactive(ctx, transaction)
	if err != nil {
		return nil, apierr.Internal("list_inactive_failed", fmt.Errorf("list inactive problems: %w", err))
	}
	if len(problems) == 0 {
		return nil, apierr.NotFound("no_inactive_problems", "no inactive problems found")
	}
	return problems, nil
}

func jsonArray(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}
