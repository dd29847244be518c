package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basecase/basecase-backend/internal/apierr"
	rediscache "github.com/basecase/basecase-backend/internal/clients/redis"
	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/repos"
	"github.com/basecase/basecase-backend/internal/slug"
	"github.com/basecase/basecase-backend/internal/types"
)

type CreateSheetInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CreateSectionInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type SheetService interface {
	CreateSheet(ctx context.Context, tx *gorm.DB, in CreateSheetInput) (*types.Sheet, error)
	CreateSection(ctx context.Context, tx *gorm.DB, sheetSlug string, in CreateSectionInput) (*types.SheetSection, error)
	AttachProblems(ctx context.Context, sectionID uuid.UUID, problemIDs []uuid.UUID) (int, error)
	ListSheets(ctx context.Context, tx *gorm.DB) ([]*types.Sheet, error)
	GetSheetTree(ctx context.Context, tx *gorm.DB, sheetSlug string) (*types.Sheet, error)
}

type sheetService struct {
	db                 *gorm.DB
	log                *logger.Logger
	sheetRepo          repos.SheetRepo
	sheetSectionRepo   repos.SheetSectionRepo
	sectionProblemRepo repos.SectionProblemRepo
	problemRepo        repos.ProblemRepo
	treeCache          rediscache.SheetCache
}

func NewSheetService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sheetRepo repos.SheetRepo,
	sheetSectionRepo repos.SheetSectionRepo,
	sectionProblemRepo repos.SectionProblemRepo,
	problemRepo repos.ProblemRepo,
	treeCache rediscache.SheetCache,
) SheetService {
	serviceLog := baseLog.With("service", "SheetService")
	return &sheetService{
		db:                 db,
		log:                serviceLog,
		sheetRepo:          sheetRepo,
		sheetSectionRepo:   sheetSectionRepo,
		sectionProblemRepo: sectionProblemRepo,
		problemRepo:        problemRepo,
		treeCache:          treeCache,
	}
}

func (ss *sheetService) CreateSheet(ctx context.Context, tx *gorm.DB, in CreateSheetInput) (*types.Sheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	if in.Title == "" {
		return nil, apierr.Invalid("missing_fields", "title is required for the sheet")
	}

	sheetSlug := slug.Make(in.Title)
	exists, err := ss.sheetRepo.SlugExists(ctx, transaction, sheetSlug)
	if err != nil {
		return nil, apierr.Internal("check_slug_failed", fmt.Errorf("check sheet slug: %w", err))
	}
	if exists {
		sheetSlug = slug.WithSuffix(sheetSlug)
	}

	now := time.Now()
	sheet := &types.Sheet{
		ID:          uuid.New(),
		Slug:        sheetSlug,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := ss.sheetRepo.Create(ctx, transaction, []*types.Sheet{sheet}); err != nil {
		ss.log.Error("Create sheet failed", "error", err, "slug", sheetSlug)
		return nil, apierr.FromStore("create_sheet", err)
	}

	return sheet, nil
}

func (ss *sheetService) CreateSection(ctx context.Context, tx *gorm.DB, sheetSlug string, in CreateSectionInput) (*types.SheetSection, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	sheet, err := ss.sheetRepo.GetBySlug(ctx, transaction, sheetSlug)
	if err != nil {
		return nil, apierr.Internal("load_sheet_failed", fmt.Errorf("load sheet: %w", err))
	}
	if sheet == nil {
		return nil, apierr.NotFound("sheet_not_found", "no sheet found with the given slug")
	}

	// Each attempt runs in its own transaction scope (a savepoint when the
	// caller passed one), so a unique violation rolls back cleanly and the
	// retry can recompute the order.
	attempt := func() (*types.SheetSection, error) {
		var section *types.SheetSection
		err := transaction.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			created, err := ss.createSectionAtNextOrder(ctx, tx, sheet.ID, in)
			if err != nil {
				return err
			}
			section = created
			return nil
		})
		return section, err
	}

	section, err := attempt()
	if err != nil && apierr.IsUniqueViolation(err) {
		// Two appends observed the same max order. Retry once; a second loss
		// is surfaced as a conflict.
		ss.log.Warn("Section order race lost, retrying once", "sheet_id", sheet.ID, "error", err)
		section, err = attempt()
	}
	if err != nil {
		ss.log.Error("Create section failed", "error", err, "sheet_slug", sheetSlug)
		return nil, apierr.FromStore("create_section", err)
	}

	if ss.treeCache != nil {
		ss.treeCache.Invalidate(ctx, sheet.Slug)
	}
	return section, nil
}

func (ss *sheetService) createSectionAtNextOrder(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, in CreateSectionInput) (*types.SheetSection, error) {
	order, err := ss.sheetSectionRepo.NextOrder(ctx, tx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("next section order: %w", err)
	}

	now := time.Now()
	section := &types.SheetSection{
		ID:          uuid.New(),
		SheetID:     sheetID,
		Title:       in.Title,
		Description: in.Description,
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := ss.sheetSectionRepo.Create(ctx, tx, []*types.SheetSection{section}); err != nil {
		return nil, err
	}
	return section, nil
}

// AttachProblems links the given problems, in input order, to the end of the
// section's sequence as one all-or-nothing transaction. Any unknown problem
// id fails the whole call and nothing is attached. Already-attached problems
// are skipped silently; the returned count is the number of rows submitted,
// which can overstate the rows written when duplicates were skipped.
func (ss *sheetService) AttachProblems(ctx context.Context, sectionID uuid.UUID, problemIDs []uuid.UUID) (int, error) {
	if len(problemIDs) == 0 {
		return 0, apierr.Invalid("missing_fields", "problems array required")
	}

	var sheetID uuid.UUID
	run := func() error {
		return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			section, err := ss.sheetSectionRepo.GetByID(ctx, tx, sectionID)
			if err != nil {
				return apierr.Internal("load_section_failed", fmt.Errorf("load section: %w", err))
			}
			if section == nil {
				return apierr.NotFound("section_not_found", "section not found")
			}
			sheetID = section.SheetID

			problems, err := ss.problemRepo.GetByIDs(ctx, tx, problemIDs)
			if err != nil {
				return apierr.Internal("load_problems_failed", fmt.Errorf("load problems: %w", err))
			}
			if len(problems) != len(problemIDs) {
				return apierr.Invalid("invalid_problem_ids", "some problem IDs are invalid")
			}

			base, err := ss.sectionProblemRepo.NextOrder(ctx, tx, sectionID)
			if err != nil {
				return apierr.Internal("next_order_failed", fmt.Errorf("next link order: %w", err))
			}

			now := time.Now()
			links := make([]*types.SectionProblem, 0, len(problemIDs))
			for i, problemID := range problemIDs {
				links = append(links, &types.SectionProblem{
					ID:        uuid.New(),
					SectionID: sectionID,
					ProblemID: problemID,
					Order:     base + i,
					CreatedAt: now,
					UpdatedAt: now,
				})
			}

			inserted, err := ss.sectionProblemRepo.CreateSkipDuplicates(ctx, tx, links)
			if err != nil {
				return err
			}
			if inserted < int64(len(links)) {
				ss.log.Debug("Some problems were already attached", "section_id", sectionID, "submitted", len(links), "inserted", inserted)
			}
			return nil
		})
	}

	err := run()
	if err != nil && apierr.IsUniqueViolation(err) {
		// The (section_id, order) race: recompute inside a fresh transaction.
		ss.log.Warn("Attach order race lost, retrying once", "section_id", sectionID, "error", err)
		err = run()
	}
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return 0, ae
		}
		ss.log.Error("Attach problems failed", "error", err, "section_id", sectionID)
		return 0, apierr.FromStore("attach_problems", err)
	}

	if ss.treeCache != nil && sheetID != uuid.Nil {
		sheets, err := ss.sheetRepo.GetByIDs(ctx, nil, []uuid.UUID{sheetID})
		if err == nil && len(sheets) == 1 {
			ss.treeCache.Invalidate(ctx, sheets[0].Slug)
		}
	}

	return len(problemIDs), nil
}

func (ss *sheetService) ListSheets(ctx context.Context, tx *gorm.DB) ([]*types.Sheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	sheets, err := ss.sheetRepo.List(ctx, transaction)
	if err != nil {
		return nil, apierr.Internal("list_sheets_failed", fmt.Errorf("list sheets: %w", err))
	}
	if len(sheets) == 0 {
		return nil, apierr.NotFound("no_sheets_found", "no sheets found")
	}
	return sheets, nil
}

func (ss *sheetService) GetSheetTree(ctx context.Context, tx *gorm.DB, sheetSlug string) (*types.Sheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	if ss.treeCache != nil {
		if cached, ok := ss.treeCache.GetTree(ctx, sheetSlug); ok {
			return cached, nil
		}
	}

	sheet, err := ss.sheetRepo.GetTreeBySlug(ctx, transaction, sheetSlug)
	if err != nil {
		return nil, apierr.Internal("load_sheet_failed", fmt.Errorf("load sheet tree: %w", err))
	}
	if sheet == nil {
		return nil, apierr.NotFound("sheet_not_found", "no sheet found with the given slug")
	}

	if ss.treeCache != nil {
		ss.treeCache.SetTree(ctx, sheetSlug, sheet)
	}
	return sheet, nil
}
