package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/basecase/basecase-backend/internal/testutil"
	"github.com/basecase/basecase-backend/internal/types"
)

func TestSectionProblemRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewSectionProblemRepo(db, testutil.Logger(t))

	sheet := testutil.SeedSheet(t, ctx, tx, "sheet", "sheet")
	section := testutil.SeedSection(t, ctx, tx, sheet.ID, "arrays", 1)
	p1 := testutil.SeedProblem(t, ctx, tx, "one", "one", true)
	p2 := testutil.SeedProblem(t, ctx, tx, "two", "two", true)

	next, err := repo.NextOrder(ctx, tx, section.ID)
	if err != nil || next != 1 {
		t.Fatalf("NextOrder on empty section: next=%d err=%v, want 1", next, err)
	}

	now := time.Now()
	link := func(problemID uuid.UUID, order int) *types.SectionProblem {
		return &types.SectionProblem{
			ID:        uuid.New(),
			SectionID: section.ID,
			ProblemID: problemID,
			Order:     order,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	inserted, err := repo.CreateSkipDuplicates(ctx, tx, []*types.SectionProblem{link(p1.ID, 1), link(p2.ID, 2)})
	if err != nil {
		t.Fatalf("CreateSkipDuplicates: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("inserted=%d, want 2", inserted)
	}

	// Re-attaching an existing pair is a silent skip, not an error.
	inserted, err = repo.CreateSkipDuplicates(ctx, tx, []*types.SectionProblem{link(p1.ID, 3)})
	if err != nil {
		t.Fatalf("CreateSkipDuplicates duplicate: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("duplicate insert reported %d rows", inserted)
	}

	links, err := repo.GetBySectionIDs(ctx, tx, []uuid.UUID{section.ID})
	if err != nil {
		t.Fatalf("GetBySectionIDs: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("links=%d, want 2", len(links))
	}
	if links[0].Order != 1 || links[1].Order != 2 {
		t.Fatalf("links not ordered: %d, %d", links[0].Order, links[1].Order)
	}

	next, err = repo.NextOrder(ctx, tx, section.ID)
	if err != nil || next != 3 {
		t.Fatalf("NextOrder: next=%d err=%v, want 3", next, err)
	}
}
