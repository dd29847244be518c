package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/basecase/basecase-backend/internal/testutil"
	"github.com/basecase/basecase-backend/internal/types"
)

func TestProblemCreateStoresInactiveAsGiven(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	repo := NewProblemRepo(db, log)
	ctx := context.Background()

	now := time.Now()
	retired := &types.Problem{
		ID:         uuid.New(),
		Slug:       "old-problem",
		Title:      "Old Problem",
		Difficulty: "Easy",
		Tags:       datatypes.JSON([]byte("[]")),
		Companies:  datatypes.JSON([]byte("[]")),
		IsActive:   false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := repo.Create(ctx, tx, []*types.Problem{retired}); err != nil {
		t.Fatalf("create: %v", err)
	}

	stored, err := repo.GetBySlug(ctx, tx, "old-problem")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored == nil {
		t.Fatal("inserted problem not found")
	}
	if stored.IsActive {
		t.Fatal("inserted with IsActive=false but stored active")
	}

	if got, err := repo.GetActiveBySlug(ctx, tx, "old-problem"); err != nil {
		t.Fatalf("active lookup: %v", err)
	} else if got != nil {
		t.Fatal("inactive problem returned by active lookup")
	}

	inactive, err := repo.ListInactive(ctx, tx)
	if err != nil {
		t.Fatalf("list inactive: %v", err)
	}
	if len(inactive) != 1 || inactive[0].Slug != "old-problem" {
		t.Fatalf("inactive listing=%v, want the inserted problem", inactive)
	}
}

func TestSeedProblemKeepsActiveFlag(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	repo := NewProblemRepo(db, log)
	ctx := context.Background()

	testutil.SeedProblem(t, ctx, tx, "Two Sum", "two-sum", true)
	testutil.SeedProblem(t, ctx, tx, "Legacy", "legacy", false)

	for _, tc := range []struct {
		slug   string
		active bool
	}{
		{"two-sum", true},
		{"legacy", false},
	} {
		stored, err := repo.GetBySlug(ctx, tx, tc.slug)
		if err != nil {
			t.Fatalf("reload %s: %v", tc.slug, err)
		}
		if stored == nil || stored.IsActive != tc.active {
			t.Fatalf("%s stored=%+v, want is_active=%v", tc.slug, stored, tc.active)
		}
	}
}
