package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/basecase/basecase-backend/internal/types"
)

func SeedProblem(tb testing.TB, ctx context.Context, tx *gorm.DB, title, slug string, active bool) *types.Problem {
	tb.Helper()
	now := time.Now()
	p := &types.Problem{
		ID:         uuid.New(),
		Slug:       slug,
		Title:      title,
		Difficulty: "Easy",
		Tags:       datatypes.JSON([]byte("[]")),
		Companies:  datatypes.JSON([]byte("[]")),
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed problem: %v", err)
	}
	return p
}

func SeedSheet(tb testing.TB, ctx context.Context, tx *gorm.DB, title, slug string) *types.Sheet {
	tb.Helper()
	now := time.Now()
	s := &types.Sheet{
		ID:        uuid.New(),
		Slug:      slug,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sheet: %v", err)
	}
	return s
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, title string, order int) *types.SheetSection {
	tb.Helper()
	now := time.Now()
	sec := &types.SheetSection{
		ID:        uuid.New(),
		SheetID:   sheetID,
		Title:     title,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(sec).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return sec
}

func SeedSectionProblem(tb testing.TB, ctx context.Context, tx *gorm.DB, sectionID, problemID uuid.UUID, order int) *types.SectionProblem {
	tb.Helper()
	now := time.Now()
	sp := &types.SectionProblem{
		ID:        uuid.New(),
		SectionID: sectionID,
		ProblemID: problemID,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(sp).Error; err != nil {
		tb.Fatalf("seed section problem: %v", err)
	}
	return sp
}
