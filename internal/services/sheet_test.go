package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	rediscache "github.com/basecase/basecase-backend/internal/clients/redis"
	"github.com/basecase/basecase-backend/internal/repos"
	"github.com/basecase/basecase-backend/internal/testutil"
	"github.com/basecase/basecase-backend/internal/types"
)

type sheetFixture struct {
	svc         SheetService
	problemSvc  ProblemService
	tx          *gorm.DB
	sectionRepo repos.SheetSectionRepo
	linkRepo    repos.SectionProblemRepo
}

// fakeCache is a map-backed stand-in for the redis sheet cache.
type fakeCache struct {
	trees map[string]*types.Sheet
}

func newFakeCache() *fakeCache {
	return &fakeCache{trees: map[string]*types.Sheet{}}
}

func (f *fakeCache) GetTree(_ context.Context, slug string) (*types.Sheet, bool) {
	sheet, ok := f.trees[slug]
	return sheet, ok
}

func (f *fakeCache) SetTree(_ context.Context, slug string, sheet *types.Sheet) {
	f.trees[slug] = sheet
}

func (f *fakeCache) Invalidate(_ context.Context, slug string) {
	delete(f.trees, slug)
}

func (f *fakeCache) Close() error { return nil }

func newSheetFixture(t *testing.T, cache *fakeCache) sheetFixture {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	problemRepo := repos.NewProblemRepo(tx, log)
	sheetRepo := repos.NewSheetRepo(tx, log)
	sectionRepo := repos.NewSheetSectionRepo(tx, log)
	linkRepo := repos.NewSectionProblemRepo(tx, log)

	// Assign through the interface type so a nil *fakeCache stays a nil
	// interface and the services skip caching entirely.
	var treeCache rediscache.SheetCache
	if cache != nil {
		treeCache = cache
	}
	return sheetFixture{
		svc:         NewSheetService(tx, log, sheetRepo, sectionRepo, linkRepo, problemRepo, treeCache),
		problemSvc:  NewProblemService(tx, log, problemRepo, sheetRepo, treeCache, 10),
		tx:          tx,
		sectionRepo: sectionRepo,
		linkRepo:    linkRepo,
	}
}

func (f sheetFixture) createProblem(t *testing.T, title string) *types.Problem {
	t.Helper()
	p, err := f.problemSvc.Create(context.Background(), nil, CreateProblemInput{Title: title, Difficulty: "Easy"})
	if err != nil {
		t.Fatalf("create problem %q: %v", title, err)
	}
	return p
}

func TestCreateSheet(t *testing.T) {
	f := newSheetFixture(t, nil)
	ctx := context.Background()

	sheet, err := f.svc.CreateSheet(ctx, nil, CreateSheetInput{Title: "Striver SDE Sheet"})
	if err != nil {
		t.Fatalf("CreateSheet: %v", err)
	}
	if sheet.Slug != "striver-sde-sheet" {
		t.Fatalf("slug=%q, want striver-sde-sheet", sheet.Slug)
	}

	_, err = f.svc.CreateSheet(ctx, nil, CreateSheetInput{})
	wantStatus(t, err, http.StatusBadRequest)

	dupe, err := f.svc.CreateSheet(ctx, nil, CreateSheetInput{Title: "Striver SDE Sheet"})
	if err != nil {
		t.Fatalf("duplicate CreateSheet: %v", err)
	}
	if dupe.Slug == sheet.Slug || !strings.HasPrefix(dupe.Slug, "striver-sde-sheet-") {
		t.Fatalf("duplicate sheet slug=%q", dupe.Slug)
	}
}

func TestCreateSectionOrdering(t *testing.T) {
	f := newSheetFixture(t, nil)
	ctx := context.Background()

	sheet, err := f.svc.CreateSheet(ctx, nil, CreateSheetInput{Title: "Striver SDE Sheet"})
	if err != nil {
		t.Fatalf("CreateSheet: %v", err)
	}

	arrays, err := f.svc.CreateSection(ctx, nil, sheet.Slug, CreateSectionInput{Title: "Arrays"})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if arrays.Order != 1 {
		t.Fatalf("first section order=%d, want 1", arrays.Order)
	}

	stringsSec, err := f.svc.CreateSection(ctx, nil, sheet.Slug, CreateSectionInput{Title: "Strings"})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if stringsSec.Order != 2 {
		t.Fatalf("second section order=%d, want 2", stringsSec.Order)
	}

	_, err = f.svc.CreateSection(ctx, nil, "no-such-sheet", CreateSectionInput{Title: "Graphs"})
	wantStatus(t, err, http.StatusNotFound)
}

func TestAttachProblemsAppendsInInputOrder(t *testing.T) {
	f := newSheetFixture(t, nil)
	ctx := context.Background()

	sheet, _ := f.svc.CreateSheet(ctx, nil, CreateSheetInput{Title: "SDE Sheet"})
	section, _ := f.svc.CreateSection(ctx, nil, sheet.Slug, CreateSectionInput{Title: "Arrays"})

	p1 := f.createProblem(t, "Two Sum")
	p2 := f.createProblem(t, "Three Sum")
	if _, err := f.svc.AttachProblems(ctx, section.ID, []uuid.UUID{p1.ID, p2.ID}); err != nil {
		t.Fatalf("first AttachProblems: %v", err)
	}

	p3 := f.createProblem(t, "Four Sum")
	p4 := f.createProblem(t, "Max Subarray")
	p5 := f.createProblem(t, "Rotate Array")
	count, err := f.svc.AttachProblems(ctx, section.ID, []uuid.UUID{p3.ID, p4.ID, p5.ID})
	if err != nil {
		t.Fatalf("second AttachProblems: %v", err)
	}
	if count != 3 {
		t.Fatalf("count=%d, want 3", count)
	}

	links, err := f.linkRepo.GetBySectionIDs(ctx, f.tx, []uuid.UUID{section.ID})
	if err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(links) != 5 {
		t.Fatalf("links=%d, want 5", len(links))
	}
	wantOrder := []uuid.UUID{p1.ID, p2.ID, p3.ID, p4.ID, p5.ID}
	for i, link := range links {
		if link.Order != i+1 {
			t.Fatalf("link %d order=%d, want %d", i, link.Order, i+1)
		}
		if link.ProblemID != wantOrder[i] {
			t.Fatalf("link %d problem=%s, want %s", i, link.ProblemID, wantOrder[i])
		}
	}
}

func TestAttachProblemsIdempotent(t *testing.T) {
	f := newSheetFixture(t, nil)
	ctx := context.Background()

	sheet, _ := f.svc.CreateSheet(ctx, nil, CreateSheetInput{Title: "SDE Sheet"})
	section, _ := f.svc.CreateSection(ctx, nil, sheet.Slug, CreateSectionInput{Title: "Arrays"})

	p1 := f.createProblem(t, "Two Sum")
	p2 := f.createProblem(t, "Three Sum")
	ids := []uuid.UUID{p1.ID, p2.ID}

	if _, err := f.svc.AttachProblems(ctx, section.ID, ids); err != nil {
		t.Fatalf("first AttachProblems: %v", err)
	}
	if _, err := f.svc.AttachProblems(ctx, section.ID, ids); err != nil {
		t.Fatalf("second AttachProblems: %v", err)
	}

	links, err := f.linkRepo.GetBySectionIDs(ctx, f.tx, []uuid.UUID{section.ID})
	if err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("re-attachment duplicated rows: %d links, want 2", len(links))
	}
}

func TestAttachProblemsInvalidIDAttachesNothing(t *testing.T) {
	f := newSheetFixture(t, nil)
	ctx := context.Background()

	sheet, _ := f.svc.CreateSheet(ctx, nil, CreateSheetInput{Title: "SDE Sheet"})
	section, _ := f.svc.CreateSection(ctx, nil, sheet.Slug, CreateSectionInput{Title: "Arrays"})

	p1 := f.createProblem(t, "Two Sum")
	_, err := f.svc.AttachProblems(ctx, section.ID, []uuid.UUID{p1.ID, uuid.New()})
	wantStatus(t, err, http.StatusBadRequest)

	links, err := f.linkRepo.GetBySectionIDs(ctx, f.tx, []uuid.UUID{section.ID})
	if err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("partial attach leaked %d rows", len(links))
	}
}

func TestAttachProblemsValidation(t *testing.T) {
	f := newSheetFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.AttachProblems(ctx, uuid.New(), nil)
	wantStatus(t, err, http.StatusBadRequest)

	p := f.createProblem(t, "Two Sum")
	_, err = f.svc.AttachProblems(ctx, uuid.New(), []uuid.UUID{p.ID})
	wantStatus(t, err, http.StatusNotFound)
}

func TestGetSheetTreeOrdering(t *testing.T) {
	f := newSheetFixture(t, nil)
	ctx := context.Background()

	sheet := testutil.SeedSheet(t, ctx, f.tx, "SDE Sheet", "sde-sheet")
	// Insert out of order on purpose; the read path must sort.
	second := testutil.SeedSection(t, ctx, f.tx, sheet.ID, "Strings", 2)
	first := testutil.SeedSection(t, ctx, f.tx, sheet.ID, "Arrays", 1)

	active := testutil.SeedProblem(t, ctx, f.tx, "Two Sum", "two-sum", true)
	inactive := testutil.SeedProblem(t, ctx, f.tx, "Old Problem", "old-problem", false)
	testutil.SeedSectionProblem(t, ctx, f.tx, first.ID, inactive.ID, 2)
	testutil.SeedSectionProblem(t, ctx, f.tx, first.ID, active.ID, 1)

	tree, err := f.svc.GetSheetTree(ctx, nil, "sde-sheet")
	if err != nil {
		t.Fatalf("GetSheetTree: %v", err)
	}
	if len(tree.Sections) != 2 {
		t.Fatalf("sections=%d, want 2", len(tree.Sections))
	}
	if tree.Sections[0].ID != first.ID || tree.Sections[1].ID != second.ID {
		t.Fatal("sections not sorted ascending by order")
	}

	problems := tree.Sections[0].Problems
	if len(problems) != 2 {
		t.Fatalf("section problems=%d, want 2", len(problems))
	}
	if problems[0].ProblemID != active.ID || problems[1].ProblemID != inactive.ID {
		t.Fatal("section problems not sorted ascending by order")
	}
	// Inactive problems come back as stored, no special-casing.
	if problems[1].Problem == nil || problems[1].Problem.IsActive {
		t.Fatal("inactive problem not returned as stored")
	}

	_, err = f.svc.GetSheetTree(ctx, nil, "no-such-sheet")
	wantStatus(t, err, http.StatusNotFound)
}

func TestGetSheetTreeUsesCache(t *testing.T) {
	cache := newFakeCache()
	f := newSheetFixture(t, cache)
	ctx := context.Background()

	sheet, _ := f.svc.CreateSheet(ctx, nil, CreateSheetInput{Title: "SDE Sheet"})
	if _, err := f.svc.GetSheetTree(ctx, nil, sheet.Slug); err != nil {
		t.Fatalf("GetSheetTree: %v", err)
	}
	if _, ok := cache.trees[sheet.Slug]; !ok {
		t.Fatal("tree not cached after read")
	}

	// A structural mutation must drop the cached tree.
	if _, err := f.svc.CreateSection(ctx, nil, sheet.Slug, CreateSectionInput{Title: "Arrays"}); err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if _, ok := cache.trees[sheet.Slug]; ok {
		t.Fatal("cache not invalidated by CreateSection")
	}

	tree, err := f.svc.GetSheetTree(ctx, nil, sheet.Slug)
	if err != nil {
		t.Fatalf("GetSheetTree after invalidation: %v", err)
	}
	if len(tree.Sections) != 1 {
		t.Fatalf("sections=%d, want 1", len(tree.Sections))
	}
}

// staleNextOrderSectionRepo reports an already-taken order on its first
// read, the way a lost concurrent append would.
type staleNextOrderSectionRepo struct {
	repos.SheetSectionRepo
	calls int
}

func (r *staleNextOrderSectionRepo) NextOrder(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) (int, error) {
	r.calls++
	order, err := r.SheetSectionRepo.NextOrder(ctx, tx, sheetID)
	if err == nil && r.calls == 1 {
		return order - 1, nil
	}
	return order, err
}

func TestCreateSectionRetriesOnOrderConflict(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	problemRepo := repos.NewProblemRepo(tx, log)
	sheetRepo := repos.NewSheetRepo(tx, log)
	sectionRepo := &staleNextOrderSectionRepo{SheetSectionRepo: repos.NewSheetSectionRepo(tx, log)}
	linkRepo := repos.NewSectionProblemRepo(tx, log)
	svc := NewSheetService(tx, log, sheetRepo, sectionRepo, linkRepo, problemRepo, nil)

	sheet := testutil.SeedSheet(t, ctx, tx, "SDE Sheet", "sde-sheet")
	testutil.SeedSection(t, ctx, tx, sheet.ID, "Arrays", 1)

	// First attempt collides with the seeded order and must not poison the
	// surrounding transaction; the retry lands on the real next slot.
	section, err := svc.CreateSection(ctx, tx, sheet.Slug, CreateSectionInput{Title: "Strings"})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if section.Order != 2 {
		t.Fatalf("section order=%d, want 2", section.Order)
	}
	if sectionRepo.calls != 2 {
		t.Fatalf("NextOrder calls=%d, want 2", sectionRepo.calls)
	}

	sections, err := sectionRepo.GetBySheetIDs(ctx, tx, []uuid.UUID{sheet.ID})
	if err != nil {
		t.Fatalf("load sections: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("sections=%d, want 2", len(sections))
	}
}

func TestProblemMutationsInvalidateSheetCache(t *testing.T) {
	cache := newFakeCache()
	f := newSheetFixture(t, cache)
	ctx := context.Background()

	sheet, _ := f.svc.CreateSheet(ctx, nil, CreateSheetInput{Title: "SDE Sheet"})
	section, _ := f.svc.CreateSection(ctx, nil, sheet.Slug, CreateSectionInput{Title: "Arrays"})
	p := f.createProblem(t, "Two Sum")
	if _, err := f.svc.AttachProblems(ctx, section.ID, []uuid.UUID{p.ID}); err != nil {
		t.Fatalf("AttachProblems: %v", err)
	}

	warm := func() {
		t.Helper()
		if _, err := f.svc.GetSheetTree(ctx, nil, sheet.Slug); err != nil {
			t.Fatalf("GetSheetTree: %v", err)
		}
		if _, ok := cache.trees[sheet.Slug]; !ok {
			t.Fatal("tree not cached after read")
		}
	}

	// Cached trees embed problem records, so editing one must drop the tree.
	warm()
	newTitle := "Two Sum Remastered"
	updated, err := f.problemSvc.Update(ctx, nil, p.Slug, UpdateProblemInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, ok := cache.trees[sheet.Slug]; ok {
		t.Fatal("cache not invalidated by problem update")
	}

	warm()
	if _, err := f.problemSvc.SoftDelete(ctx, nil, updated.Slug); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, ok := cache.trees[sheet.Slug]; ok {
		t.Fatal("cache not invalidated by soft delete")
	}

	// A problem outside any sheet touches no cached trees.
	warm()
	loose := f.createProblem(t, "Unlinked")
	if _, err := f.problemSvc.SoftDelete(ctx, nil, loose.Slug); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, ok := cache.trees[sheet.Slug]; !ok {
		t.Fatal("unlinked problem mutation dropped an unrelated tree")
	}
}

func TestListSheets(t *testing.T) {
	f := newSheetFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.ListSheets(ctx, nil)
	wantStatus(t, err, http.StatusNotFound)

	if _, err := f.svc.CreateSheet(ctx, nil, CreateSheetInput{Title: "SDE Sheet"}); err != nil {
		t.Fatalf("CreateSheet: %v", err)
	}
	sheets, err := f.svc.ListSheets(ctx, nil)
	if err != nil {
		t.Fatalf("ListSheets: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("sheets=%d, want 1", len(sheets))
	}
}
