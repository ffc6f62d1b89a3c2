package harvest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harvestkit/lcscharvest/internal/catalog"
	"github.com/harvestkit/lcscharvest/internal/config"
	"github.com/harvestkit/lcscharvest/internal/model"
)

// fakeSource serves scripted pages keyed by page number.
type fakeSource struct {
	pages map[int]*catalog.Page
	errs  map[int]error
	calls []int
}

func (f *fakeSource) FetchPage(_ context.Context, _ model.Category, page int) (*catalog.Page, error) {
	f.calls = append(f.calls, page)
	if err, ok := f.errs[page]; ok {
		return nil, err
	}
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return &catalog.Page{}, nil
}

func (f *fakeSource) Name() string { return "fake" }

func record(mpn, code string) model.Record {
	return model.Record{
		MPN:          mpn,
		LCSCCode:     code,
		Manufacturer: "ACME",
		Description:  "test part",
	}
}

// TestHarvestCategoryPagination tests that the structured page count
// bounds the walk.
func TestHarvestCategoryPagination(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		pages: map[int]*catalog.Page{
			1: {TotalPages: 3, Records: []model.Record{record("AO3400A", "C20917"), record("SI2302", "C10487")}},
			2: {Records: []model.Record{record("RC0402FR", "C25076")}},
			3: {Records: []model.Record{record("CL05A104", "C1525")}},
			4: {Records: []model.Record{record("NEVER", "C99999")}},
		},
	}

	h := New(source, NewAggregator(config.ScopeCategory))
	got := h.HarvestCategory(context.Background(), model.Category{ID: 874, Name: "MOSFETs"})

	if got.PagesFetched != 3 {
		t.Errorf("expected 3 pages fetched, got %d", got.PagesFetched)
	}
	if got.TotalPages != 3 {
		t.Errorf("expected total pages 3, got %d", got.TotalPages)
	}
	if len(got.Records) != 4 {
		t.Errorf("expected 4 records, got %d", len(got.Records))
	}
	if got.Aborted {
		t.Error("expected normal termination")
	}
	if len(source.calls) != 3 {
		t.Errorf("expected pages 1..3 requested, got %v", source.calls)
	}
}

// TestHarvestCategoryEarlyStop tests that a page contributing zero new
// records ends the category even when more pages are advertised.
func TestHarvestCategoryEarlyStop(t *testing.T) {
	t.Parallel()

	same := []model.Record{record("AO3400A", "C20917")}
	source := &fakeSource{
		pages: map[int]*catalog.Page{
			1: {TotalPages: 10, Records: same},
			2: {Records: same}, // all duplicates
			3: {Records: []model.Record{record("SI2302", "C10487")}},
		},
	}

	h := New(source, NewAggregator(config.ScopeCategory))
	got := h.HarvestCategory(context.Background(), model.Category{ID: 874})

	if got.PagesFetched != 2 {
		t.Errorf("expected stop after page 2, got %d pages", got.PagesFetched)
	}
	if len(got.Records) != 1 {
		t.Errorf("expected 1 record, got %d", len(got.Records))
	}
}

// TestHarvestCategoryPageCap tests the per-category page limit.
func TestHarvestCategoryPageCap(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		pages: map[int]*catalog.Page{
			1: {TotalPages: 10, Records: []model.Record{record("AO3400A", "C20917")}},
			2: {Records: []model.Record{record("SI2302", "C10487")}},
			3: {Records: []model.Record{record("RC0402FR", "C25076")}},
		},
	}

	h := New(source, NewAggregator(config.ScopeCategory),
		WithPageCap(func(int) int { return 2 }))
	got := h.HarvestCategory(context.Background(), model.Category{ID: 874})

	if got.PagesFetched != 2 {
		t.Errorf("expected cap at 2 pages, got %d", got.PagesFetched)
	}
	if len(got.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(got.Records))
	}
}

// TestHarvestCategoryConsecutiveFailures tests the abort rule for
// unfetchable pages.
func TestHarvestCategoryConsecutiveFailures(t *testing.T) {
	t.Parallel()

	t.Run("two straight failures abort the category", func(t *testing.T) {
		t.Parallel()

		source := &fakeSource{
			errs: map[int]error{
				1: errors.New("status 403"),
				2: errors.New("status 403"),
			},
		}

		h := New(source, NewAggregator(config.ScopeCategory))
		got := h.HarvestCategory(context.Background(), model.Category{ID: 874})

		if !got.Aborted {
			t.Error("expected aborted category")
		}
		if got.PagesFetched != 2 {
			t.Errorf("expected 2 pages attempted, got %d", got.PagesFetched)
		}
		if len(got.Records) != 0 {
			t.Errorf("expected no records, got %d", len(got.Records))
		}
	})

	t.Run("a successful page resets the failure count", func(t *testing.T) {
		t.Parallel()

		source := &fakeSource{
			pages: map[int]*catalog.Page{
				2: {Records: []model.Record{record("AO3400A", "C20917")}},
			},
			errs: map[int]error{
				1: errors.New("timeout"),
				3: errors.New("timeout"),
				4: errors.New("timeout"),
			},
		}

		h := New(source, NewAggregator(config.ScopeCategory))
		got := h.HarvestCategory(context.Background(), model.Category{ID: 874})

		if !got.Aborted {
			t.Error("expected aborted category")
		}
		if got.PagesFetched != 4 {
			t.Errorf("expected 4 pages attempted, got %d", got.PagesFetched)
		}
		// Records harvested before the abort survive.
		if len(got.Records) != 1 {
			t.Errorf("expected 1 record, got %d", len(got.Records))
		}
	})
}

// TestHarvestCategoryValidation tests that invalid candidates are
// rejected and do not count toward the early-stop rule.
func TestHarvestCategoryValidation(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		pages: map[int]*catalog.Page{
			1: {TotalPages: 2, Records: []model.Record{
				record("AO3400A", "C20917"),
				record("X", "C10487"),        // MPN too short
				record("SI2302", "10487"),    // malformed code
				{MPN: "BAD1", LCSCCode: "C12345"}, // no manufacturer
			}},
			2: {Records: []model.Record{
				record("Y", "C1111"), // invalid only: adds zero new
			}},
		},
	}

	h := New(source, NewAggregator(config.ScopeCategory))
	got := h.HarvestCategory(context.Background(), model.Category{ID: 874})

	if len(got.Records) != 1 {
		t.Fatalf("expected 1 valid record, got %d: %v", len(got.Records), got.Records)
	}
	if got.Records[0].MPN != "AO3400A" {
		t.Errorf("expected AO3400A to survive, got %q", got.Records[0].MPN)
	}
	if got.PagesFetched != 2 {
		t.Errorf("expected stop after all-invalid page 2, got %d pages", got.PagesFetched)
	}
}

// TestRunDedupScope tests duplicate handling across category boundaries.
func TestRunDedupScope(t *testing.T) {
	t.Parallel()

	newSource := func() *fakeSource {
		return &fakeSource{
			pages: map[int]*catalog.Page{
				1: {TotalPages: 1, Records: []model.Record{record("AO3400A", "C20917")}},
			},
		}
	}
	categories := []model.Category{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}

	t.Run("per-category scope keeps repeats across categories", func(t *testing.T) {
		t.Parallel()

		h := New(newSource(), NewAggregator(config.ScopeCategory))
		got, err := h.Run(context.Background(), categories)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(got.Categories) != 2 {
			t.Fatalf("expected 2 category results, got %d", len(got.Categories))
		}
		if got.TotalRecords() != 2 {
			t.Errorf("expected the repeat in both categories, got %d records", got.TotalRecords())
		}
	})

	t.Run("run scope drops repeats across categories", func(t *testing.T) {
		t.Parallel()

		h := New(newSource(), NewAggregator(config.ScopeRun))
		got, err := h.Run(context.Background(), categories)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(got.Categories) != 1 {
			t.Fatalf("expected 1 category with records, got %d", len(got.Categories))
		}
		if got.Skipped != 1 {
			t.Errorf("expected the duplicate-only category skipped, got %d", got.Skipped)
		}
		if got.TotalRecords() != 1 {
			t.Errorf("expected 1 record run-wide, got %d", got.TotalRecords())
		}
	})
}

// TestRunNoCategories tests the empty-input guard.
func TestRunNoCategories(t *testing.T) {
	t.Parallel()

	h := New(&fakeSource{}, NewAggregator(config.ScopeCategory))
	if _, err := h.Run(context.Background(), nil); !errors.Is(err, ErrNoCategories) {
		t.Errorf("expected ErrNoCategories, got %v", err)
	}
}

// TestRunSkipsEmptyCategories tests that barren categories are counted,
// not fatal.
func TestRunSkipsEmptyCategories(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		pages: map[int]*catalog.Page{
			1: {TotalPages: 1, Records: []model.Record{record("AO3400A", "C20917")}},
		},
	}

	// The fake returns an empty page for anything not scripted, so a
	// source with no pages makes category 2 barren.
	barren := &fakeSource{}

	h := New(source, NewAggregator(config.ScopeCategory),
		WithSourceOverride(func(id int) catalog.PageSource {
			if id == 2 {
				return barren
			}
			return nil
		}))
	got, err := h.Run(context.Background(), []model.Category{
		{ID: 1, Name: "MOSFETs"},
		{ID: 2, Name: "Empty"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Skipped != 1 {
		t.Errorf("expected 1 skipped category, got %d", got.Skipped)
	}
	if len(got.Categories) != 1 {
		t.Errorf("expected 1 category result, got %d", len(got.Categories))
	}
}

// TestRunNoRecords tests that an entirely barren run is reported as an
// explicit error alongside its summary.
func TestRunNoRecords(t *testing.T) {
	t.Parallel()

	h := New(&fakeSource{}, NewAggregator(config.ScopeCategory))
	got, err := h.Run(context.Background(), []model.Category{{ID: 1, Name: "Empty"}})
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if got == nil || got.Skipped != 1 {
		t.Errorf("expected the summary with 1 skipped category, got %+v", got)
	}
}

// TestHarvestCategoryDelayPlacement tests that the politeness delay sits
// between fetches and never after the last one.
func TestHarvestCategoryDelayPlacement(t *testing.T) {
	t.Parallel()

	const delay = 40 * time.Millisecond

	t.Run("single page pays no delay", func(t *testing.T) {
		t.Parallel()

		source := &fakeSource{
			pages: map[int]*catalog.Page{
				1: {TotalPages: 1, Records: []model.Record{record("AO3400A", "C20917")}},
			},
		}

		h := New(source, NewAggregator(config.ScopeCategory), WithDelay(delay))
		start := time.Now()
		h.HarvestCategory(context.Background(), model.Category{ID: 1})

		if elapsed := time.Since(start); elapsed >= delay {
			t.Errorf("single-page harvest should not sleep, took %v", elapsed)
		}
	})

	t.Run("two pages pay one delay", func(t *testing.T) {
		t.Parallel()

		source := &fakeSource{
			pages: map[int]*catalog.Page{
				1: {TotalPages: 2, Records: []model.Record{record("AO3400A", "C20917")}},
				2: {Records: []model.Record{record("SI2302", "C10487")}},
			},
		}

		h := New(source, NewAggregator(config.ScopeCategory), WithDelay(delay))
		start := time.Now()
		h.HarvestCategory(context.Background(), model.Category{ID: 1})

		elapsed := time.Since(start)
		if elapsed < delay {
			t.Errorf("expected at least one delay between pages, took %v", elapsed)
		}
		if elapsed >= 2*delay {
			t.Errorf("expected no delay after the final page, took %v", elapsed)
		}
	})
}

// TestHarvestCategoryContextCancel tests that cancellation stops the
// walk promptly.
func TestHarvestCategoryContextCancel(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		pages: map[int]*catalog.Page{
			1: {TotalPages: 100, Records: []model.Record{record("AO3400A", "C20917")}},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := New(source, NewAggregator(config.ScopeCategory))
	got := h.HarvestCategory(ctx, model.Category{ID: 1})

	if got.PagesFetched != 0 {
		t.Errorf("expected no fetches after cancellation, got %d", got.PagesFetched)
	}
}
