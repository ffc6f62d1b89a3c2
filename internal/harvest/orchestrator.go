package harvest

import (
	"context"
	"log/slog"
	"time"

	"github.com/harvestkit/lcscharvest/internal/catalog"
	"github.com/harvestkit/lcscharvest/internal/model"
)

// maxConsecutiveFailures is the number of consecutive unfetchable pages
// after which a category is abandoned. Only the text source returns
// fetch errors, so the rule never fires for the structured source.
const maxConsecutiveFailures = 2

// Harvester walks categories page by page through a PageSource and
// funnels the validated records into an Aggregator.
//
// Design decision: The harvester is strictly sequential. One in-flight
// request at a time with a politeness delay between fetches keeps the
// load on the vendor indistinguishable from a patient human, which is
// the whole survival strategy of this tool.
type Harvester struct {
	// source produces the pages to harvest.
	source catalog.PageSource

	// sourceOverride returns an alternative source for a category id,
	// or nil to use the default. Nil disables overrides.
	sourceOverride func(id int) catalog.PageSource

	// agg collects validated records and drops duplicates.
	agg *Aggregator

	// resolver recovers empty descriptions from detail pages.
	// Nil disables the fallback.
	resolver *catalog.DescriptionResolver

	// delay is the politeness pause between page fetches.
	delay time.Duration

	// pageCap returns the page limit for a category id, 0 for none.
	pageCap func(id int) int

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithDelay sets the politeness delay between page fetches.
func WithDelay(d time.Duration) Option {
	return func(h *Harvester) {
		h.delay = d
	}
}

// WithResolver enables the detail page description fallback.
func WithResolver(r *catalog.DescriptionResolver) Option {
	return func(h *Harvester) {
		h.resolver = r
	}
}

// WithSourceOverride sets a per-category source lookup. The lookup
// returns nil for categories that should use the default source.
func WithSourceOverride(f func(id int) catalog.PageSource) Option {
	return func(h *Harvester) {
		h.sourceOverride = f
	}
}

// WithPageCap sets the per-category page limit lookup.
func WithPageCap(f func(id int) int) Option {
	return func(h *Harvester) {
		h.pageCap = f
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harvester) {
		h.logger = logger
	}
}

// New creates a Harvester reading from source and collecting into agg.
func New(source catalog.PageSource, agg *Aggregator, opts ...Option) *Harvester {
	h := &Harvester{
		source:  source,
		agg:     agg,
		pageCap: func(int) int { return 0 },
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run harvests every category in order and returns the run summary.
// Categories that yield no records are counted as skipped, never fatal.
// A run in which every category came up empty returns the summary
// together with ErrNoRecords.
func (h *Harvester) Run(ctx context.Context, categories []model.Category) (*model.RunResult, error) {
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	result := &model.RunResult{StartedAt: time.Now()}

	for i, cat := range categories {
		if ctx.Err() != nil {
			break
		}

		cr := h.HarvestCategory(ctx, cat)
		if len(cr.Records) == 0 {
			h.logger.Warn("category yielded no records",
				"categoryID", cat.ID,
				"category", cat.Name,
				"aborted", cr.Aborted,
			)
			result.Skipped++
		} else {
			result.Categories = append(result.Categories, cr)
		}

		h.logger.Info("category done",
			"categoryID", cat.ID,
			"category", cat.Name,
			"records", len(cr.Records),
			"pages", cr.PagesFetched,
		)

		if i < len(categories)-1 {
			h.sleep(ctx)
		}
	}

	result.FinishedAt = time.Now()
	if result.TotalRecords() == 0 {
		return result, ErrNoRecords
	}
	return result, nil
}

// HarvestCategory walks one category's pages until a stopping rule
// fires: the known page count is exhausted, the per-category cap is
// reached, a page adds zero new validated records, or too many
// consecutive pages fail to fetch.
func (h *Harvester) HarvestCategory(ctx context.Context, cat model.Category) model.CategoryResult {
	h.agg.BeginCategory()

	result := model.CategoryResult{Category: cat}
	limit := h.pageCap(cat.ID)
	src := h.source
	if h.sourceOverride != nil {
		if s := h.sourceOverride(cat.ID); s != nil {
			src = s
		}
	}
	totalPages := 0
	failures := 0

	for page := 1; ctx.Err() == nil; page++ {
		p, err := src.FetchPage(ctx, cat, page)
		result.PagesFetched++

		if err != nil {
			failures++
			h.logger.Warn("page fetch failed",
				"categoryID", cat.ID,
				"page", page,
				"failures", failures,
				"error", err,
			)
			if failures >= maxConsecutiveFailures {
				result.Aborted = true
				break
			}
		} else {
			failures = 0

			// Only the first page establishes the total page count.
			if page == 1 && p.TotalPages > 0 {
				totalPages = p.TotalPages
				result.TotalPages = totalPages
			}

			added := h.processPage(ctx, p, cat)
			h.logger.Debug("page processed",
				"categoryID", cat.ID,
				"page", page,
				"candidates", len(p.Records),
				"added", added,
			)

			// A page that contributes nothing new means the category
			// is exhausted, whatever the source claims.
			if added == 0 {
				break
			}
		}

		next := page + 1
		if totalPages > 0 && next > totalPages {
			break
		}
		if limit > 0 && next > limit {
			break
		}

		// Politeness pause before the next fetch, never after the last.
		if !h.sleep(ctx) {
			break
		}
	}

	result.Records = h.agg.Take()
	return result
}

// processPage validates and aggregates one page of candidates,
// returning the number of newly accepted records. Description-less
// records pass through the detail page resolver before acceptance, so
// the stored record carries the best description we could get.
func (h *Harvester) processPage(ctx context.Context, p *catalog.Page, cat model.Category) int {
	added := 0
	for i := range p.Records {
		rec := p.Records[i]
		if rec.Category == "" {
			rec.Category = cat.Name
		}

		if err := rec.Validate(); err != nil {
			h.logger.Debug("record rejected",
				"mpn", rec.MPN,
				"code", rec.LCSCCode,
				"reason", err,
			)
			continue
		}

		if h.agg.Contains(rec.Key()) {
			continue
		}

		if h.resolver != nil && rec.Description == "" {
			h.resolver.Resolve(ctx, &rec)
		}

		if h.agg.Add(rec) {
			added++
		}
	}
	return added
}

// sleep pauses for the politeness delay. It reports false when the
// context was canceled while waiting.
func (h *Harvester) sleep(ctx context.Context) bool {
	if h.delay <= 0 {
		return ctx.Err() == nil
	}

	select {
	case <-ctx.Done():
		return false
	case <-time.After(h.delay):
		return true
	}
}
