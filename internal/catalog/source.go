package catalog

import (
	"context"

	"github.com/harvestkit/lcscharvest/internal/model"
)

// Page is one page of candidate records produced by a PageSource.
type Page struct {
	// Records are the extracted candidates in page order.
	// They have not been validated or deduplicated yet.
	Records []model.Record

	// TotalPages is the total page count reported by the source,
	// or 0 when the source provides no pagination metadata.
	TotalPages int
}

// PageSource retrieves one page of candidate records for one category.
//
// Two implementations exist: StructuredSource (JSON endpoint) and
// TextSource (rendered pages + pattern extraction). They are selected by
// configuration and are interchangeable from the orchestrator's point of
// view; only termination differs, driven by TotalPages.
//
// FetchPage must treat transport and decode problems as soft failures
// where possible: a non-nil error is reserved for cases the caller needs
// to count (the text source's consecutive-failure rule). Even then the
// page contributes zero records and the harvest continues.
type PageSource interface {
	// FetchPage retrieves page number page (1-based) of the category.
	FetchPage(ctx context.Context, cat model.Category, page int) (*Page, error)

	// Name identifies the source in logs.
	Name() string
}
