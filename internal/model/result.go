package model

import "time"

// CategoryResult summarizes the harvest of a single category.
type CategoryResult struct {
	// Category is the category this result belongs to.
	Category Category `json:"category"`

	// Records are the validated, deduplicated records in insertion order.
	Records []Record `json:"records"`

	// PagesFetched is the number of pages actually requested.
	PagesFetched int `json:"pages_fetched"`

	// TotalPages is the page count reported by the structured source,
	// or 0 when the source provides no pagination metadata.
	TotalPages int `json:"total_pages,omitempty"`

	// Aborted is true when the category was cut short by the
	// consecutive-failure rule rather than by normal termination.
	Aborted bool `json:"aborted,omitempty"`
}

// RunResult summarizes a whole harvest run across categories.
type RunResult struct {
	// Categories holds per-category results in discovery order.
	// Categories that yielded no records are not included.
	Categories []CategoryResult `json:"categories"`

	// Skipped counts categories skipped due to a fatal per-category
	// condition (unparseable id, zero records).
	Skipped int `json:"skipped"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// TotalRecords returns the number of records emitted across all categories.
func (r *RunResult) TotalRecords() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Records)
	}
	return n
}
