package harvest

import "errors"

var (
	// ErrNoCategories is returned when a run starts with an empty
	// category list.
	ErrNoCategories = errors.New("no categories to harvest")

	// ErrNoRecords is returned when a run finishes without emitting a
	// single record. The run summary is still returned alongside it so
	// callers can inspect what happened.
	ErrNoRecords = errors.New("no records harvested")
)
