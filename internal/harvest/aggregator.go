package harvest

import (
	"github.com/harvestkit/lcscharvest/internal/config"
	"github.com/harvestkit/lcscharvest/internal/model"
)

// Aggregator collects validated records in arrival order and drops
// duplicates by (MPN, catalog code) key.
//
// The deduplication scope is an explicit constructor parameter:
// config.ScopeCategory resets the seen set at every category boundary,
// so the same part appearing in two categories is kept in both;
// config.ScopeRun keeps one seen set for the whole run.
type Aggregator struct {
	// scope decides when the seen set resets.
	scope config.Scope

	// seen holds the identity keys already accepted.
	seen map[model.Key]bool

	// current holds the records accepted since the last Take.
	current []model.Record
}

// NewAggregator creates an Aggregator with the given deduplication scope.
func NewAggregator(scope config.Scope) *Aggregator {
	return &Aggregator{
		scope: scope,
		seen:  make(map[model.Key]bool),
	}
}

// BeginCategory marks a category boundary. Under per-category scope the
// seen set starts fresh; under run scope it persists.
func (a *Aggregator) BeginCategory() {
	if a.scope == config.ScopeCategory {
		a.seen = make(map[model.Key]bool)
	}
	a.current = nil
}

// Contains reports whether a record with the given identity key was
// already accepted in the current scope. The orchestrator checks this
// before spending a detail page fetch on a duplicate.
func (a *Aggregator) Contains(key model.Key) bool {
	return a.seen[key]
}

// Add accepts rec unless its identity key was already seen in the
// current scope. It reports whether the record was new.
func (a *Aggregator) Add(rec model.Record) bool {
	key := rec.Key()
	if a.seen[key] {
		return false
	}
	a.seen[key] = true
	a.current = append(a.current, rec)
	return true
}

// Take returns the records accepted since the last category boundary
// and clears the working slice. Order is arrival order.
func (a *Aggregator) Take() []model.Record {
	records := a.current
	a.current = nil
	return records
}
