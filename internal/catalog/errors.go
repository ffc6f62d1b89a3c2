package catalog

import "errors"

// ErrNoCategoryID is returned when a category URL does not contain a
// parseable numeric catalog id. This is fatal for that category only;
// the orchestrator skips it and continues with the rest of the run.
var ErrNoCategoryID = errors.New("no category id in URL")
