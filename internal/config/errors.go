package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidSource is returned when the source is neither "api" nor "html".
	ErrInvalidSource = errors.New(`invalid source: must be "api" or "html"`)

	// ErrInvalidScope is returned when the dedup scope is neither
	// "category" nor "run".
	ErrInvalidScope = errors.New(`invalid scope: must be "category" or "run"`)

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidIDRange is returned when the category id range is
	// negative or reversed (start greater than end).
	ErrInvalidIDRange = errors.New("invalid category id range")

	// ErrConflictingFormats is returned when both --markdown and --json
	// are specified. Only one output format can be used at a time.
	ErrConflictingFormats = errors.New("conflicting report formats: --markdown and --json cannot be used together")
)
