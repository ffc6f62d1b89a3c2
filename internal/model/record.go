package model

import (
	"regexp"
	"strings"
)

// MaxDescriptionLength is the maximum length of a cleaned description.
// Longer descriptions are truncated at a whitespace boundary and marked
// with an ellipsis. 200 characters keeps exported tables readable while
// preserving the useful part of vendor descriptions.
const MaxDescriptionLength = 200

// lcscCodeRegex matches the vendor-assigned catalog code: the letter "C"
// followed by at least four digits (e.g., "C40912").
var lcscCodeRegex = regexp.MustCompile(`^C\d{4,}$`)

// Record represents one harvested product row.
//
// Design decision: There is a single record type for both extraction
// strategies. The text source cannot fill the category hierarchy or the
// specs map, so those fields stay empty; the validator only checks the
// fields both strategies can produce.
type Record struct {
	// MPN is the manufacturer part number, the primary human-readable
	// product identifier.
	MPN string `json:"mpn"`

	// LCSCCode is the vendor catalog code ("C" + 4+ digits).
	LCSCCode string `json:"lcsc_code"`

	// Manufacturer is the brand name.
	Manufacturer string `json:"manufacturer"`

	// Description is the cleaned product description.
	// At most MaxDescriptionLength characters plus an ellipsis marker.
	Description string `json:"description"`

	// Category, Subcategory, and ChildCategory hold the three-level
	// catalog hierarchy. Only the structured source fills these.
	Category      string `json:"category,omitempty"`
	Subcategory   string `json:"subcategory,omitempty"`
	ChildCategory string `json:"childcategory,omitempty"`

	// Specs maps parameter names to values (package, width, voltage, ...).
	// The reserved keys "Category", "Manufacturer", and "Package" are
	// filled first and never overwritten by auxiliary parameters.
	Specs map[string]string `json:"specs,omitempty"`

	// Page is the 1-based page number the record was found on.
	Page int `json:"page"`
}

// Key is the deduplication identity of a Record within a harvest scope.
type Key struct {
	MPN      string
	LCSCCode string
}

// Key returns the record's aggregation key.
func (r *Record) Key() Key {
	return Key{MPN: r.MPN, LCSCCode: r.LCSCCode}
}

// Validation errors returned by Record.Validate.
// These are value checks on a single candidate record; a record failing
// any one of them is rejected as a whole (no partial acceptance).
type ValidationError string

// Error implements the error interface.
func (e ValidationError) Error() string { return string(e) }

// Reasons a candidate record can be rejected.
const (
	ErrEmptyMPN          ValidationError = "empty mpn"
	ErrEmptyCode         ValidationError = "empty lcsc code"
	ErrEmptyManufacturer ValidationError = "empty manufacturer"
	ErrBadCode           ValidationError = "lcsc code does not match C+digits pattern"
	ErrShortMPN          ValidationError = "mpn shorter than 2 characters"
)

// Validate checks that the record is structurally sound.
// It returns the first failing check, or nil if the record is acceptable.
//
// Design decision: Validation lives on the model rather than in a separate
// validator type because the rules are intrinsic to what a well-formed
// record is, independent of which source produced it.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.MPN) == "" {
		return ErrEmptyMPN
	}
	if strings.TrimSpace(r.LCSCCode) == "" {
		return ErrEmptyCode
	}
	if strings.TrimSpace(r.Manufacturer) == "" {
		return ErrEmptyManufacturer
	}
	if !lcscCodeRegex.MatchString(r.LCSCCode) {
		return ErrBadCode
	}
	if len(r.MPN) < 2 {
		return ErrShortMPN
	}
	return nil
}
