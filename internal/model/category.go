package model

// Category represents one browsable catalog section discovered on the
// category index page.
//
// Design decision: Identity is the numeric id, not the URL. The same
// category can be linked from several places on the index page with
// slightly different URLs or link texts; the first name seen wins and
// later duplicates are dropped during discovery.
type Category struct {
	// ID is the numeric catalog identifier parsed from the category URL
	// (e.g., 874 for "/category/874.html").
	ID int `json:"id"`

	// URL is the absolute URL of the category page.
	URL string `json:"url"`

	// Name is the human-readable link text from the index page.
	Name string `json:"name"`
}
