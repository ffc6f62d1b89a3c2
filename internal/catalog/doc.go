// Package catalog implements the retrieval and extraction half of the
// harvesting pipeline.
//
// # Architecture
//
//   - Discoverer: finds category links on the vendor's index page
//   - PageSource: fetches one page of candidate records for a category;
//     two interchangeable implementations exist
//   - StructuredSource: the vendor's JSON product-list endpoint, which
//     reports pagination metadata and rich per-product fields
//   - TextSource: rendered category pages flattened to text and mined
//     with a pattern; no pagination metadata
//   - DescriptionResolver: cleans descriptions and recovers missing ones
//     from per-product detail pages
//
// Design decision: The two extraction strategies share one PageSource
// interface and one candidate record shape rather than living in separate
// programs. The orchestrator in the harvest package does not know or care
// which strategy produced a page; only pagination termination differs,
// and that is driven by the presence of the reported total page count.
//
// # Failure model
//
// Transport and decode failures are soft: the structured source logs and
// returns an empty page, and the text source returns an error that the
// orchestrator degrades to an empty page (counting consecutive failures).
// Nothing in this package aborts a harvest run.
package catalog
