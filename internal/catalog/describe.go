package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/harvestkit/lcscharvest/internal/model"
)

// Trailing noise stripped from raw descriptions. Category pages append
// price and stock fragments directly after the description text.
var (
	priceClauseRegex   = regexp.MustCompile(`\s*\$[\d,.]+.*$`)
	usPriceClauseRegex = regexp.MustCompile(`\s*US\$[\d,.]+.*$`)
	pieceCountRegex    = regexp.MustCompile(`\s+\d+\s*pcs.*$`)
)

// detailDescRegex extracts the description span from a flattened product
// detail page: the text between the "Description" label and the first of
// the known terminator phrases (or end of text).
var detailDescRegex = regexp.MustCompile(
	`Description\s+(.+?)(?:\s+Datasheet|\s+##\s+Products\s+Specifications|\s+Type\s+Description|$)`)

// CleanDescription normalizes raw description text:
// collapse internal whitespace, strip trailing price and piece-count
// clauses, and truncate to MaxDescriptionLength at a whitespace boundary
// with a trailing ellipsis marker.
func CleanDescription(desc string) string {
	if desc == "" {
		return ""
	}

	desc = strings.Join(strings.Fields(desc), " ")
	desc = usPriceClauseRegex.ReplaceAllString(desc, "")
	desc = priceClauseRegex.ReplaceAllString(desc, "")
	desc = pieceCountRegex.ReplaceAllString(desc, "")

	if len(desc) > model.MaxDescriptionLength {
		cut := desc[:model.MaxDescriptionLength]
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		desc = cut + "..."
	}

	return strings.TrimSpace(desc)
}

// DescriptionResolver recovers descriptions that both extraction paths
// left empty by fetching the per-product detail page.
//
// Design decision: Detail fetches are paced with the same politeness
// delay as page fetches. The fallback can multiply request volume by up
// to one request per description-less record, and an unthrottled burst
// of detail requests would defeat the per-page delay entirely.
type DescriptionResolver struct {
	// client is the shared HTTP client.
	client *resty.Client

	// baseURL is the site base for building detail page URLs.
	baseURL string

	// delay is the politeness delay applied before each detail fetch.
	delay time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// DescriptionResolverOption configures a DescriptionResolver.
type DescriptionResolverOption func(*DescriptionResolver)

// WithResolverDelay sets the politeness delay before each detail fetch.
func WithResolverDelay(d time.Duration) DescriptionResolverOption {
	return func(r *DescriptionResolver) {
		r.delay = d
	}
}

// WithResolverLogger sets a custom logger.
func WithResolverLogger(logger *slog.Logger) DescriptionResolverOption {
	return func(r *DescriptionResolver) {
		r.logger = logger
	}
}

// NewDescriptionResolver creates a DescriptionResolver.
func NewDescriptionResolver(client *resty.Client, baseURL string, opts ...DescriptionResolverOption) *DescriptionResolver {
	r := &DescriptionResolver{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		delay:   time.Second,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve fills rec.Description from the product detail page when the
// primary extraction yielded nothing. Failures are soft: the description
// simply stays empty.
func (r *DescriptionResolver) Resolve(ctx context.Context, rec *model.Record) {
	if rec.Description != "" || rec.LCSCCode == "" {
		return
	}

	// Same pacing discipline as page fetches.
	if r.delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.delay):
		}
	}

	desc, err := r.fetchDetailDescription(ctx, rec.LCSCCode)
	if err != nil {
		r.logger.Debug("detail description fetch failed",
			"code", rec.LCSCCode,
			"error", err,
		)
		return
	}

	rec.Description = desc
}

// fetchDetailDescription fetches and mines one product detail page.
func (r *DescriptionResolver) fetchDetailDescription(ctx context.Context, code string) (string, error) {
	detailURL := fmt.Sprintf("%s/product-detail/%s.html", r.baseURL, code)

	resp, err := r.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(detailURL)
	if err != nil {
		return "", err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	text, err := Flatten(body)
	if err != nil {
		return "", err
	}

	return ExtractDetailDescription(text), nil
}

// ExtractDetailDescription pulls the description span out of flattened
// detail page text and cleans it. Returns "" when no span is found.
func ExtractDetailDescription(text string) string {
	m := detailDescRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return CleanDescription(m[1])
}
