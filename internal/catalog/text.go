package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/harvestkit/lcscharvest/internal/model"
)

// productPattern mines candidate records out of flattened category page
// text. Capture groups, in order:
//
//	1: MPN          (alphanumeric token: letters/digits/-/.,/)
//	2: catalog code ("C" + 4+ digits)
//	3: manufacturer (single word token)
//	4: description  (non-greedy span up to a currency marker, a pipe,
//	                 or end of line)
//
// An optional promotional label (Hot/Lightning) and an optional stock
// count phrase sit between the groups and are discarded.
var productPattern = regexp.MustCompile(
	`(?m)\b([A-Z0-9][A-Z0-9\-.,/]+)\s+` +
		`(C\d{4,})\s+` +
		`(?:Hot|Lightning)?\s*` +
		`([A-Za-z0-9/]+)\s+` +
		`(?:[\d,]+\s+(?:In\s+)?Stock\s+)?` +
		`([^|$\n]+?)?` +
		`(?:\s+\$|\s+US\$|\s+\||$)`)

// TextSource fetches rendered category pages and extracts records from
// their flattened text. It is the fallback strategy for when the
// structured endpoint is unavailable or blocked.
//
// The source carries no pagination metadata: TotalPages is always 0 and
// the caller must infer termination from pages that stop yielding new
// records.
type TextSource struct {
	// client is the shared HTTP client.
	client *resty.Client

	// logger for structured logging.
	logger *slog.Logger
}

// TextSourceOption configures a TextSource.
type TextSourceOption func(*TextSource)

// WithTextLogger sets a custom logger.
func WithTextLogger(logger *slog.Logger) TextSourceOption {
	return func(s *TextSource) {
		s.logger = logger
	}
}

// NewTextSource creates a TextSource.
func NewTextSource(client *resty.Client, opts ...TextSourceOption) *TextSource {
	s := &TextSource{
		client: client,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name identifies the source in logs.
func (s *TextSource) Name() string {
	return "html"
}

// FetchPage retrieves one rendered category page and extracts candidates.
//
// Unlike the structured source, a fetch failure is returned as an error:
// the orchestrator needs to count consecutive unfetchable pages to decide
// when to abort a category. The failure is still soft in the sense that
// it contributes an empty page, never an aborted run.
func (s *TextSource) FetchPage(ctx context.Context, cat model.Category, page int) (*Page, error) {
	pageURL, err := buildPageURL(cat.URL, page)
	if err != nil {
		return nil, fmt.Errorf("build page URL: %w", err)
	}

	resp, err := s.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("fetch page: unexpected status %d", resp.StatusCode())
	}

	text, err := Flatten(body)
	if err != nil {
		return nil, fmt.Errorf("flatten page: %w", err)
	}

	records := ExtractFromText(text, page)
	s.logger.Debug("text page extracted",
		"url", pageURL,
		"page", page,
		"matches", len(records),
	)

	return &Page{Records: records}, nil
}

// ExtractFromText applies the product pattern to flattened page text and
// returns the candidate records found, tagged with the page number.
func ExtractFromText(text string, page int) []model.Record {
	matches := productPattern.FindAllStringSubmatch(text, -1)

	records := make([]model.Record, 0, len(matches))
	for _, m := range matches {
		records = append(records, model.Record{
			MPN:          strings.TrimSpace(m[1]),
			LCSCCode:     strings.TrimSpace(m[2]),
			Manufacturer: strings.TrimSpace(m[3]),
			Description:  CleanDescription(m[4]),
			Page:         page,
		})
	}

	return records
}

// buildPageURL builds the pagination URL for a category:
// page 1 is the bare category URL, later pages add ?page=n.
func buildPageURL(baseURL string, page int) (string, error) {
	if page <= 1 {
		return baseURL, nil
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	query := u.Query()
	query.Set("page", strconv.Itoa(page))
	u.RawQuery = query.Encode()
	return u.String(), nil
}
