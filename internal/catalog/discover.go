package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/harvestkit/lcscharvest/internal/model"
)

// categoryURLRegex matches category page URLs like "/category/874.html"
// and captures the numeric catalog id.
var categoryURLRegex = regexp.MustCompile(`/category/(\d+)\.html`)

// ParseCategoryID extracts the numeric catalog id from a category URL.
// It returns ErrNoCategoryID when the URL does not contain one.
func ParseCategoryID(rawURL string) (int, error) {
	m := categoryURLRegex.FindStringSubmatch(rawURL)
	if m == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoCategoryID, rawURL)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNoCategoryID, rawURL)
	}
	return id, nil
}

// Discoverer scans the vendor's category index page for category links.
//
// Design decision: Discovery is selector-based (goquery) rather than
// pattern-based like record extraction. Category links are plain anchors
// and we need their visible text as the category name, which a flattened
// text blob cannot provide.
type Discoverer struct {
	// client is the shared HTTP client.
	client *resty.Client

	// indexURL is the page where category links are discovered.
	indexURL string

	// baseURL resolves relative category hrefs.
	baseURL string

	// idStart and idEnd bound the inclusive catalog id filter.
	// Zero means unbounded on that side.
	idStart int
	idEnd   int

	// logger for structured logging.
	logger *slog.Logger
}

// DiscovererOption configures a Discoverer.
type DiscovererOption func(*Discoverer)

// WithIDRange restricts discovery to catalog ids in [start, end].
// Zero on either side leaves that side unbounded.
func WithIDRange(start, end int) DiscovererOption {
	return func(d *Discoverer) {
		d.idStart = start
		d.idEnd = end
	}
}

// WithDiscovererLogger sets a custom logger.
func WithDiscovererLogger(logger *slog.Logger) DiscovererOption {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// NewDiscoverer creates a Discoverer that scans indexURL for category
// links, resolving relative hrefs against baseURL.
func NewDiscoverer(client *resty.Client, indexURL, baseURL string, opts ...DiscovererOption) *Discoverer {
	d := &Discoverer{
		client:   client,
		indexURL: indexURL,
		baseURL:  baseURL,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Discover fetches the index page and returns the discovered categories
// in document order, unique by id (first name seen wins).
func (d *Discoverer) Discover(ctx context.Context) ([]model.Category, error) {
	resp, err := d.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(d.indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch category index: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("fetch category index: unexpected status %d", resp.StatusCode())
	}

	cats, err := d.Parse(body)
	if err != nil {
		return nil, err
	}

	d.logger.Info("categories discovered",
		"count", len(cats),
		"idStart", d.idStart,
		"idEnd", d.idEnd,
		"index", d.indexURL,
	)
	return cats, nil
}

// Parse extracts category links from index page markup.
// It applies the id range filter, skips generic "View All" umbrella
// links, and keeps the first meaningful name per catalog id.
func (d *Discoverer) Parse(content io.Reader) ([]model.Category, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, fmt.Errorf("parse category index: %w", err)
	}

	seen := make(map[int]bool)
	categories := make([]model.Category, 0)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		id, err := ParseCategoryID(href)
		if err != nil {
			return
		}

		if d.idStart > 0 && id < d.idStart {
			return
		}
		if d.idEnd > 0 && id > d.idEnd {
			return
		}

		name := strings.TrimSpace(sel.Text())
		if name == "" {
			return
		}

		// Umbrella menu entries link to the same category pages and
		// would shadow the real names.
		if strings.Contains(strings.ToLower(name), "view all") {
			return
		}

		if seen[id] {
			return
		}
		seen[id] = true

		categories = append(categories, model.Category{
			ID:   id,
			URL:  d.resolveHref(href),
			Name: name,
		})
	})

	return categories, nil
}

// resolveHref turns a possibly-relative href into an absolute URL.
func (d *Discoverer) resolveHref(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	base, err := url.Parse(d.baseURL)
	if err != nil {
		return d.baseURL + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return d.baseURL + href
	}
	return base.ResolveReference(ref).String()
}
