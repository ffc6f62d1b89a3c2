package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/harvestkit/lcscharvest/internal/model"
)

// Reserved specs keys filled from fixed product fields. Auxiliary
// parameters from paramVOList never overwrite these.
const (
	specKeyCategory     = "Category"
	specKeyManufacturer = "Manufacturer"
	specKeyPackage      = "Package"
)

// defaultPageSize is the items-per-page request value when no override
// is given.
const defaultPageSize = 25

// StructuredSource fetches product pages from the vendor's JSON
// product-list endpoint. It is the preferred strategy: it reports the
// total page count and carries the full category hierarchy and
// per-product parameter lists.
type StructuredSource struct {
	// client is the shared HTTP client.
	client *resty.Client

	// endpoint is the product-list API URL.
	endpoint string

	// pageSize is the number of items requested per page.
	pageSize int

	// logger for structured logging.
	logger *slog.Logger
}

// StructuredSourceOption configures a StructuredSource.
type StructuredSourceOption func(*StructuredSource)

// WithPageSize overrides the items-per-page request value.
func WithPageSize(n int) StructuredSourceOption {
	return func(s *StructuredSource) {
		s.pageSize = n
	}
}

// WithStructuredLogger sets a custom logger.
func WithStructuredLogger(logger *slog.Logger) StructuredSourceOption {
	return func(s *StructuredSource) {
		s.logger = logger
	}
}

// NewStructuredSource creates a StructuredSource posting to endpoint.
func NewStructuredSource(client *resty.Client, endpoint string, opts ...StructuredSourceOption) *StructuredSource {
	s := &StructuredSource{
		client:   client,
		endpoint: endpoint,
		pageSize: defaultPageSize,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name identifies the source in logs.
func (s *StructuredSource) Name() string {
	return "api"
}

// listRequest is the filter payload for the product-list endpoint.
// All filters except the catalog id are left at their neutral values.
type listRequest struct {
	Keyword           string            `json:"keyword"`
	CatalogIDList     []int             `json:"catalogIdList"`
	BrandIDList       []int             `json:"brandIdList"`
	EncapValueList    []string          `json:"encapValueList"`
	IsStock           bool              `json:"isStock"`
	IsOtherSuppliers  bool              `json:"isOtherSuppliers"`
	IsAsianBrand      bool              `json:"isAsianBrand"`
	IsDeals           bool              `json:"isDeals"`
	IsEnvironment     bool              `json:"isEnvironment"`
	ParamNameValueMap map[string]string `json:"paramNameValueMap"`
	CurrentPage       int               `json:"currentPage"`
	PageSize          int               `json:"pageSize"`
}

// listEnvelope is the response wrapper of the product-list endpoint.
type listEnvelope struct {
	Result struct {
		TotalPage int           `json:"totalPage"`
		DataList  []productItem `json:"dataList"`
	} `json:"result"`
}

// productItem is one raw product entry from the endpoint.
type productItem struct {
	ProductModel          string    `json:"productModel"`
	ProductCode           string    `json:"productCode"`
	BrandNameEn           string    `json:"brandNameEn"`
	ProductIntroEn        string    `json:"productIntroEn"`
	ProductNameEn         string    `json:"productNameEn"`
	WmCatalogNameEn       string    `json:"wmCatalogNameEn"`
	FirstWmCatalogNameEn  string    `json:"firstWmCatalogNameEn"`
	SecondWmCatalogNameEn string    `json:"secondWmCatalogNameEn"`
	ThirdWmCatalogNameEn  string    `json:"thirdWmCatalogNameEn"`
	EncapStandard         string    `json:"encapStandard"`
	EncapEn               string    `json:"encapEn"`
	Encap                 string    `json:"encap"`
	PackageEn             string    `json:"packageEn"`
	ParamVOList           []paramVO `json:"paramVOList"`
}

// paramVO is one (name, value) parameter pair. The endpoint sometimes
// omits the English fields, so the plain names act as fallbacks.
type paramVO struct {
	ParamNameEn  string `json:"paramNameEn"`
	ParamName    string `json:"paramName"`
	ParamValueEn string `json:"paramValueEn"`
	ParamValue   string `json:"paramValue"`
}

// FetchPage requests one page for the category's catalog id.
//
// Transport and decode failures are soft: they are logged and an empty
// page is returned with a nil error, so the caller's stopping rules see
// a page with zero new records rather than an aborted harvest.
func (s *StructuredSource) FetchPage(ctx context.Context, cat model.Category, page int) (*Page, error) {
	payload := listRequest{
		Keyword:           "",
		CatalogIDList:     []int{cat.ID},
		BrandIDList:       []int{},
		EncapValueList:    []string{},
		ParamNameValueMap: map[string]string{},
		CurrentPage:       page,
		PageSize:          s.pageSize,
	}

	var envelope listEnvelope
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&envelope).
		Post(s.endpoint)
	if err != nil {
		s.logger.Warn("product list request failed",
			"catalogID", cat.ID,
			"page", page,
			"error", err,
		)
		return &Page{}, nil
	}
	if resp.IsError() {
		s.logger.Warn("product list request rejected",
			"catalogID", cat.ID,
			"page", page,
			"status", resp.StatusCode(),
		)
		return &Page{}, nil
	}

	result := &Page{
		Records:    make([]model.Record, 0, len(envelope.Result.DataList)),
		TotalPages: envelope.Result.TotalPage,
	}
	for _, item := range envelope.Result.DataList {
		result.Records = append(result.Records, extractRecord(item, page))
	}

	return result, nil
}

// extractRecord maps one raw product entry to a candidate record.
//
// The description prefers the "intro" field over the "name" field; both
// run through CleanDescription. An empty result is left empty here and
// recovered later by the DescriptionResolver.
func extractRecord(item productItem, page int) model.Record {
	desc := item.ProductIntroEn
	if strings.TrimSpace(desc) == "" {
		desc = item.ProductNameEn
	}

	return model.Record{
		MPN:           strings.TrimSpace(item.ProductModel),
		LCSCCode:      strings.TrimSpace(item.ProductCode),
		Manufacturer:  strings.TrimSpace(item.BrandNameEn),
		Description:   CleanDescription(desc),
		Category:      strings.TrimSpace(item.FirstWmCatalogNameEn),
		Subcategory:   strings.TrimSpace(item.SecondWmCatalogNameEn),
		ChildCategory: strings.TrimSpace(item.ThirdWmCatalogNameEn),
		Specs:         buildSpecs(item),
		Page:          page,
	}
}

// buildSpecs assembles the specifications map for one product:
// the reserved Category / Manufacturer / Package keys from fixed fields,
// then every paramVOList entry that does not collide with an existing key.
func buildSpecs(item productItem) map[string]string {
	specs := make(map[string]string)

	cat := firstNonEmpty(
		item.WmCatalogNameEn,
		item.FirstWmCatalogNameEn,
		item.SecondWmCatalogNameEn,
		item.ThirdWmCatalogNameEn,
	)
	if cat != "" {
		specs[specKeyCategory] = cat
	}

	if manu := strings.TrimSpace(item.BrandNameEn); manu != "" {
		specs[specKeyManufacturer] = manu
	}

	// The package lives in one of several fields depending on catalog age.
	pkg := firstNonEmpty(item.EncapStandard, item.EncapEn, item.Encap, item.PackageEn)
	if pkg != "" {
		specs[specKeyPackage] = pkg
	}

	for _, p := range item.ParamVOList {
		name := strings.TrimSpace(p.ParamNameEn)
		if name == "" {
			name = strings.TrimSpace(p.ParamName)
		}
		value := strings.TrimSpace(p.ParamValueEn)
		if value == "" {
			value = strings.TrimSpace(p.ParamValue)
		}

		if name == "" || value == "" {
			continue
		}
		if _, exists := specs[name]; exists {
			continue
		}
		specs[name] = value
	}

	return specs
}

// firstNonEmpty returns the first argument with non-whitespace content.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
