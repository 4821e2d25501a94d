package catalog

import (
	"net/url"
	"strconv"
)

// SortDir is the listing sort direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Product sort keys accepted by the upstream.
const (
	SortByCreated = "fechaCreacion"
	SortByName    = "nombre"
	SortByPrice   = "precio"
	SortByStock   = "stock"
)

var productSortKeys = map[string]struct{}{
	SortByCreated: {},
	SortByName:    {},
	SortByPrice:   {},
	SortByStock:   {},
}

// ProductQuery is the request-shaping state for the product listing. It has
// no server-side identity; it only renders into a query string.
type ProductQuery struct {
	Page     int
	PageSize int
	Search   string
	Category *int64
	PriceMin *float64
	PriceMax *float64
	Active   *bool
	SortBy   string
	SortDir  SortDir
}

// DefaultProductQuery returns the initial product listing query.
func DefaultProductQuery() ProductQuery {
	return ProductQuery{
		Page:     1,
		PageSize: 10,
		SortBy:   SortByCreated,
		SortDir:  SortDesc,
	}
}

// sanitize clamps out-of-range values back to defaults before encoding.
func (q ProductQuery) sanitize() ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	if _, ok := productSortKeys[q.SortBy]; !ok {
		q.SortBy = SortByCreated
	}
	if q.SortDir != SortAsc && q.SortDir != SortDesc {
		q.SortDir = SortDesc
	}
	return q
}

// Encode renders the query string sent to the product listing endpoint.
// Optional filters are omitted when unset.
func (q ProductQuery) Encode() string {
	q = q.sanitize()

	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != nil {
		v.Set("idCategoria", strconv.FormatInt(*q.Category, 10))
	}
	if q.PriceMin != nil {
		v.Set("precioMin", strconv.FormatFloat(*q.PriceMin, 'f', -1, 64))
	}
	if q.PriceMax != nil {
		v.Set("precioMax", strconv.FormatFloat(*q.PriceMax, 'f', -1, 64))
	}
	if q.Active != nil {
		v.Set("activo", strconv.FormatBool(*q.Active))
	}
	v.Set("sortBy", q.SortBy)
	v.Set("sortDir", string(q.SortDir))
	return v.Encode()
}

// CategoryQuery is the request-shaping state for the category listing.
type CategoryQuery struct {
	Search          string
	IncludeInactive bool
}

// Encode renders the category listing query string.
func (q CategoryQuery) Encode() string {
	v := url.Values{}
	v.Set("includeInactive", strconv.FormatBool(q.IncludeInactive))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v.Encode()
}
