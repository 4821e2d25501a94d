package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProductQuery_Encode(t *testing.T) {
	got, err := url.ParseQuery(DefaultProductQuery().Encode())
	require.NoError(t, err)

	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "10", got.Get("pageSize"))
	assert.Equal(t, "fechaCreacion", got.Get("sortBy"))
	assert.Equal(t, "desc", got.Get("sortDir"))

	// Optional filters stay out of the query string when unset.
	for _, key := range []string{"search", "idCategoria", "precioMin", "precioMax", "activo"} {
		assert.False(t, got.Has(key), "unexpected key %q", key)
	}
}

func TestProductQuery_Encode_AllFilters(t *testing.T) {
	category := int64(3)
	priceMin := 10.5
	priceMax := 99.0
	active := true

	q := ProductQuery{
		Page:     2,
		PageSize: 25,
		Search:   "taladro",
		Category: &category,
		PriceMin: &priceMin,
		PriceMax: &priceMax,
		Active:   &active,
		SortBy:   SortByPrice,
		SortDir:  SortAsc,
	}

	got, err := url.ParseQuery(q.Encode())
	require.NoError(t, err)

	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, "25", got.Get("pageSize"))
	assert.Equal(t, "taladro", got.Get("search"))
	assert.Equal(t, "3", got.Get("idCategoria"))
	assert.Equal(t, "10.5", got.Get("precioMin"))
	assert.Equal(t, "99", got.Get("precioMax"))
	assert.Equal(t, "true", got.Get("activo"))
	assert.Equal(t, "precio", got.Get("sortBy"))
	assert.Equal(t, "asc", got.Get("sortDir"))
}

func TestProductQuery_Encode_SanitizesBadValues(t *testing.T) {
	q := ProductQuery{
		Page:     -3,
		PageSize: 0,
		SortBy:   "drop table",
		SortDir:  "sideways",
	}

	got, err := url.ParseQuery(q.Encode())
	require.NoError(t, err)

	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "10", got.Get("pageSize"))
	assert.Equal(t, "fechaCreacion", got.Get("sortBy"))
	assert.Equal(t, "desc", got.Get("sortDir"))
}

func TestCategoryQuery_Encode(t *testing.T) {
	got, err := url.ParseQuery(CategoryQuery{Search: "tools", IncludeInactive: true}.Encode())
	require.NoError(t, err)
	assert.Equal(t, "tools", got.Get("search"))
	assert.Equal(t, "true", got.Get("includeInactive"))

	got, err = url.ParseQuery(CategoryQuery{}.Encode())
	require.NoError(t, err)
	assert.False(t, got.Has("search"))
	assert.Equal(t, "false", got.Get("includeInactive"))
}
