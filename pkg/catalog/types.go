// Package catalog holds the catalog resource types and the client-side
// containers that manage them against the upstream Catalog API.
package catalog

import "encoding/json"

// Category is a catalog category as returned by the upstream service. JSON
// field names follow the upstream wire format.
type Category struct {
	ID          int64   `json:"idCategoria"`
	Name        string  `json:"nombre"`
	Description *string `json:"descripcion"`
	Active      bool    `json:"activo"`
	CreatedAt   string  `json:"fechaCreacion"`
	UpdatedAt   string  `json:"fechaModificacion"`
}

// CategoryInput is the create/update payload for a category.
type CategoryInput struct {
	Name        string  `json:"nombre" validate:"required,min=2"`
	Description *string `json:"descripcion,omitempty"`
	Active      *bool   `json:"activo,omitempty"`
}

// Product is a catalog product list item.
type Product struct {
	ID           int64   `json:"idProducto"`
	Name         string  `json:"nombre"`
	CategoryID   int64   `json:"idCategoria"`
	CategoryName *string `json:"categoriaNombre"`
	SKU          *string `json:"sku"`
	Price        float64 `json:"precio"`
	Stock        int     `json:"stock"`
	Active       bool    `json:"activo"`
	CreatedAt    string  `json:"fechaCreacion"`
	UpdatedAt    string  `json:"fechaModificacion"`
}

// ProductInput is the create/update payload for a product. A missing category
// selection is a client-side validation failure, never sent upstream.
type ProductInput struct {
	SKU         string  `json:"sku" validate:"required"`
	Name        string  `json:"nombre" validate:"required,min=2"`
	Description *string `json:"descripcion,omitempty"`
	Price       float64 `json:"precio" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	CategoryID  int64   `json:"idCategoria" validate:"required,gt=0"`
	Active      *bool   `json:"activo,omitempty"`
}

// Page is the upstream's paged listing envelope.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// ImportError describes one failed row of a bulk import, normalized to a
// single shape regardless of how the upstream reported it.
type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// importResult mirrors the upstream bulk-import response. Errors is kept raw
// because upstreams disagree on its element shape.
type importResult struct {
	Upserted int             `json:"upserted"`
	Inserted int             `json:"inserted"`
	Updated  int             `json:"updated"`
	Failed   int             `json:"failed"`
	Errors   json.RawMessage `json:"errors"`
}

// ImportSummary is the normalized bulk-import outcome handed to the caller.
// A nonzero Failed count with a 2xx response is degraded success, not an
// error; interpreting it is the caller's concern.
type ImportSummary struct {
	Upserted int
	Inserted int
	Updated  int
	Failed   int
	Errors   []ImportError
}
