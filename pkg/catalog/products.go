package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/hpcatalog/catalogadmin/pkg/apiclient"
	"github.com/hpcatalog/catalogadmin/pkg/session"
	"github.com/hpcatalog/catalogadmin/pkg/validator"
)

// ProductStore owns the client-side product page: the full listing query,
// the latest page snapshot, and a busy flag.
type ProductStore struct {
	client *apiclient.Client
	tokens TokenSource

	mu    sync.Mutex
	query ProductQuery
	page  Page[Product]
	busy  bool
}

// NewProductStore creates a store that lists and mutates products through
// client (whose base URL points at the catalog API).
func NewProductStore(client *apiclient.Client, tokens TokenSource) *ProductStore {
	q := DefaultProductQuery()
	return &ProductStore{
		client: client,
		tokens: tokens,
		query:  q,
		page:   Page[Product]{Page: q.Page, PageSize: q.PageSize},
	}
}

// Query returns the current listing query.
func (s *ProductStore) Query() ProductQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetQuery replaces the current listing query. It does not trigger a fetch.
func (s *ProductStore) SetQuery(q ProductQuery) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// PageData returns the latest page snapshot.
func (s *ProductStore) PageData() Page[Product] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Busy reports whether a fetch is in flight.
func (s *ProductStore) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Fetch lists the current page and replaces the snapshot. Overlapping
// fetches are not coalesced; whichever response arrives last wins.
func (s *ProductStore) Fetch(ctx context.Context) error {
	token := s.tokens.Token()
	if token == "" {
		return session.ErrMissingToken
	}

	s.setBusy(true)
	defer s.setBusy(false)

	page, err := apiclient.Do[Page[Product]](ctx, s.client, "/productos?"+s.Query().Encode(), apiclient.Options{
		Token: token,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	return nil
}

// Create validates and creates a product, then re-fetches the current page.
func (s *ProductStore) Create(ctx context.Context, input ProductInput) error {
	token := s.tokens.Token()
	if token == "" {
		return session.ErrMissingToken
	}
	if err := validator.Validate(input); err != nil {
		return err
	}

	if _, err := apiclient.Do[struct{}](ctx, s.client, "/productos", apiclient.Options{
		Method: http.MethodPost,
		Token:  token,
		Body:   input,
	}); err != nil {
		return err
	}

	return s.Fetch(ctx)
}

// Update validates and updates a product, then re-fetches the current page.
func (s *ProductStore) Update(ctx context.Context, id int64, input ProductInput) error {
	token := s.tokens.Token()
	if token == "" {
		return session.ErrMissingToken
	}
	if err := validator.Validate(input); err != nil {
		return err
	}

	if _, err := apiclient.Do[struct{}](ctx, s.client, fmt.Sprintf("/productos/%d", id), apiclient.Options{
		Method: http.MethodPut,
		Token:  token,
		Body:   input,
	}); err != nil {
		return err
	}

	return s.Fetch(ctx)
}

// Delete soft-deletes a product after interactive confirmation. A declined
// confirmation performs no network action and reports (false, nil).
func (s *ProductStore) Delete(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	token := s.tokens.Token()
	if token == "" {
		return false, session.ErrMissingToken
	}

	if !confirm("Delete product", fmt.Sprintf("Delete product #%d? The record is deactivated, not removed.", id)) {
		return false, nil
	}

	if _, err := apiclient.Do[struct{}](ctx, s.client, fmt.Sprintf("/productos/%d", id), apiclient.Options{
		Method: http.MethodDelete,
		Token:  token,
	}); err != nil {
		return false, err
	}

	return true, s.Fetch(ctx)
}

// BulkImport uploads a CSV or XLSX file as multipart form data to the import
// endpoint, re-fetches the current page, and returns the normalized result.
// Partial failure is reported through the summary, not as an error.
func (s *ProductStore) BulkImport(ctx context.Context, filename string, file io.Reader) (ImportSummary, error) {
	token := s.tokens.Token()
	if token == "" {
		return ImportSummary{}, session.ErrMissingToken
	}

	form := (&apiclient.Form{}).AddFile("file", filename, file)

	res, err := apiclient.Do[importResult](ctx, s.client, "/productos/masivo", apiclient.Options{
		Method: http.MethodPost,
		Token:  token,
		Form:   form,
	})
	if err != nil {
		return ImportSummary{}, err
	}

	summary := ImportSummary{
		Upserted: res.Upserted,
		Inserted: res.Inserted,
		Updated:  res.Updated,
		Failed:   res.Failed,
		Errors:   NormalizeImportErrors(res.Errors),
	}

	if err := s.Fetch(ctx); err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *ProductStore) setBusy(v bool) {
	s.mu.Lock()
	s.busy = v
	s.mu.Unlock()
}
