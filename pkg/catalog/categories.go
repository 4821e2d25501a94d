package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/hpcatalog/catalogadmin/pkg/apiclient"
	"github.com/hpcatalog/catalogadmin/pkg/session"
	"github.com/hpcatalog/catalogadmin/pkg/validator"
)

// TokenSource supplies the current access token for catalog calls.
// *session.Manager satisfies it.
type TokenSource interface {
	Token() string
}

// Confirmer answers an interactive yes/no question before a destructive
// action is taken.
type Confirmer func(title, message string) bool

// CategoryStore owns the client-side category collection: its filter, the
// latest snapshot, and a busy flag.
type CategoryStore struct {
	client *apiclient.Client
	tokens TokenSource

	mu    sync.Mutex
	query CategoryQuery
	items []Category
	busy  bool
}

// NewCategoryStore creates a store that lists and mutates categories through
// client (whose base URL points at the catalog API).
func NewCategoryStore(client *apiclient.Client, tokens TokenSource) *CategoryStore {
	return &CategoryStore{
		client: client,
		tokens: tokens,
		query:  CategoryQuery{IncludeInactive: true},
	}
}

// Query returns the current filter.
func (s *CategoryStore) Query() CategoryQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetQuery replaces the current filter. It does not trigger a fetch.
func (s *CategoryStore) SetQuery(q CategoryQuery) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// Items returns the latest snapshot.
func (s *CategoryStore) Items() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

// Busy reports whether a fetch is in flight.
func (s *CategoryStore) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Fetch lists categories with the current filter and replaces the snapshot.
// Overlapping fetches are not coalesced; whichever response arrives last
// wins.
func (s *CategoryStore) Fetch(ctx context.Context) error {
	token := s.tokens.Token()
	if token == "" {
		return session.ErrMissingToken
	}

	s.setBusy(true)
	defer s.setBusy(false)

	items, err := apiclient.Do[[]Category](ctx, s.client, "/categorias?"+s.Query().Encode(), apiclient.Options{
		Token: token,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Create validates and creates a category, then re-fetches the list with the
// current filter. No optimistic merge is attempted.
func (s *CategoryStore) Create(ctx context.Context, input CategoryInput) error {
	token := s.tokens.Token()
	if token == "" {
		return session.ErrMissingToken
	}
	if err := validator.Validate(input); err != nil {
		return err
	}

	if _, err := apiclient.Do[struct{}](ctx, s.client, "/categorias", apiclient.Options{
		Method: http.MethodPost,
		Token:  token,
		Body:   input,
	}); err != nil {
		return err
	}

	return s.Fetch(ctx)
}

// Update validates and updates a category, then re-fetches.
func (s *CategoryStore) Update(ctx context.Context, id int64, input CategoryInput) error {
	token := s.tokens.Token()
	if token == "" {
		return session.ErrMissingToken
	}
	if err := validator.Validate(input); err != nil {
		return err
	}

	if _, err := apiclient.Do[struct{}](ctx, s.client, fmt.Sprintf("/categorias/%d", id), apiclient.Options{
		Method: http.MethodPut,
		Token:  token,
		Body:   input,
	}); err != nil {
		return err
	}

	return s.Fetch(ctx)
}

// Delete soft-deletes a category after interactive confirmation. A declined
// confirmation performs no network action and reports (false, nil).
func (s *CategoryStore) Delete(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	token := s.tokens.Token()
	if token == "" {
		return false, session.ErrMissingToken
	}

	if !confirm("Delete category", fmt.Sprintf("Delete category #%d? The record is deactivated, not removed.", id)) {
		return false, nil
	}

	if _, err := apiclient.Do[struct{}](ctx, s.client, fmt.Sprintf("/categorias/%d", id), apiclient.Options{
		Method: http.MethodDelete,
		Token:  token,
	}); err != nil {
		return false, err
	}

	return true, s.Fetch(ctx)
}

func (s *CategoryStore) setBusy(v bool) {
	s.mu.Lock()
	s.busy = v
	s.mu.Unlock()
}
