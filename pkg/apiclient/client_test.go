package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestDo_SetsStandardHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := Do[map[string]any](context.Background(), New(srv.URL), "/widgets", Options{})
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "no-store", got.Get("Cache-Control"))
	assert.Empty(t, got.Get("Content-Type"), "GET without body must not carry a content type")
	assert.Empty(t, got.Get("Authorization"))
}

func TestDo_JSONBodyAndBearerToken(t *testing.T) {
	var (
		gotBody   string
		gotHeader http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotHeader = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	_, err := Do[struct{}](context.Background(), New(srv.URL), "/widgets", Options{
		Method: http.MethodPost,
		Body:   map[string]string{"name": "gizmo"},
		Token:  "tok-123",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"gizmo"}`, gotBody)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "Bearer tok-123", gotHeader.Get("Authorization"))
}

func TestDo_ExplicitContentTypeSuppressesDefault(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("Content-Type", "application/vnd.custom+json")

	_, err := Do[struct{}](context.Background(), New(srv.URL), "/widgets", Options{
		Method: http.MethodPost,
		Body:   map[string]string{"k": "v"},
		Header: header,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.custom+json", got)
}

func TestDo_MultipartForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "v1", r.FormValue("field"))

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		assert.Equal(t, "data.csv", fh.Filename)

		buf, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "sku,name\n", string(buf))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	form := (&Form{}).
		AddField("field", "v1").
		AddFile("file", "data.csv", strings.NewReader("sku,name\n"))

	_, err := Do[struct{}](context.Background(), New(srv.URL), "/upload", Options{
		Method: http.MethodPost,
		Form:   form,
	})
	require.NoError(t, err)
}

func TestDo_NoContentSkipsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A 204 with a stray body must not be parsed.
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out, err := Do[widget](context.Background(), New(srv.URL), "/widgets/1", Options{
		Method: http.MethodDelete,
	})
	require.NoError(t, err)
	assert.Equal(t, widget{}, out)
}

func TestDo_DecodesJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"id":7,"name":"gizmo"}`))
	}))
	defer srv.Close()

	out, err := Do[widget](context.Background(), New(srv.URL), "/widgets/7", Options{})
	require.NoError(t, err)
	assert.Equal(t, widget{ID: 7, Name: "gizmo"}, out)
}

func TestDo_NonJSONSuccessReturnsRawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	out, err := Do[string](context.Background(), New(srv.URL), "/ping", Options{})
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}

func TestDo_ErrorResponseBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":["name required","sku required"]}`))
	}))
	defer srv.Close()

	_, err := Do[widget](context.Background(), New(srv.URL), "/widgets", Options{
		Method: http.MethodPost,
		Body:   map[string]string{},
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, []string{"name required", "sku required"}, apiErr.Messages)
}

func TestDo_UnparsableErrorBodyBecomesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>Bad Gateway</html>"))
	}))
	defer srv.Close()

	_, err := Do[widget](context.Background(), New(srv.URL), "/widgets", Options{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, []string{"<html>Bad Gateway</html>"}, apiErr.Messages)
}

func TestDo_JSONNullErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	_, err := Do[widget](context.Background(), New(srv.URL), "/widgets", Options{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"Unknown error"}, apiErr.Messages)
}

func TestDo_TransportErrorPropagatesUnchanged(t *testing.T) {
	c := New("http://127.0.0.1:1")

	_, err := Do[widget](context.Background(), c, "/widgets", Options{})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures must not be wrapped as APIError")
}

func TestDo_AbsolutePathBypassesBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"direct"}`))
	}))
	defer srv.Close()

	c := New("http://base-url-never-used.invalid")
	out, err := Do[widget](context.Background(), c, srv.URL+"/direct", Options{})
	require.NoError(t, err)
	assert.Equal(t, "direct", out.Name)
}

func TestDo_PerRequestBaseURLOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":2,"name":"override"}`))
	}))
	defer srv.Close()

	c := New("http://base-url-never-used.invalid")
	out, err := Do[widget](context.Background(), c, "/widgets/2", Options{
		BaseURL: srv.URL + "/",
	})
	require.NoError(t, err)
	assert.Equal(t, "override", out.Name)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://example.com/api/")
	assert.Equal(t, "http://example.com/api", c.BaseURL)
}
