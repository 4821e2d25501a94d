// Package forward implements the reverse-proxy step of the BFF: it rewrites
// an inbound request onto a configured upstream base URL, re-encodes the
// body according to its content type, and streams the upstream response back
// unchanged.
package forward

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
)

// Environment variables naming the upstream base URLs. They are read on
// every forwarded request, never cached at startup.
const (
	AuthBaseURLEnv    = "AUTH_API_BASE_URL"
	CatalogBaseURLEnv = "CATALOG_API_BASE_URL"
)

// apiPrefix is prepended to every forwarded path on the upstream side.
const apiPrefix = "/api"

// Upstream forwards requests onto one upstream service family.
type Upstream struct {
	name   string
	envVar string
	lookup func(string) string
	client *http.Client
	logger *slog.Logger
}

// NewUpstream creates a forwarder for the named service family whose base
// URL lives in envVar. No timeout is configured on the outgoing call; a hang
// is bounded only by the transport's own defaults.
func NewUpstream(name, envVar string, logger *slog.Logger) *Upstream {
	return &Upstream{
		name:   name,
		envVar: envVar,
		lookup: os.Getenv,
		client: &http.Client{},
		logger: logger,
	}
}

// WithLookup replaces the environment lookup, so tests can substitute base
// URLs without mutating the process environment.
func (u *Upstream) WithLookup(fn func(string) string) *Upstream {
	u.lookup = fn
	return u
}

// WithClient replaces the HTTP client used for upstream calls.
func (u *Upstream) WithClient(c *http.Client) *Upstream {
	u.client = c
	return u
}

// Forward relays r onto the upstream at the given path segments. It makes a
// single attempt: no retry, no caching. Exactly one header is forwarded from
// the caller (Authorization); the upstream status, body, and content type
// come back byte-for-byte.
func (u *Upstream) Forward(w http.ResponseWriter, r *http.Request, segments ...string) {
	base := u.lookup(u.envVar)
	if base == "" {
		writeErrors(w, http.StatusInternalServerError, u.envVar+" missing")
		return
	}

	target := strings.TrimRight(base, "/") + apiPrefix + "/" + strings.Join(segments, "/")
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	body, contentType, ok := u.encodeBody(w, r)
	if !ok {
		return
	}

	out, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		u.logger.Error("build upstream request",
			slog.String("upstream", u.name),
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		writeErrors(w, http.StatusInternalServerError, "invalid upstream request")
		return
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		out.Header.Set("Authorization", auth)
	}
	if contentType != "" {
		out.Header.Set("Content-Type", contentType)
	}

	resp, err := u.client.Do(out)
	if err != nil {
		u.logger.Error("upstream call failed",
			slog.String("upstream", u.name),
			slog.String("method", r.Method),
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		writeErrors(w, http.StatusBadGateway, "upstream service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		writeErrors(w, http.StatusBadGateway, "upstream response unreadable")
		return
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(respBody)
}

// encodeBody re-encodes the inbound body for the upstream request. The
// returned content type is empty when the transport should not send one.
// On failure it writes the error response itself and reports ok=false.
func (u *Upstream) encodeBody(w http.ResponseWriter, r *http.Request) (io.Reader, string, bool) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil, "", true
	}

	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.Contains(contentType, "multipart/form-data"):
		body, freshType, err := rebuildMultipart(r)
		if err != nil {
			writeErrors(w, http.StatusBadRequest, "invalid multipart body")
			return nil, "", false
		}
		// The incoming content type carries a stale boundary; the rebuilt
		// payload gets its own.
		return body, freshType, true

	case strings.Contains(contentType, "application/json"):
		var payload any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeErrors(w, http.StatusBadRequest, "invalid JSON body")
			return nil, "", false
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			writeErrors(w, http.StatusBadRequest, "invalid JSON body")
			return nil, "", false
		}
		return bytes.NewReader(raw), contentType, true

	default:
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			writeErrors(w, http.StatusBadRequest, "unreadable request body")
			return nil, "", false
		}
		return bytes.NewReader(raw), contentType, true
	}
}

// rebuildMultipart reads the incoming form and re-appends every field and
// file into a new multipart payload with a fresh boundary.
func rebuildMultipart(r *http.Request) (io.Reader, string, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for field, values := range r.MultipartForm.Value {
		for _, v := range values {
			if err := mw.WriteField(field, v); err != nil {
				return nil, "", err
			}
		}
	}

	for field, files := range r.MultipartForm.File {
		for _, fh := range files {
			src, err := fh.Open()
			if err != nil {
				return nil, "", err
			}
			part, err := mw.CreateFormFile(field, fh.Filename)
			if err != nil {
				_ = src.Close()
				return nil, "", err
			}
			if _, err := io.Copy(part, src); err != nil {
				_ = src.Close()
				return nil, "", err
			}
			_ = src.Close()
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

// writeErrors writes the BFF's structured error shape.
func writeErrors(w http.ResponseWriter, status int, msgs ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": msgs})
}
