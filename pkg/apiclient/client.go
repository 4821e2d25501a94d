package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client issues JSON API requests against a base URL. The zero value is not
// usable; construct with New.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a Client for the given base URL. Trailing slashes are stripped
// so paths can be joined verbatim.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// Options customizes a single request.
type Options struct {
	// Method defaults to GET.
	Method string

	// Body, when non-nil, is serialized as JSON unless Form is set.
	Body any

	// Form, when non-nil, is sent as multipart/form-data with a freshly
	// generated boundary. Body is ignored in that case.
	Form *Form

	// Token, when non-empty, is sent as an Authorization bearer credential.
	Token string

	// Header overrides or extends the computed headers. An explicit
	// Content-Type here suppresses the automatic application/json one.
	Header http.Header

	// BaseURL overrides the client's base URL for this request.
	BaseURL string
}

// Do performs a request and decodes the response into T.
//
// The final URL is the path itself when absolute, otherwise the base URL
// prefixed to it. Accept is always application/json and response caching is
// disabled so every call hits the network. A 204 yields the zero T without
// touching the body. Non-JSON success bodies are returned as raw text when T
// is string or any.
//
// Every non-2xx response produces a *APIError; transport failures are
// returned unchanged.
func Do[T any](ctx context.Context, c *Client, path string, opts Options) (T, error) {
	var zero T

	base := c.BaseURL
	if opts.BaseURL != "" {
		base = strings.TrimRight(opts.BaseURL, "/")
	}
	url := path
	if !strings.HasPrefix(path, "http") {
		url = base + path
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var (
		body        io.Reader
		formContent string
	)
	switch {
	case opts.Form != nil:
		buf, ct, err := opts.Form.encode()
		if err != nil {
			return zero, fmt.Errorf("encode form: %w", err)
		}
		body, formContent = buf, ct
	case opts.Body != nil:
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return zero, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	if formContent != "" {
		// The multipart writer owns the boundary; never let a caller
		// override it with a stale Content-Type.
		req.Header.Set("Content-Type", formContent)
	} else if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return zero, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return zero, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return decodeSuccess[T](resp.Header.Get("Content-Type"), raw)
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		payload = map[string]any{"message": string(raw)}
	}
	return zero, &APIError{
		Status:   resp.StatusCode,
		Messages: ExtractMessages(payload),
		Payload:  payload,
	}
}

func decodeSuccess[T any](contentType string, raw []byte) (T, error) {
	var out T

	if strings.Contains(contentType, "application/json") {
		if len(raw) == 0 {
			return out, nil
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("decode response: %w", err)
		}
		return out, nil
	}

	// Non-JSON success bodies come back as raw text.
	switch p := any(&out).(type) {
	case *string:
		*p = string(raw)
	case *any:
		*p = string(raw)
	}
	return out, nil
}
