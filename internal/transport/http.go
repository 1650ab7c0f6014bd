package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// HTTP posts each invocation to <endpoint>/<command>.
type HTTP struct {
	base   *url.URL
	client *http.Client
	token  string
}

// HTTPOption configures an HTTP transport.
type HTTPOption func(*HTTP)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) HTTPOption {
	return func(h *HTTP) {
		h.token = strings.TrimSpace(token)
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = c
	}
}

// NewHTTP returns an adapter for a host listening at endpoint (e.g. http://127.0.0.1:8080).
func NewHTTP(endpoint string, opts ...HTTPOption) (*HTTP, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: scheme must be http or https", endpoint)
	}
	h := &HTTP{base: u, client: &http.Client{Timeout: 30 * time.Second}}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

func (h *HTTP) Invoke(ctx context.Context, command string, req Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base.JoinPath(command).String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	if h.token != "" {
		r.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(r)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", command, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		re := &RemoteError{Status: resp.StatusCode}
		var env struct {
			Errors []ErrorEntry `json:"errors"`
		}
		if json.Unmarshal(raw, &env) == nil && len(env.Errors) > 0 {
			re.Errors = env.Errors
		} else {
			re.Errors = []ErrorEntry{{Message: strings.TrimSpace(string(raw))}}
		}
		return nil, re
	}
	return raw, nil
}
