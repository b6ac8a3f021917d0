package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	requestTimeout = 30 * time.Second
	userAgent      = "sports-pipeline/1.0"
)

// Provider is the common surface of every upstream adapter.
type Provider interface {
	// Name identifies the upstream source in events and logs.
	Name() string
	// Ping checks reachability. It reports only transport-level
	// failure; any HTTP response counts as reachable.
	Ping(ctx context.Context) error
}

// UpstreamError is a non-success HTTP response from a provider.
type UpstreamError struct {
	Source     string
	Endpoint   string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream returned HTTP %d for %s", e.Source, e.StatusCode, e.Endpoint)
}

// TransformError is a raw payload that cannot be mapped into its
// canonical shape.
type TransformError struct {
	Source string
	Field  string
	Reason string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: cannot transform payload: %s (%s)", e.Source, e.Field, e.Reason)
}

// httpGetJSON performs an authenticated GET against an upstream and
// decodes the JSON body into out. The API key travels as a query
// parameter, which is how all five providers authenticate.
func httpGetJSON(ctx context.Context, client *http.Client, source, baseURL, path string, query url.Values, apiKey string, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	if apiKey != "" {
		query.Set("apiKey", apiKey)
	}

	endpoint := baseURL + path
	reqURL := endpoint
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", source, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &UpstreamError{Source: source, Endpoint: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", source, err)
	}
	return nil
}

// ping issues a bare GET against the provider base URL. Any HTTP
// response means the host is reachable.
func ping(ctx context.Context, client *http.Client, source, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to build ping request: %w", source, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: unreachable: %w", source, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}
