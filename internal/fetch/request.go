package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"CrawlFetcher/internal/ports"
)

// GetRequestBuilder is the default request strategy: a GET on the reference URI.
type GetRequestBuilder struct {
	UserAgent string
	Header    http.Header
}

var _ ports.RequestBuilder = (*GetRequestBuilder)(nil)

// BuildRequest parses reference and wraps it in a GET request.
func (b *GetRequestBuilder) BuildRequest(ctx context.Context, reference string) (*http.Request, error) {
	u, err := ParseReference(reference)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &InvalidReferenceError{Reference: reference, Err: err}
	}
	for name, values := range b.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}
	return req, nil
}

// RequestBuilderFunc adapts a function to ports.RequestBuilder.
type RequestBuilderFunc func(ctx context.Context, reference string) (*http.Request, error)

// BuildRequest calls f.
func (f RequestBuilderFunc) BuildRequest(ctx context.Context, reference string) (*http.Request, error) {
	return f(ctx, reference)
}

// ParseReference normalises reference into an absolute http(s) URL.
func ParseReference(reference string) (*url.URL, error) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return nil, &InvalidReferenceError{Reference: reference, Err: errors.New("empty reference")}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, &InvalidReferenceError{Reference: reference, Err: err}
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &InvalidReferenceError{Reference: reference, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &InvalidReferenceError{Reference: reference, Err: errors.New("missing host")}
	}
	u.Fragment = ""
	return u, nil
}
