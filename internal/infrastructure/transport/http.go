package transport

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"CrawlFetcher/internal/domain"
	"CrawlFetcher/internal/logging"
	"CrawlFetcher/internal/ports"
)

const schemeBasic = "basic"

// Credentials are offered to a host that challenges with basic authentication.
type Credentials struct {
	Host     string
	Username string
	Password string
}

// ClientOptions configures the *http.Client built by NewHTTPClient.
type ClientOptions struct {
	Timeout      time.Duration
	MaxRedirects int
	Cookies      bool
}

// NewHTTPClient builds a client with a redirect cap and, optionally, a cookie jar
// that honours public suffix boundaries.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= opts.MaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	if opts.Cookies {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		client.Jar = jar
	}
	return client, nil
}

// HTTPTransport executes fetch requests and keeps the session's auth state current.
type HTTPTransport struct {
	client      ports.HTTPClient
	credentials map[string]Credentials
	logger      *slog.Logger
}

var _ ports.Transport = (*HTTPTransport)(nil)

// NewHTTPTransport wires an HTTP client with the credentials offered on challenge.
func NewHTTPTransport(client ports.HTTPClient, creds []Credentials, logger *slog.Logger) *HTTPTransport {
	byHost := make(map[string]Credentials, len(creds))
	for _, c := range creds {
		byHost[strings.ToLower(c.Host)] = c
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPTransport{client: client, credentials: byHost, logger: logger}
}

// Execute sends req, authenticating preemptively when the session already knows
// the host's scheme and answering one basic challenge otherwise.
func (t *HTTPTransport) Execute(req *http.Request, session *domain.Session) (*domain.Response, error) {
	if session.AuthCache == nil {
		session.AuthCache = domain.NewAuthCache()
	}
	host := req.URL.Host
	token := session.UserToken

	preemptive := false
	if scheme, ok := session.AuthCache.Get(host); ok && scheme.Name == schemeBasic {
		req.SetBasicAuth(scheme.Username, scheme.Password)
		token = scheme.Username
		preemptive = true
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if preemptive {
			session.AuthCache.Remove(host)
			token = nil
		} else if creds, ok := t.credentials[strings.ToLower(host)]; ok && challengesBasic(resp.Header) {
			t.logger.Debug("answering basic auth challenge", "host", host, "user", creds.Username)
			discard(resp.Body)

			retry := req.Clone(req.Context())
			retry.SetBasicAuth(creds.Username, creds.Password)
			resp, err = t.client.Do(retry)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode != http.StatusUnauthorized {
				session.AuthCache.Put(host, domain.AuthScheme{
					Name:     schemeBasic,
					Username: creds.Username,
					Password: creds.Password,
				})
				token = creds.Username
			}
		}
	}

	return &domain.Response{
		StatusCode: resp.StatusCode,
		Reason:     domain.ReasonFromStatus(resp.StatusCode, resp.Status),
		Header:     orderedHeaders(resp.Header),
		Body:       resp.Body,
		UserToken:  token,
	}, nil
}

func challengesBasic(h http.Header) bool {
	for _, v := range h.Values("WWW-Authenticate") {
		scheme, _, _ := strings.Cut(strings.TrimSpace(v), " ")
		if strings.EqualFold(scheme, schemeBasic) {
			return true
		}
	}
	return false
}

// orderedHeaders flattens h by canonical name; values keep their wire order.
func orderedHeaders(h http.Header) []domain.HeaderField {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]domain.HeaderField, 0, len(names))
	for _, name := range names {
		for _, v := range h[name] {
			fields = append(fields, domain.HeaderField{Name: name, Value: v})
		}
	}
	return fields
}

func discard(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
