package ports

import (
	"context"
	"io"
	"net/http"

	"CrawlFetcher/internal/domain"
)

// HTTPClient matches the Do method of *http.Client so tests can inject fakes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestBuilder turns a document reference into the request the fetcher executes.
type RequestBuilder interface {
	BuildRequest(ctx context.Context, reference string) (*http.Request, error)
}

// Transport executes requests on behalf of a session. Closing the returned body
// releases the connection.
type Transport interface {
	Execute(req *http.Request, session *domain.Session) (*domain.Response, error)
}

// ContentTypeDetector sniffs the media type of fetched content.
type ContentTypeDetector interface {
	DetectContentType(content io.Reader, reference string) (string, error)
}

// CharsetDetector sniffs the character encoding of fetched content.
type CharsetDetector interface {
	DetectCharset(content io.Reader) (string, error)
}

// DocumentFetcher is the entry point the crawler calls for every document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, doc *domain.Document, session *domain.Session) domain.FetchOutcome
}
