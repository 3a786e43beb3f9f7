// Package fetch turns a single HTTP exchange into a classified crawl outcome and
// fills the crawler's document with the accepted headers and content.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"CrawlFetcher/internal/domain"
	"CrawlFetcher/internal/logging"
	"CrawlFetcher/internal/ports"
)

var errNoDocument = errors.New("no document to fetch")

// Deps wires the collaborators a DocumentFetcher needs.
type Deps struct {
	Transport    ports.Transport
	Requests     ports.RequestBuilder
	ContentTypes ports.ContentTypeDetector
	Charsets     ports.CharsetDetector
	Logger       *slog.Logger
}

// DocumentFetcher fetches one document per call. Calls are synchronous; the only
// state carried between them is the caller's session.
type DocumentFetcher struct {
	policy       Policy
	transport    ports.Transport
	requests     ports.RequestBuilder
	contentTypes ports.ContentTypeDetector
	charsets     ports.CharsetDetector
	logger       *slog.Logger
}

var _ ports.DocumentFetcher = (*DocumentFetcher)(nil)

// NewDocumentFetcher validates policy and wires deps. Requests defaults to a GET
// builder; detectors are required only when the matching detection is enabled.
func NewDocumentFetcher(policy Policy, deps Deps) (*DocumentFetcher, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("fetch policy: %w", err)
	}
	if deps.Transport == nil {
		return nil, errors.New("transport is not configured")
	}
	if policy.DetectContentType && deps.ContentTypes == nil {
		return nil, errors.New("content type detection enabled without a detector")
	}
	if policy.DetectCharset && deps.Charsets == nil {
		return nil, errors.New("charset detection enabled without a detector")
	}

	requests := deps.Requests
	if requests == nil {
		requests = &GetRequestBuilder{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &DocumentFetcher{
		policy:       policy.clone(),
		transport:    deps.Transport,
		requests:     requests,
		contentTypes: deps.ContentTypes,
		charsets:     deps.Charsets,
		logger:       logger,
	}, nil
}

// Policy returns a copy of the policy in effect.
func (f *DocumentFetcher) Policy() Policy {
	return f.policy.clone()
}

// Fetch executes the request for doc and classifies the response. The response
// body is closed exactly once before Fetch returns, whatever the outcome.
// A nil session fetches without authentication continuity.
func (f *DocumentFetcher) Fetch(ctx context.Context, doc *domain.Document, session *domain.Session) (outcome domain.FetchOutcome) {
	if doc == nil {
		return f.fail(f.logger, nil, nil, &InvalidReferenceError{Err: errNoDocument})
	}
	if session == nil {
		session = domain.NewSession()
	}
	log := f.logger.With("fetch_id", uuid.NewString(), "reference", doc.Reference)
	log.Debug("fetching document")

	var (
		resp     *domain.Response
		released bool
	)
	defer func() {
		if resp == nil || resp.Body == nil || released {
			return
		}
		released = true
		if err := resp.Body.Close(); err != nil {
			log.Debug("close response body", "error", err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			outcome = f.fail(log, doc, resp, fmt.Errorf("panic: %v", r))
		}
	}()

	req, err := f.requests.BuildRequest(ctx, doc.Reference)
	if err != nil {
		return f.fail(log, doc, nil, err)
	}

	resp, err = f.transport.Execute(req, session)
	if err == nil && resp == nil {
		err = errors.New("transport returned no response")
	}
	if err != nil {
		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			err = &TransportError{Op: "execute " + req.Method, Err: err}
		}
		return f.fail(log, doc, nil, err)
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	session.UserToken = resp.UserToken

	state := f.policy.Classify(resp.StatusCode)
	if state == domain.StateAccepted {
		f.collectHeaders(doc, resp.Header)
		if err := captureContent(doc, resp.Body); err != nil {
			return f.fail(log, doc, resp, err)
		}
		if err := f.detect(doc); err != nil {
			return f.fail(log, doc, resp, err)
		}
		return domain.FetchOutcome{State: state, StatusCode: resp.StatusCode, Reason: resp.Reason}
	}

	if err := f.drain(ctx, doc.Reference, resp.Body); err != nil {
		return f.fail(log, doc, resp, err)
	}
	if state == domain.StateRejected {
		log.Debug("unsupported HTTP response", "status", resp.StatusCode, "reason", resp.Reason)
	}
	return domain.FetchOutcome{State: state, StatusCode: resp.StatusCode, Reason: resp.Reason}
}

func (f *DocumentFetcher) fail(log *slog.Logger, doc *domain.Document, resp *domain.Response, err error) domain.FetchOutcome {
	log.Info("cannot fetch document", "error", err)
	var reference string
	if doc != nil {
		reference = doc.Reference
	}
	outcome := domain.FetchOutcome{
		State: domain.StateError,
		Err:   &FetchError{Reference: reference, Err: err},
	}
	if resp != nil {
		outcome.StatusCode = resp.StatusCode
		outcome.Reason = resp.Reason
	}
	return outcome
}
