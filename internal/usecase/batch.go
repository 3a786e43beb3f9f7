package usecase

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/net/html/charset"

	"CrawlFetcher/internal/domain"
	"CrawlFetcher/internal/infrastructure/parser"
	"CrawlFetcher/internal/logging"
	"CrawlFetcher/internal/ports"
)

const mediaTypeHTML = "text/html"

// BatchDeps wires the collaborators a Batch needs.
type BatchDeps struct {
	Fetcher ports.DocumentFetcher
	Logger  *slog.Logger
	// MaxContentMemory and TempDir bound each document's content cache.
	MaxContentMemory int64
	TempDir          string
}

// Result is the crawler-facing summary of one fetch.
type Result struct {
	Reference   string            `json:"reference"`
	State       domain.CrawlState `json:"state"`
	StatusCode  int               `json:"status,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ContentSize int64             `json:"contentSize"`
	Title       string            `json:"title,omitempty"`

	outcome domain.FetchOutcome
}

// Outcome returns the fetch outcome the result was built from.
func (r Result) Outcome() domain.FetchOutcome {
	return r.outcome
}

// Batch fetches a list of references the way a crawler loop would.
type Batch struct {
	fetcher   ports.DocumentFetcher
	logger    *slog.Logger
	maxMemory int64
	tempDir   string
}

// NewBatch constructs the batch use case.
func NewBatch(deps BatchDeps) *Batch {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	maxMemory := deps.MaxContentMemory
	if maxMemory <= 0 {
		maxMemory = domain.DefaultContentMemory
	}
	return &Batch{
		fetcher:   deps.Fetcher,
		logger:    logger,
		maxMemory: maxMemory,
		tempDir:   deps.TempDir,
	}
}

// Run fetches references in order, sharing one session so authentication
// negotiated for one document carries over to the next. It stops early only
// when ctx is cancelled; the results gathered so far are returned with ctx.Err().
func (b *Batch) Run(ctx context.Context, references []string) ([]Result, error) {
	session := domain.NewSession()
	results := make([]Result, 0, len(references))

	for _, reference := range references {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, b.fetchOne(ctx, reference, session))
	}
	return results, nil
}

func (b *Batch) fetchOne(ctx context.Context, reference string, session *domain.Session) Result {
	doc := domain.NewDocument(reference, domain.WithContentLimits(b.maxMemory, b.tempDir))
	defer func() {
		if err := doc.Close(); err != nil {
			b.logger.Warn("close document", "reference", reference, "error", err)
		}
	}()

	outcome := b.fetcher.Fetch(ctx, doc, session)
	result := Result{
		Reference:  reference,
		State:      outcome.State,
		StatusCode: outcome.StatusCode,
		Reason:     outcome.Reason,
		outcome:    outcome,
	}
	if outcome.Err != nil {
		result.Error = outcome.Err.Error()
	}
	if doc.Metadata.Len() > 0 {
		result.Metadata = doc.Metadata.Map()
	}

	content := doc.Content()
	if !outcome.OK() || content == nil {
		return result
	}
	result.ContentSize = content.Size()

	if contentType, _ := doc.Metadata.Get(domain.MetaContentType); contentType == mediaTypeHTML {
		title, err := htmlTitle(content, doc.Metadata)
		if err != nil {
			b.logger.Debug("cannot extract title", "reference", reference, "error", err)
		}
		result.Title = title
	}
	return result
}

// htmlTitle decodes content with the recorded charset before parsing.
func htmlTitle(content *domain.Content, md *domain.Metadata) (string, error) {
	var r io.Reader = content.NewReader()
	if label, ok := md.Get(domain.MetaContentEncoding); ok && label != "" {
		decoded, err := charset.NewReaderLabel(label, r)
		if err == nil {
			r = decoded
		}
	}
	return parser.Title(r)
}
