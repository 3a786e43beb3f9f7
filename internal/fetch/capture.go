package fetch

import (
	"io"

	"CrawlFetcher/internal/domain"
)

// captureContent binds body to the document and reads it through once so the
// cached copy survives the transport stream being closed.
func captureContent(doc *domain.Document, body io.Reader) error {
	content := doc.BindContent(body)
	if err := content.Materialize(); err != nil {
		return &TransportError{Op: "read body", Err: err}
	}
	return nil
}
