package detect

import (
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"CrawlFetcher/internal/ports"
)

const octetStream = "application/octet-stream"

// ContentTypeDetector sniffs media types from magic numbers, falling back to the
// reference's file extension when the bytes are inconclusive.
type ContentTypeDetector struct{}

var _ ports.ContentTypeDetector = (*ContentTypeDetector)(nil)

// NewContentTypeDetector returns a ready detector.
func NewContentTypeDetector() *ContentTypeDetector {
	return &ContentTypeDetector{}
}

// DetectContentType returns the bare media type (no parameters) or "" when unknown.
func (d *ContentTypeDetector) DetectContentType(content io.Reader, reference string) (string, error) {
	mtype, err := mimetype.DetectReader(content)
	if err != nil {
		return "", fmt.Errorf("sniff content: %w", err)
	}

	detected := bareMediaType(mtype.String())
	if detected != "" && detected != octetStream {
		return detected, nil
	}
	if byExt := typeFromReference(reference); byExt != "" {
		return byExt, nil
	}
	return detected, nil
}

func typeFromReference(reference string) string {
	u, err := url.Parse(reference)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" {
		return ""
	}
	return bareMediaType(mime.TypeByExtension(ext))
}

func bareMediaType(value string) string {
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return ""
	}
	return mediaType
}
