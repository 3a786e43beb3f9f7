package fetch

import (
	"mime"
	"strings"

	"CrawlFetcher/internal/domain"
)

// collectHeaders copies response headers into metadata. The first value written
// under a key is kept; later headers with the same effective key are dropped.
func (f *DocumentFetcher) collectHeaders(doc *domain.Document, headers []domain.HeaderField) {
	for _, h := range headers {
		doc.Metadata.AddIfAbsent(f.policy.headerKey(h.Name), h.Value)
	}
	seedContentFields(doc.Metadata, headers)
}

// seedContentFields derives the collector content type and encoding from the
// first Content-Type header, without touching values already present.
func seedContentFields(md *domain.Metadata, headers []domain.HeaderField) {
	for _, h := range headers {
		if !strings.EqualFold(h.Name, "Content-Type") {
			continue
		}
		mediaType, charset := splitContentType(h.Value)
		if mediaType != "" {
			md.AddIfAbsent(domain.MetaContentType, mediaType)
		}
		if charset != "" {
			md.AddIfAbsent(domain.MetaContentEncoding, charset)
		}
		return
	}
}

func splitContentType(value string) (string, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ""
	}
	mediaType, params, err := mime.ParseMediaType(value)
	if err != nil {
		// keep whatever precedes the first parameter
		mediaType, _, _ = strings.Cut(value, ";")
		return strings.TrimSpace(mediaType), ""
	}
	return mediaType, params["charset"]
}
