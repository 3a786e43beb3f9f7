package fetch

import (
	"fmt"
	"strings"

	"CrawlFetcher/internal/domain"
)

// detect overwrites header-derived content type and encoding with sniffed values
// when detection is enabled. Empty detections leave metadata untouched.
func (f *DocumentFetcher) detect(doc *domain.Document) error {
	content := doc.Content()
	if content == nil {
		return nil
	}

	if f.policy.DetectContentType {
		ct, err := f.contentTypes.DetectContentType(content.NewReader(), doc.Reference)
		if err != nil {
			return fmt.Errorf("detect content type: %w", err)
		}
		if ct != "" {
			doc.Metadata.Set(domain.MetaContentType, ct)
		}
	}

	if f.policy.DetectCharset {
		charset, err := f.charsets.DetectCharset(content.NewReader())
		if err != nil {
			return fmt.Errorf("detect charset: %w", err)
		}
		if strings.TrimSpace(charset) != "" {
			doc.Metadata.Set(domain.MetaContentEncoding, charset)
		}
	}
	return nil
}
