package detect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"

	"CrawlFetcher/internal/infrastructure/parser"
	"CrawlFetcher/internal/ports"
)

const (
	defaultSampleSize    = 64 * 1024
	defaultMinConfidence = 50
)

// CharsetDetector guesses the character encoding of fetched content. A byte order
// mark wins, then an HTML <meta> declaration, then a statistical guess that is
// confident enough.
type CharsetDetector struct {
	SampleSize    int64
	MinConfidence int
}

var _ ports.CharsetDetector = (*CharsetDetector)(nil)

// NewCharsetDetector returns a detector with default sampling.
func NewCharsetDetector() *CharsetDetector {
	return &CharsetDetector{SampleSize: defaultSampleSize, MinConfidence: defaultMinConfidence}
}

// DetectCharset returns a canonical charset name, or "" when undecidable.
func (d *CharsetDetector) DetectCharset(content io.Reader) (string, error) {
	size := d.SampleSize
	if size <= 0 {
		size = defaultSampleSize
	}
	sample, err := io.ReadAll(io.LimitReader(content, size))
	if err != nil {
		return "", fmt.Errorf("read sample: %w", err)
	}
	if len(sample) == 0 {
		return "", nil
	}

	if _, name, certain := charset.DetermineEncoding(sample, ""); certain {
		return canonicalCharset(name), nil
	}

	detector := chardet.NewTextDetector()
	if looksLikeHTML(sample) {
		declared, err := parser.MetaCharset(bytes.NewReader(sample))
		if err != nil {
			return "", err
		}
		if declared != "" {
			if _, err := htmlindex.Get(declared); err == nil {
				return canonicalCharset(declared), nil
			}
		}
		detector = chardet.NewHtmlDetector()
	}
	best, err := detector.DetectBest(sample)
	if err != nil {
		if errors.Is(err, chardet.NotDetectedError) {
			return "", nil
		}
		return "", fmt.Errorf("detect charset: %w", err)
	}
	if best.Confidence < d.MinConfidence {
		return "", nil
	}
	return canonicalCharset(best.Charset), nil
}

// canonicalCharset maps aliases onto WHATWG names; unknown names are returned as given.
func canonicalCharset(name string) string {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return name
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return name
	}
	return canonical
}

func looksLikeHTML(sample []byte) bool {
	head := sample
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html")
}
