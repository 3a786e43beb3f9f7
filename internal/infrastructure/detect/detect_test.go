package detect

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("stream reset") }

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	binary := []byte{0x7f, 'n', 'o', 'p', 'e', 0x00, 0x00, 0x01}

	cases := []struct {
		name      string
		content   []byte
		reference string
		want      string
	}{
		{"html", []byte("<!DOCTYPE html><html><head><title>t</title></head><body>hi</body></html>"), "http://example.com/page", "text/html"},
		{"png ignores extension", png, "http://example.com/file.txt", "image/png"},
		{"extension fallback", binary, "http://example.com/data.json?x=1", "application/json"},
		{"unknown stays octet stream", binary, "http://example.com/blob", "application/octet-stream"},
	}

	d := NewContentTypeDetector()
	for _, tc := range cases {
		got, err := d.DetectContentType(bytes.NewReader(tc.content), tc.reference)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestDetectCharset(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content []byte
		want    string
	}{
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...), "utf-8"},
		{"utf-16le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "utf-16le"},
		{"meta declaration", []byte(`<!DOCTYPE html><html><head><meta charset="Shift_JIS"></head><body>x</body></html>`), "shift_jis"},
		{"empty", nil, ""},
	}

	d := NewCharsetDetector()
	for _, tc := range cases {
		got, err := d.DetectCharset(bytes.NewReader(tc.content))
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestDetectCharsetIgnoresUnknownMeta(t *testing.T) {
	t.Parallel()

	d := &CharsetDetector{MinConfidence: 101}
	html := `<html><head><meta charset="no-such-charset"></head><body>plain ascii text</body></html>`

	got, err := d.DetectCharset(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no confident guess, got %q", got)
	}
}

func TestDetectorsPropagateReadErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewCharsetDetector().DetectCharset(brokenReader{}); err == nil {
		t.Fatalf("expected charset read error")
	}
	if _, err := NewContentTypeDetector().DetectContentType(io.MultiReader(brokenReader{}), "http://example.com/"); err == nil {
		t.Fatalf("expected content type read error")
	}
}
