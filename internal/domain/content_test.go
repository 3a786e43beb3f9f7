package domain

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

type errAfterReader struct {
	r   io.Reader
	err error
}

func (e *errAfterReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err == io.EOF {
		return n, e.err
	}
	return n, err
}

func TestContentIsReReadable(t *testing.T) {
	t.Parallel()

	doc := NewDocument("http://example.com/")
	content := doc.BindContent(strings.NewReader("hello world"))

	if content.Materialized() {
		t.Fatalf("content should be lazy before first read")
	}
	if err := content.Materialize(); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !content.Materialized() || content.Size() != 11 {
		t.Fatalf("unexpected state: materialized=%v size=%d", content.Materialized(), content.Size())
	}

	for i := 0; i < 2; i++ {
		got, err := io.ReadAll(content.NewReader())
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if string(got) != "hello world" {
			t.Fatalf("read %d: unexpected content %q", i, got)
		}
	}
}

func TestContentSpillsToDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := bytes.Repeat([]byte("0123456789"), 10_000)
	doc := NewDocument("http://example.com/big", WithContentLimits(1024, dir))
	content := doc.BindContent(bytes.NewReader(payload))

	if err := content.Materialize(); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one spill file, got %d", len(entries))
	}

	got, err := content.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("spilled content differs: got %d bytes", len(got))
	}

	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected spill file removed, %d left", len(entries))
	}
}

func TestContentReadAfterCloseFails(t *testing.T) {
	t.Parallel()

	for name, limit := range map[string]int64{"spilled": 4, "in memory": DefaultContentMemory} {
		name, limit := name, limit
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc := NewDocument("http://example.com/", WithContentLimits(limit, t.TempDir()))
			content := doc.BindContent(strings.NewReader("0123456789"))
			if err := content.Materialize(); err != nil {
				t.Fatalf("Materialize: %v", err)
			}
			if err := doc.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			if _, err := content.Bytes(); !errors.Is(err, os.ErrClosed) {
				t.Fatalf("expected os.ErrClosed, got %v", err)
			}
			if err := content.Close(); err != nil {
				t.Fatalf("second Close: %v", err)
			}
		})
	}
}

func TestRebindClosesPreviousContent(t *testing.T) {
	t.Parallel()

	doc := NewDocument("http://example.com/", WithContentLimits(4, t.TempDir()))
	first := doc.BindContent(strings.NewReader("first body"))
	if err := first.Materialize(); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	second := doc.BindContent(strings.NewReader("second"))
	defer doc.Close()

	if _, err := first.Bytes(); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("replaced content should be closed, got %v", err)
	}
	got, err := second.Bytes()
	if err != nil || string(got) != "second" {
		t.Fatalf("unexpected new content: %q, %v", got, err)
	}
}

func TestContentKeepsSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	doc := NewDocument("http://example.com/")
	content := doc.BindContent(&errAfterReader{r: strings.NewReader("abc"), err: boom})

	if err := content.Materialize(); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
	if content.Materialized() {
		t.Fatalf("failed content must not report materialized")
	}

	// bytes read before the failure stay available, the error is repeated after them
	got, err := io.ReadAll(content.NewReader())
	if string(got) != "abc" || !errors.Is(err, boom) {
		t.Fatalf("unexpected re-read: %q, %v", got, err)
	}
}

func TestDocumentWithoutContent(t *testing.T) {
	t.Parallel()

	doc := NewDocument("http://example.com/")
	if doc.Content() != nil {
		t.Fatalf("new document should have no content")
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
