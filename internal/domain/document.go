package domain

import "io"

// DefaultContentMemory is how many content bytes a document keeps in memory before spilling.
const DefaultContentMemory int64 = 1 << 20

// Document is the crawler's in-memory representation of a remote resource.
// The crawler creates and closes it; the fetcher only fills metadata and content.
type Document struct {
	Reference string
	Metadata  *Metadata

	content   *Content
	maxMemory int64
	tempDir   string
}

// DocumentOption customises a new document.
type DocumentOption func(*Document)

// WithContentLimits sets the in-memory cache size and the directory used for spill files.
func WithContentLimits(maxMemory int64, tempDir string) DocumentOption {
	return func(d *Document) {
		d.maxMemory = maxMemory
		d.tempDir = tempDir
	}
}

// NewDocument creates an empty document for reference.
func NewDocument(reference string, opts ...DocumentOption) *Document {
	doc := &Document{
		Reference: reference,
		Metadata:  NewMetadata(),
		maxMemory: DefaultContentMemory,
	}
	for _, opt := range opts {
		opt(doc)
	}
	return doc
}

// Content returns the bound content, or nil when nothing was bound.
func (d *Document) Content() *Content {
	return d.content
}

// BindContent replaces the document content with a lazily cached view of r.
func (d *Document) BindContent(r io.Reader) *Content {
	if d.content != nil {
		_ = d.content.Close()
	}
	d.content = newContent(r, d.maxMemory, d.tempDir)
	return d.content
}

// Close releases resources held by the content cache.
func (d *Document) Close() error {
	if d.content == nil {
		return nil
	}
	return d.content.Close()
}
