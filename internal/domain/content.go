package domain

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const fillChunk = 32 * 1024

// Content caches a byte stream as it is consumed so it can be re-read any number
// of times after the source is gone. Bytes beyond maxMemory spill to a temp file.
type Content struct {
	mu        sync.Mutex
	src       io.Reader
	srcErr    error
	mem       []byte
	file      *os.File
	size      int64
	maxMemory int64
	tempDir   string
	closed    bool
}

func newContent(src io.Reader, maxMemory int64, tempDir string) *Content {
	return &Content{src: src, maxMemory: maxMemory, tempDir: tempDir}
}

// NewReader returns an independent reader positioned at the start of the content.
// Reading past the cached bytes pulls more data from the source.
func (c *Content) NewReader() io.Reader {
	return &contentReader{content: c}
}

// Materialize reads the source to its end so that the content no longer depends on it.
func (c *Content) Materialize() error {
	_, err := io.Copy(io.Discard, c.NewReader())
	return err
}

// Materialized reports whether the source has been fully consumed.
func (c *Content) Materialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.src == nil && c.srcErr == nil
}

// Size returns the number of bytes cached so far.
func (c *Content) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Bytes reads the whole content into memory.
func (c *Content) Bytes() ([]byte, error) {
	return io.ReadAll(c.NewReader())
}

// Close drops the cached bytes and removes the spill file, if any. Reads after
// Close fail with os.ErrClosed. The source stream is not closed.
func (c *Content) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.mem = nil
	if c.file == nil {
		return nil
	}
	name := c.file.Name()
	closeErr := c.file.Close()
	removeErr := os.Remove(name)
	c.file = nil
	return errors.Join(closeErr, removeErr)
}

func (c *Content) readAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, fmt.Errorf("read content: %w", os.ErrClosed)
	}

	for off >= c.size {
		if err := c.fill(); err != nil {
			return 0, err
		}
	}

	n := int64(len(p))
	if remaining := c.size - off; n > remaining {
		n = remaining
	}
	if c.file != nil {
		return c.file.ReadAt(p[:n], off)
	}
	return copy(p[:n], c.mem[off:off+n]), nil
}

// fill pulls one chunk from the source into the cache. Callers hold mu.
func (c *Content) fill() error {
	if c.src == nil {
		if c.srcErr != nil {
			return c.srcErr
		}
		return io.EOF
	}

	buf := make([]byte, fillChunk)
	n, err := c.src.Read(buf)
	if n > 0 {
		if storeErr := c.store(buf[:n]); storeErr != nil {
			c.src = nil
			c.srcErr = storeErr
			return storeErr
		}
	}
	switch {
	case errors.Is(err, io.EOF):
		c.src = nil
	case err != nil:
		c.src = nil
		c.srcErr = err
		if n == 0 {
			return err
		}
	}
	return nil
}

func (c *Content) store(b []byte) error {
	if c.file == nil && (c.maxMemory <= 0 || int64(len(c.mem)+len(b)) <= c.maxMemory) {
		c.mem = append(c.mem, b...)
		c.size += int64(len(b))
		return nil
	}

	if c.file == nil {
		f, err := os.CreateTemp(c.tempDir, "crawlfetcher-content-*")
		if err != nil {
			return fmt.Errorf("create spill file: %w", err)
		}
		if _, err := f.Write(c.mem); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return fmt.Errorf("spill cached content: %w", err)
		}
		c.file = f
		c.mem = nil
	}

	if _, err := c.file.WriteAt(b, c.size); err != nil {
		return fmt.Errorf("write spill file: %w", err)
	}
	c.size += int64(len(b))
	return nil
}

type contentReader struct {
	content *Content
	off     int64
}

func (r *contentReader) Read(p []byte) (int, error) {
	n, err := r.content.readAt(p, r.off)
	r.off += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}
