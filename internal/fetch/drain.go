package fetch

import (
	"bufio"
	"context"
	"io"

	"CrawlFetcher/internal/logging"
)

const traceBodyLimit = 64 * 1024

// drain reads a rejected body to the end so the connection can be reused.
// At trace level the body is logged instead of discarded.
func (f *DocumentFetcher) drain(ctx context.Context, reference string, body io.Reader) error {
	if f.logger.Enabled(ctx, logging.LevelTrace) {
		shown, err := io.ReadAll(io.LimitReader(body, traceBodyLimit))
		if err != nil {
			return &TransportError{Op: "drain body", Err: err}
		}
		rest, err := io.Copy(io.Discard, bufio.NewReader(body))
		if err != nil {
			return &TransportError{Op: "drain body", Err: err}
		}
		f.logger.Log(ctx, logging.LevelTrace, "rejected response content",
			"reference", reference, "bytes", int64(len(shown))+rest, "content", string(shown))
		return nil
	}

	if _, err := io.Copy(io.Discard, bufio.NewReader(body)); err != nil {
		return &TransportError{Op: "drain body", Err: err}
	}
	return nil
}
