package domain

import (
	"io"
	"strconv"
	"strings"
)

// CrawlState classifies the result of one fetch.
type CrawlState string

const (
	StateAccepted CrawlState = "accepted"
	StateNotFound CrawlState = "not_found"
	StateRejected CrawlState = "rejected"
	StateError    CrawlState = "error"
)

// FetchOutcome is the immutable result of a fetch call. Err is set only for StateError.
type FetchOutcome struct {
	State      CrawlState
	StatusCode int
	Reason     string
	Err        error
}

// OK reports whether the document was accepted.
func (o FetchOutcome) OK() bool {
	return o.State == StateAccepted
}

// HeaderField is a single response header in the order the transport delivered it.
type HeaderField struct {
	Name  string
	Value string
}

// Response is what a transport hands back for an executed request.
// Closing Body releases the underlying connection.
type Response struct {
	StatusCode int
	Reason     string
	Header     []HeaderField
	Body       io.ReadCloser
	// UserToken is the session token the transport negotiated for this exchange.
	UserToken any
}

// ReasonFromStatus extracts the reason phrase from a status line such as "404 Not Found".
func ReasonFromStatus(code int, status string) string {
	return strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
}
