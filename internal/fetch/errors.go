package fetch

import "fmt"

// InvalidReferenceError reports a reference that cannot be turned into a request URI.
type InvalidReferenceError struct {
	Reference string
	Err       error
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference %q: %v", e.Reference, e.Err)
}

func (e *InvalidReferenceError) Unwrap() error { return e.Err }

// TransportError reports a network or I/O failure while talking to the remote host.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FetchError is the single error type carried by ERROR outcomes.
type FetchError struct {
	Reference string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cannot fetch document %s: %v", e.Reference, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
