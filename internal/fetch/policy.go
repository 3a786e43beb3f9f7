package fetch

import (
	"fmt"
	"slices"
	"strings"

	"CrawlFetcher/internal/domain"
)

// Policy decides how responses are classified and what is captured from them.
// It is read-only once the fetcher is built.
type Policy struct {
	ValidStatusCodes    []int
	NotFoundStatusCodes []int
	HeadersPrefix       string
	DetectContentType   bool
	DetectCharset       bool
}

// DefaultPolicy accepts 200 and treats 404 as not found.
func DefaultPolicy() Policy {
	return Policy{
		ValidStatusCodes:    []int{200},
		NotFoundStatusCodes: []int{404},
	}
}

// Classify maps a status code to a crawl state. Valid codes win over not-found codes.
func (p Policy) Classify(code int) domain.CrawlState {
	if slices.Contains(p.ValidStatusCodes, code) {
		return domain.StateAccepted
	}
	if slices.Contains(p.NotFoundStatusCodes, code) {
		return domain.StateNotFound
	}
	return domain.StateRejected
}

// Validate checks that every configured code is a plausible HTTP status.
func (p Policy) Validate() error {
	for _, code := range p.ValidStatusCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("valid status code %d out of range", code)
		}
	}
	for _, code := range p.NotFoundStatusCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("not-found status code %d out of range", code)
		}
	}
	return nil
}

func (p Policy) headerKey(name string) string {
	if strings.TrimSpace(p.HeadersPrefix) == "" {
		return name
	}
	return p.HeadersPrefix + name
}

func (p Policy) clone() Policy {
	p.ValidStatusCodes = slices.Clone(p.ValidStatusCodes)
	p.NotFoundStatusCodes = slices.Clone(p.NotFoundStatusCodes)
	return p
}
