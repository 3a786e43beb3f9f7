package fetch

import (
	"testing"

	"CrawlFetcher/internal/domain"
)

func TestPolicyClassify(t *testing.T) {
	t.Parallel()

	policy := Policy{
		ValidStatusCodes:    []int{200, 203, 404},
		NotFoundStatusCodes: []int{404, 410},
	}

	for code := 100; code <= 599; code++ {
		got := policy.Classify(code)
		var want domain.CrawlState
		switch code {
		case 200, 203, 404:
			want = domain.StateAccepted
		case 410:
			want = domain.StateNotFound
		default:
			want = domain.StateRejected
		}
		if got != want {
			t.Fatalf("code %d: expected %s, got %s", code, want, got)
		}
	}
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	if p.Classify(200) != domain.StateAccepted {
		t.Fatalf("200 should be accepted by default")
	}
	if p.Classify(404) != domain.StateNotFound {
		t.Fatalf("404 should be not found by default")
	}
	if p.Classify(204) != domain.StateRejected {
		t.Fatalf("204 should be rejected by default")
	}
	if p.DetectCharset || p.DetectContentType || p.HeadersPrefix != "" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestFetcherPolicyIsCopied(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	f, err := NewDocumentFetcher(policy, Deps{Transport: &fakeTransport{}})
	if err != nil {
		t.Fatalf("NewDocumentFetcher: %v", err)
	}

	policy.ValidStatusCodes[0] = 500
	if f.Policy().Classify(500) != domain.StateRejected {
		t.Fatalf("fetcher policy must not alias the caller's slices")
	}
}
