package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"CrawlFetcher/internal/config"
	"CrawlFetcher/internal/domain"
	"CrawlFetcher/internal/logging"
)

func testConfig() config.Config {
	cfg := config.LoadFrom("")
	cfg.Fetch.DetectContentType = true
	cfg.Fetch.DetectCharset = true
	cfg.Fetch.HeadersPrefix = "http."
	cfg.Metrics.Address = "127.0.0.1:0"
	return cfg
}

func TestApplicationRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "crawlfetcher-test" {
			t.Errorf("unexpected user agent %q", got)
		}
		switch r.URL.Path {
		case "/article.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<!doctype html><html><head><meta charset="utf-8"><title>Release notes</title></head><body>hi</body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.HTTP.UserAgent = "crawlfetcher-test"
	enabled := true
	cfg.Metrics.Enabled = &enabled

	application, err := New(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := application.Run(context.Background(), []string{
		server.URL + "/article.html",
		server.URL + "/missing",
		"ftp://example.com/file",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	article := results[0]
	if article.State != domain.StateAccepted || article.Title != "Release notes" {
		t.Fatalf("unexpected article result: %+v", article)
	}
	if article.Metadata[domain.MetaContentType] != "text/html" || article.Metadata[domain.MetaContentEncoding] != "utf-8" {
		t.Fatalf("unexpected collector fields: %v", article.Metadata)
	}
	if article.Metadata["http.Content-Type"] != "text/html; charset=utf-8" {
		t.Fatalf("expected prefixed header, got %v", article.Metadata)
	}
	if results[1].State != domain.StateNotFound || results[1].StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected missing result: %+v", results[1])
	}
	if results[2].State != domain.StateError || results[2].Error == "" {
		t.Fatalf("unsupported scheme should fail: %+v", results[2])
	}

	families, err := application.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != "crawlfetcher_fetch_outcomes_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	if total != 3 {
		t.Fatalf("expected 3 recorded outcomes, got %v", total)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Fetch.ValidStatusCodes = []int{42}
	if _, err := New(cfg, logging.Discard()); err == nil {
		t.Fatalf("expected invalid status code to be rejected")
	}
}
