// Package metrics instruments document fetching with Prometheus collectors.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CrawlFetcher/internal/domain"
	"CrawlFetcher/internal/ports"
)

const namespace = "crawlfetcher"

// Collectors holds the fetch metrics registered on one registry.
type Collectors struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the fetch collectors on reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_outcomes_total",
			Help:      "Fetch calls by resulting crawl state.",
		}, []string{"state"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of fetch calls including body consumption.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"state"}),
	}
	for _, col := range []prometheus.Collector{c.outcomes, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return c, nil
}

// Wrap returns a fetcher that records every outcome of next.
func (c *Collectors) Wrap(next ports.DocumentFetcher) ports.DocumentFetcher {
	return &instrumentedFetcher{next: next, collectors: c}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type instrumentedFetcher struct {
	next       ports.DocumentFetcher
	collectors *Collectors
}

var _ ports.DocumentFetcher = (*instrumentedFetcher)(nil)

func (f *instrumentedFetcher) Fetch(ctx context.Context, doc *domain.Document, session *domain.Session) domain.FetchOutcome {
	start := time.Now()
	outcome := f.next.Fetch(ctx, doc, session)
	state := string(outcome.State)
	f.collectors.outcomes.WithLabelValues(state).Inc()
	f.collectors.duration.WithLabelValues(state).Observe(time.Since(start).Seconds())
	return outcome
}
