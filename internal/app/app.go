package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"CrawlFetcher/internal/config"
	"CrawlFetcher/internal/fetch"
	"CrawlFetcher/internal/infrastructure/detect"
	"CrawlFetcher/internal/infrastructure/transport"
	"CrawlFetcher/internal/logging"
	"CrawlFetcher/internal/metrics"
	"CrawlFetcher/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	batch    *usecase.Batch
	registry *prometheus.Registry
}

// New validates cfg and builds the fetch stack.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	client, err := transport.NewHTTPClient(transport.ClientOptions{
		Timeout:      cfg.HTTP.Timeout,
		MaxRedirects: cfg.HTTP.RedirectLimit(),
		Cookies:      cfg.HTTP.CookiesEnabled(),
	})
	if err != nil {
		return nil, fmt.Errorf("http client: %w", err)
	}

	creds := make([]transport.Credentials, 0, len(cfg.HTTP.Credentials))
	for _, c := range cfg.HTTP.Credentials {
		creds = append(creds, transport.Credentials{Host: c.Host, Username: c.Username, Password: c.Password})
	}

	fetcher, err := fetch.NewDocumentFetcher(cfg.Fetch.Policy(), fetch.Deps{
		Transport:    transport.NewHTTPTransport(client, creds, baseLogger.With("component", "transport")),
		Requests:     &fetch.GetRequestBuilder{UserAgent: cfg.HTTP.UserAgent},
		ContentTypes: detect.NewContentTypeDetector(),
		Charsets:     detect.NewCharsetDetector(),
		Logger:       baseLogger.With("component", "fetcher"),
	})
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}

	registry := prometheus.NewRegistry()
	collectors, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	batch := usecase.NewBatch(usecase.BatchDeps{
		Fetcher:          collectors.Wrap(fetcher),
		Logger:           baseLogger.With("component", "batch"),
		MaxContentMemory: cfg.Content.MaxMemoryBytes,
		TempDir:          cfg.Content.TempDir,
	})

	return &Application{cfg: cfg, logger: baseLogger, batch: batch, registry: registry}, nil
}

// Registry exposes the metrics registry fetches are recorded on.
func (a *Application) Registry() *prometheus.Registry {
	return a.registry
}

// Run fetches every reference once. When metrics are enabled the registry is
// served on the configured address until the batch finishes.
func (a *Application) Run(ctx context.Context, references []string) ([]usecase.Result, error) {
	if a.cfg.Metrics.Serve() {
		stop, err := a.serveMetrics()
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	a.logger.Info("fetching documents", "count", len(references))
	results, err := a.batch.Run(ctx, references)
	if err != nil {
		return results, fmt.Errorf("batch: %w", err)
	}
	return results, nil
}

func (a *Application) serveMetrics() (func(), error) {
	listener, err := net.Listen("tcp", a.cfg.Metrics.Address)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "address", listener.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown", "error", err)
		}
	}, nil
}
