package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"CrawlFetcher/internal/app"
	"CrawlFetcher/internal/config"
	"CrawlFetcher/internal/domain"
	"CrawlFetcher/internal/logging"
	"CrawlFetcher/internal/usecase"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var errFetchFailed = errors.New("one or more fetches failed")

type fetchOptions struct {
	configPath        string
	headersPrefix     string
	detectContentType bool
	detectCharset     bool
	validStatus       []int
	notFoundStatus    []int
	output            string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crawlfetcher",
		Short:         "Fetch documents and classify them the way the crawler does",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newFetchCmd())
	return root
}

func newFetchCmd() *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch <reference>...",
		Short: "Fetch one or more references and print their crawl state",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runFetch(cmd, opts, args)
			if err != nil && !errors.Is(err, errFetchFailed) {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default $CRAWL_FETCHER_CONFIG)")
	flags.StringVar(&opts.headersPrefix, "headers-prefix", "", "prefix for header metadata keys")
	flags.BoolVar(&opts.detectContentType, "detect-content-type", false, "sniff the content type of accepted documents")
	flags.BoolVar(&opts.detectCharset, "detect-charset", false, "detect the charset of accepted documents")
	flags.IntSliceVar(&opts.validStatus, "valid-status", nil, "status codes that accept a document")
	flags.IntSliceVar(&opts.notFoundStatus, "not-found-status", nil, "status codes that mark a document as gone")
	flags.StringVarP(&opts.output, "output", "o", outputText, "output format: text or json")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *fetchOptions, references []string) error {
	if opts.output != outputText && opts.output != outputJSON {
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	var cfg config.Config
	if opts.configPath != "" {
		cfg = config.LoadFrom(opts.configPath)
	} else {
		cfg = config.Load()
	}
	applyFlags(cmd, opts, &cfg)

	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level)
	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	results, runErr := application.Run(cmd.Context(), references)
	if err := writeResults(cmd.OutOrStdout(), opts.output, results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	for _, r := range results {
		if r.State == domain.StateError {
			return errFetchFailed
		}
	}
	return nil
}

// applyFlags overrides config values only for flags the user actually set.
func applyFlags(cmd *cobra.Command, opts *fetchOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("headers-prefix") {
		cfg.Fetch.HeadersPrefix = opts.headersPrefix
	}
	if flags.Changed("detect-content-type") {
		cfg.Fetch.DetectContentType = opts.detectContentType
	}
	if flags.Changed("detect-charset") {
		cfg.Fetch.DetectCharset = opts.detectCharset
	}
	if flags.Changed("valid-status") {
		cfg.Fetch.ValidStatusCodes = opts.validStatus
	}
	if flags.Changed("not-found-status") {
		cfg.Fetch.NotFoundStatusCodes = opts.notFoundStatus
	}
}

func writeResults(w io.Writer, format string, results []usecase.Result) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if results == nil {
			results = []usecase.Result{}
		}
		return enc.Encode(results)
	}

	for _, r := range results {
		line := fmt.Sprintf("%-9s %s", strings.ToUpper(string(r.State)), r.Reference)
		if r.StatusCode != 0 {
			line += fmt.Sprintf(" %d %s", r.StatusCode, r.Reason)
		}
		if r.State == domain.StateAccepted {
			line += fmt.Sprintf(" size=%d", r.ContentSize)
			if ct := r.Metadata[domain.MetaContentType]; ct != "" {
				line += " type=" + ct
			}
			if cs := r.Metadata[domain.MetaContentEncoding]; cs != "" {
				line += " charset=" + cs
			}
			if r.Title != "" {
				line += fmt.Sprintf(" title=%q", r.Title)
			}
		}
		if r.Error != "" {
			line += " error=" + r.Error
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
