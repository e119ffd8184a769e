package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/3leaps/verdict/internal/observability"
	"github.com/3leaps/verdict/pkg/archive"
	"github.com/3leaps/verdict/pkg/query"
	"github.com/3leaps/verdict/pkg/resultset"
	"github.com/3leaps/verdict/pkg/selfserve"
)

// buildArchiveSource picks the partition transport from configuration.
func buildArchiveSource(ctx context.Context) (archive.Source, error) {
	cfg := appConfig.Archive
	switch cfg.Source {
	case "", "http":
		return archive.NewHTTPSource(archive.HTTPConfig{
			BaseURL:   cfg.BaseURL,
			RateLimit: cfg.RateLimit,
		})
	case "s3":
		return archive.NewS3Source(ctx, archive.S3Config{
			Bucket:         cfg.S3.Bucket,
			Prefix:         cfg.S3.Prefix,
			Region:         cfg.S3.Region,
			Endpoint:       cfg.S3.Endpoint,
			Profile:        cfg.S3.Profile,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported archive source %q", cfg.Source)
	}
}

// buildService assembles the configured backend behind the service facade.
func buildService(ctx context.Context) (query.Service, error) {
	log := observability.CLILogger

	switch backend {
	case "selfserve":
		src, err := buildArchiveSource(ctx)
		if err != nil {
			return nil, err
		}
		resolver, err := archive.New(src,
			archive.WithLogger(log),
			archive.WithDayCacheSize(appConfig.Archive.DayCacheSize))
		if err != nil {
			return nil, err
		}
		client, err := selfserve.NewClient(selfserve.ClientConfig{
			BaseURL:   appConfig.SelfServe.BaseURL,
			RateLimit: appConfig.SelfServe.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		b, err := selfserve.New(client, resolver, selfserve.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return query.NewService[selfserve.Job](b, log), nil

	case "resultset":
		client, err := resultset.NewHTTPClient(resultset.ClientConfig{
			BaseURL:   appConfig.ResultSet.BaseURL,
			RateLimit: appConfig.ResultSet.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		b, err := resultset.New(client, resultset.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return query.NewService[resultset.Job](b, log), nil

	default:
		return nil, fmt.Errorf("unsupported backend %q", backend)
	}
}

// renderOutput writes v to stdout in the requested format.
func renderOutput(v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer func() { _ = enc.Close() }()
		return enc.Encode(v)
	default:
		return fmt.Errorf("expected json or yaml, got %q", format)
	}
}

// renderTable writes aligned rows to stdout.
func renderTable(header []string, rows [][]string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
