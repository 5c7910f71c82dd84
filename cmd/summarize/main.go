// Command summarize loads the star-schema CSV files, computes every
// dashboard summary and writes the result to the reports directory. It is
// the batch counterpart of the web server's export endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/services"
	"retailpulse/internal/validation"
)

func main() {
	format := flag.String("format", "csv", "export format: csv or xlsx")
	from := flag.String("from", "", "start date filter (YYYY-MM-DD)")
	to := flag.String("to", "", "end date filter (YYYY-MM-DD)")
	divisions := flag.String("divisions", "", "comma-separated division filter")
	payments := flag.String("payments", "", "comma-separated payment method filter")
	flag.Parse()

	if err := run(*format, *from, *to, *divisions, *payments); err != nil {
		slog.Error("summarize failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(format, from, to, divisions, payments string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	filter, err := buildFilter(from, to, divisions, payments)
	if err != nil {
		return err
	}

	if err := validation.NewDataValidator(logger).ValidateDataDir(paths); err != nil {
		return err
	}

	ctx := context.Background()
	svc := services.NewDashboardService(paths, nil, nil, logger)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("dataset load failed: %w", err)
	}

	resp, err := svc.Export(ctx, filter, format)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	logger.Info("summary exported",
		slog.String("file", resp.File),
		slog.String("format", resp.Format),
		slog.Int("rows", resp.Meta.RowsMatched),
		slog.Int("rows_excluded", resp.Meta.RowsExcluded))
	fmt.Println(resp.File)
	return nil
}

// buildFilter parses the command line filter flags.
func buildFilter(from, to, divisions, payments string) (analytics.Filter, error) {
	filter := analytics.Filter{
		Divisions:      splitList(divisions),
		PaymentMethods: splitList(payments),
	}

	const layout = "2006-01-02"
	if from != "" {
		parsed, err := time.Parse(layout, from)
		if err != nil {
			return analytics.Filter{}, fmt.Errorf("invalid -from date %q: expected YYYY-MM-DD", from)
		}
		filter.From = parsed
	}
	if to != "" {
		parsed, err := time.Parse(layout, to)
		if err != nil {
			return analytics.Filter{}, fmt.Errorf("invalid -to date %q: expected YYYY-MM-DD", to)
		}
		filter.To = parsed
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return analytics.Filter{}, fmt.Errorf("-to date is before -from date")
	}
	return filter, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
