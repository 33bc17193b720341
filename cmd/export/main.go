package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/orderexport/amazon-order-exporter/internal/adapters/amazon"
	"github.com/orderexport/amazon-order-exporter/internal/adapters/fetch"
	"github.com/orderexport/amazon-order-exporter/internal/application/exporter"
	"github.com/orderexport/amazon-order-exporter/internal/domain/export"
	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
	"github.com/orderexport/amazon-order-exporter/internal/infrastructure/config"
	"github.com/orderexport/amazon-order-exporter/internal/infrastructure/logging"
	"github.com/orderexport/amazon-order-exporter/internal/infrastructure/statestore"
)

func main() {
	// Parse flags
	var (
		configFile = flag.String("config", "", "Configuration file path")
		pageURL    = flag.String("url", "", "Order history URL to start from (overrides config)")
		format     = flag.String("format", "csv", "Export format: csv or json")
		startDate  = flag.String("start", "", "Start date (YYYY-MM-DD)")
		endDate    = flag.String("end", "", "End date (YYYY-MM-DD)")
		exportAll  = flag.Bool("all", false, "Export all years, ignoring the date range")
		outputDir  = flag.String("out", "", "Output directory (overrides config)")
		resume     = flag.Bool("resume", false, "Resume an interrupted run instead of starting a new one")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Load configuration
	cfg := loadConfig(*configFile)

	// Setup logging
	if *verbose {
		cfg.Observability.Logging.Level = "debug"
	}
	logger := logging.NewLoggerWithScope(cfg.Observability.Logging, "export")

	baseURL := cfg.Exporter.BaseURL
	if *pageURL != "" {
		baseURL = *pageURL
	}
	if !*resume && baseURL == "" {
		logger.Error("No order history URL given (use -url or set exporter.base_url)")
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Exporter.OutputDir = *outputDir
	}

	// Initialize state store
	store, err := statestore.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to open state store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	// A resumed run takes its base URL from the checkpoint.
	if *resume && baseURL == "" {
		state, err := store.Load(cfg.Exporter.StateKey)
		if err != nil {
			logger.Error("No run to resume", slog.String("error", err.Error()))
			os.Exit(1)
		}
		baseURL = state.BaseURL
	}

	// Initialize page fetcher and extractor
	client := fetch.NewClient(cfg.Exporter.UserAgent, logger)
	extractor, err := amazon.NewExtractor(baseURL, logger)
	if err != nil {
		logger.Error("Invalid order history URL", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sink := func(file export.File) error {
		if err := os.MkdirAll(cfg.Exporter.OutputDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(cfg.Exporter.OutputDir, file.FileName)
		if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
			return err
		}
		logger.Info("Export written", slog.String("path", path))
		return nil
	}

	progress := func(p exporter.Progress) {
		logger.Info(p.Message, slog.Int("percent", p.Percent))
	}

	svc := exporter.NewService(store, client, extractor, sink, progress, logger, exporter.Config{
		StateKey:     cfg.Exporter.StateKey,
		RequestDelay: time.Duration(cfg.Exporter.RequestDelayMs) * time.Millisecond,
	})

	ctx := context.Background()

	if !*resume {
		opts := model.ExportOptions{
			Format:    *format,
			StartDate: *startDate,
			EndDate:   *endDate,
			ExportAll: *exportAll || (*startDate == "" && *endDate == ""),
		}

		pageHTML, err := client.GetHTML(ctx, baseURL)
		if err != nil {
			logger.Error("Failed to fetch order history page", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if err := svc.Start(ctx, opts, baseURL, pageHTML); err != nil {
			if errors.Is(err, exporter.ErrNoYears) {
				logger.Error("No order history years match the given date range")
			} else {
				logger.Error("Failed to start export", slog.String("error", err.Error()))
			}
			os.Exit(1)
		}
	}

	if err := svc.Run(ctx); err != nil {
		logger.Error("Export failed", slog.String("error", err.Error()))
		logger.Info("Run again with -resume to continue from the last checkpoint")
		os.Exit(1)
	}

	logger.Info("Export completed successfully")
}

func loadConfig(configFile string) *config.Config {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config file %s: %v\n", configFile, err)
			os.Exit(1)
		}
		return cfg
	}
	return config.LoadOrEnv()
}
