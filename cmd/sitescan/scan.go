package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescan/internal/client"
	"github.com/nao1215/sitescan/internal/config"
	"github.com/nao1215/sitescan/internal/model"
	"github.com/nao1215/sitescan/internal/pipeline"
)

// ErrScansFailed is returned when at least one target could not be analyzed.
// Reports are still written for every target.
var ErrScansFailed = errors.New("one or more scans failed")

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]...",
		Short: "Analyze websites with the scanning service",
		Long: `Scan sends each website to the scanning service and reports its assessment:
- Personal data exposed by the page (forms, storage, requests)
- Third-party trackers with their purpose, collected data and reputation
- Cookie and local storage risks
- Bot detection, data exfiltration, drop house and mule indicators
- An overall 0-100 risk score with critical issues and recommendations

A target that the service cannot analyze still gets a (defaulted) report,
and the command exits with a non-zero status.

Examples:
  # Scan a single website
  sitescan scan https://shop.example.org

  # Scan several websites, two at a time
  sitescan scan --batch 2 https://a.example https://b.example

  # Use a service on another host through a SOCKS5 proxy
  sitescan scan --endpoint http://scanner:5002/api/v1/analyze_with_ollama \
    --proxy 127.0.0.1:9050 https://shop.example.org

  # Write a Markdown report with charts
  sitescan scan --markdown -o report.md https://shop.example.org

Configuration file (.sitescan) example:
  endpoint: http://127.0.0.1:5002/api/v1/analyze_with_ollama
  timeout: 3m
  targets:
    shop.example.org:
      timeout: 5m
      headers:
        X-Scan-Profile: "checkout"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Service connection flags
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint,
		"URL of the scanning service's analysis route")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy used to reach the service (host:port)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Time allowed for each analysis")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitescan in current or home directory)")

	addOutputFlags(cmd)

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags. Flags only override the file when set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// A missing file only matters when the user named it.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		if cfg.Endpoint, err = flags.GetString("endpoint"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}

	out, err := readOutputFlags(cmd)
	if err != nil {
		return nil, err
	}
	cfg.JSONReport = out.json
	cfg.MarkdownReport = out.markdown
	cfg.ReportFile = out.file

	cfg.Targets = args

	return cfg, nil
}

// runScan analyzes every target and writes the report.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"endpoint", cfg.Endpoint,
		"batchSize", cfg.BatchSize,
	)

	c, err := client.New(cfg.Endpoint,
		client.WithProxy(cfg.ProxyAddress),
		client.WithTimeout(longestTimeout(cfg)),
		client.WithUserAgent(cfg.UserAgent),
		client.WithHeaders(cfg.Headers),
		client.WithMaxBodySize(cfg.MaxBodySize),
		client.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if status := c.CheckProxy(ctx); status != client.ProxyStatusOK {
		return fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
			status.Error(), cfg.ProxyAddress)
	}

	factory := func(target string) *pipeline.Pipeline {
		return pipeline.NewScanPipeline(c, logger,
			pipeline.WithFetchTimeout(cfg.TimeoutFor(target)),
			pipeline.WithFetchHeaders(cfg.HeadersFor(target)),
		)
	}

	scans, err := scanTargets(ctx, cmd, cfg, factory, logger)
	if err != nil {
		return err
	}

	out := outputOptions{
		json:     cfg.JSONReport,
		markdown: cfg.MarkdownReport,
		file:     cfg.ReportFile,
		verbose:  cfg.Verbose,
	}
	if err := writeScans(cmd, out, scans); err != nil {
		return err
	}

	return failedScansError(scans)
}

// scanTargets runs the scan pipeline for every target, concurrently when
// the batch size allows it, and returns the scans in target order.
func scanTargets(ctx context.Context, cmd *cobra.Command, cfg *config.Config, factory pipeline.Factory, logger *slog.Logger) ([]*model.Scan, error) {
	progress := cmd.ErrOrStderr()
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	scans := make([]*model.Scan, len(cfg.Targets))
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scan *model.Scan, index int) {
		mu.Lock()
		defer mu.Unlock()

		scans[index] = scan
		status := "done"
		if scan.Failed() {
			status = "failed: " + scan.ErrorMessage
		}
		fmt.Fprintf(progress, "[%d/%d] %s %s\n", index+1, len(cfg.Targets), scan.Target, status)
	})
	if err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	fmt.Fprintf(progress, "Scanned %d target(s) in %s\n", len(cfg.Targets), time.Since(startTime).Round(time.Millisecond))
	return scans, nil
}

// longestTimeout returns the largest request timeout of any target, so the
// HTTP client never cuts a request the per-target timeout still allows.
func longestTimeout(cfg *config.Config) time.Duration {
	longest := cfg.Timeout
	for _, target := range cfg.Targets {
		longest = max(longest, cfg.TimeoutFor(target))
	}
	return longest
}

// failedScansError returns ErrScansFailed when any scan recorded an error.
func failedScansError(scans []*model.Scan) error {
	failed := 0
	for _, scan := range scans {
		if scan != nil && scan.Failed() {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", ErrScansFailed, failed, len(scans))
}
