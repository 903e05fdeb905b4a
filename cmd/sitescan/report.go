package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescan/internal/model"
	"github.com/nao1215/sitescan/internal/pipeline"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <file|->...",
		Short: "Render reports from saved service responses",
		Long: `Report normalizes saved scanning service responses without contacting the
service. Each input may be a full service response, a bare assessment object,
or a JSON report previously written by sitescan. Use "-" to read standard input.

Examples:
  # Render a saved response as text
  sitescan report response.json

  # Render several responses as one Markdown document
  sitescan report --markdown -o report.md a.json b.json

  # Pipe a response from curl
  curl -s -X POST -d '{"url":"https://shop.example.org"}' \
    http://127.0.0.1:5002/api/v1/analyze_with_ollama | sitescan report -`,
		Args: cobra.MinimumNArgs(1),
		RunE: runReportCmd,
	}

	addOutputFlags(cmd)

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	opts, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}
	if opts.json && opts.markdown {
		return fmt.Errorf("configuration error: --json and --markdown are mutually exclusive")
	}

	logger := setupLogger(cmd)

	scans := make([]*model.Scan, 0, len(args))
	for _, path := range args {
		scan, err := loadScan(cmd.Context(), cmd, path, logger)
		if err != nil {
			return err
		}
		scans = append(scans, scan)
	}

	return writeScans(cmd, opts, scans)
}

// loadScan reads and normalizes one saved input. A sitescan JSON report
// keeps the result it was written with.
func loadScan(ctx context.Context, cmd *cobra.Command, path string, logger *slog.Logger) (*model.Scan, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	scan := model.NewScan(path)
	p := pipeline.NewReportPipeline(logger, pipeline.WithStdin(cmd.InOrStdin()))
	if err := p.Execute(ctx, scan); err != nil {
		return nil, err
	}

	if result, ok := savedResult(scan.Response); ok {
		scan.Result = result
		scan.Warnings = nil
	}
	return scan, nil
}

// Keys of a JSON report written by sitescan.
const (
	savedKeyResult = "result"
	savedKeyScans  = "scans"
)

// savedResult extracts the normalized result from a sitescan JSON report,
// either a single scan or the first scan of a wrapped report.
func savedResult(resp model.RawResponse) (*model.ScanResult, bool) {
	raw, ok := resp[savedKeyResult].(map[string]any)
	if !ok {
		scans, isList := resp[savedKeyScans].([]any)
		if !isList || len(scans) == 0 {
			return nil, false
		}
		first, isMap := scans[0].(map[string]any)
		if !isMap {
			return nil, false
		}
		if raw, ok = first[savedKeyResult].(map[string]any); !ok {
			return nil, false
		}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	var result model.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}
