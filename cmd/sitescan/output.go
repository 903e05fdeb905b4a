package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescan/internal/log"
	"github.com/nao1215/sitescan/internal/model"
	"github.com/nao1215/sitescan/internal/report"
)

// outputOptions selects the report format and destination.
type outputOptions struct {
	json     bool
	markdown bool
	file     string
	verbose  bool
}

// addOutputFlags registers the report format flags shared by scan and report.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// readOutputFlags reads the flags registered by addOutputFlags.
func readOutputFlags(cmd *cobra.Command) (outputOptions, error) {
	var opts outputOptions
	var err error

	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.file, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	opts.verbose = getVerboseFlag(cmd)

	return opts, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting logger and installs it as the default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	logger := log.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	slog.SetDefault(logger)
	return logger
}

// newReportWriter returns the writer for the selected format.
func newReportWriter(w io.Writer, opts outputOptions) report.Writer {
	switch {
	case opts.json:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case opts.markdown:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(opts.verbose))
	}
}

// writeScans renders scans to the configured destination. A single scan
// gets a single-scan report; several get a batch report.
func writeScans(cmd *cobra.Command, opts outputOptions, scans []*model.Scan) error {
	out, closeOut, err := openOutput(cmd, opts.file)
	if err != nil {
		return err
	}
	defer closeOut()

	w := newReportWriter(out, opts)
	if len(scans) == 1 {
		_, err = w.Write(scans[0])
	} else {
		_, err = w.WriteBatch(scans)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// openOutput returns the report destination: the named file, created with
// owner-only permissions, or the command's stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports quote PII evidence and storage contents.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-chosen output path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // write errors surface from Write
}
