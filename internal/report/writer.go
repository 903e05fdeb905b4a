package report

import (
	"io"

	"github.com/nao1215/sitescan/internal/model"
)

// Writer defines the interface for report output.
// Implementations write scans in various formats.
type Writer interface {
	// Write outputs the report for one scan.
	// Returns the number of bytes written and any error encountered.
	Write(scan *model.Scan) (int, error)

	// WriteBatch outputs the reports of several scans as one document.
	WriteBatch(scans []*model.Scan) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(scan *model.Scan) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(scan)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the batch report to all configured Writers.
func (m *MultiWriter) WriteBatch(scans []*model.Scan) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(scans)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// resultOf returns the scan's result, or a defaulted one when the scan
// never reached the normalize step.
func resultOf(scan *model.Scan) *model.ScanResult {
	if scan.Result != nil {
		return scan.Result
	}
	return emptyResult
}

var emptyResult = &model.ScanResult{
	PII: model.PIISummary{
		RiskLevelCounts:  model.NewHistogram(),
		TypeCounts:       model.NewHistogram(),
		ComplianceCounts: model.NewHistogram(),
	},
	Trackers: model.TrackerSummary{
		ReputationCounts:    model.NewHistogram(model.ReputationLabels...),
		DataCollectedCounts: model.NewHistogram(),
		PurposeCounts:       model.NewHistogram(),
		SiteCounts:          model.NewHistogram(),
	},
	Cookies: model.CookieSummary{
		Display:      "0,0%",
		IssuesByType: model.NewHistogram(),
	},
	LocalCache: model.LocalCacheSummary{Display: "0%"},
	Summary:    model.OverallSummary{SeverityText: model.SeverityInfo.String()},
}

// Scan status values shown in reports.
const (
	statusComplete = "Complete"
	statusTimedOut = "Timed Out (partial results)"
	statusError    = "Error"
)

// statusText describes how the scan ended.
func statusText(scan *model.Scan) string {
	switch {
	case scan.TimedOut:
		return statusTimedOut
	case scan.ErrorMessage != "":
		return statusError + " - " + scan.ErrorMessage
	default:
		return statusComplete
	}
}

// truncateString shortens s to maxLen runes, ending with "..." when cut.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
