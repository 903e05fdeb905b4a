package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/sitescan/internal/model"
)

// JSONWriter outputs scans in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the scan as a JSON object.
func (w *JSONWriter) Write(scan *model.Scan) (int, error) {
	return w.writeJSON(scan)
}

// WriteBatch outputs the scans as a JSON array.
func (w *JSONWriter) WriteBatch(scans []*model.Scan) (int, error) {
	if scans == nil {
		scans = []*model.Scan{}
	}
	return w.writeJSON(scans)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps scans with information about the run that produced them.
type JSONReport struct {
	// Version is the sitescan version that generated this report.
	Version string `json:"version"`

	// GeneratedAt is when the report was written.
	GeneratedAt time.Time `json:"generated_at"`

	// Scans holds one entry per target.
	Scans []ScanEntry `json:"scans"`
}

// ScanEntry is a scan together with its result fingerprint.
type ScanEntry struct {
	*model.Scan

	// Fingerprint identifies the normalized result; equal results share it.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(scans []*model.Scan, version string) *JSONReport {
	entries := make([]ScanEntry, 0, len(scans))
	for _, scan := range scans {
		if scan == nil {
			continue
		}
		entry := ScanEntry{Scan: scan}
		if scan.Result != nil {
			entry.Fingerprint = scan.Result.Fingerprint()
		}
		entries = append(entries, entry)
	}
	return &JSONReport{
		Version:     version,
		GeneratedAt: time.Now().UTC(),
		Scans:       entries,
	}
}

// FullJSONWriter outputs scans inside a JSONReport wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the sitescan version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs a single scan wrapped with metadata.
func (w *FullJSONWriter) Write(scan *model.Scan) (int, error) {
	return w.writeJSON(NewJSONReport([]*model.Scan{scan}, w.version))
}

// WriteBatch outputs all scans wrapped with metadata.
func (w *FullJSONWriter) WriteBatch(scans []*model.Scan) (int, error) {
	return w.writeJSON(NewJSONReport(scans, w.version))
}
