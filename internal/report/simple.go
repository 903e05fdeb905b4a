package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nao1215/sitescan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Sections are rendered as borderless go-pretty tables.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to report are shown.
	showEmpty bool

	// verbose adds page observations and warnings.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report of one scan.
func (w *SimpleWriter) Write(scan *model.Scan) (int, error) {
	var sb strings.Builder

	w.writeScan(&sb, scan)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs a summary of all scans followed by each report.
func (w *SimpleWriter) WriteBatch(scans []*model.Scan) (int, error) {
	var sb strings.Builder

	writeRule(&sb, "=")
	sb.WriteString(centered("SITESCAN BATCH SUMMARY"))
	writeRule(&sb, "=")
	sb.WriteString("\n")

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Target", "Score", "Severity", "Status"})
	failed := 0
	for _, scan := range scans {
		if scan == nil {
			continue
		}
		if scan.Failed() {
			failed++
		}
		result := resultOf(scan)
		tbl.AppendRow(table.Row{scan.Target, result.Summary.RiskScore, result.Summary.Severity.String(), statusText(scan)})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %s scans, %d failed", humanize.Comma(int64(len(scans))), failed)})
	sb.WriteString(tbl.Render())
	sb.WriteString("\n\n")

	for _, scan := range scans {
		if scan == nil {
			continue
		}
		w.writeScan(&sb, scan)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// writeScan writes every section of one scan.
func (w *SimpleWriter) writeScan(sb *strings.Builder, scan *model.Scan) {
	result := resultOf(scan)

	w.writeHeader(sb, scan, result)
	w.writeSummary(sb, result)
	w.writeTrackers(sb, result)
	w.writePII(sb, result)
	w.writeCookies(sb, result)
	w.writeLocalCache(sb, result)
	if w.verbose {
		w.writePage(sb, result)
		w.writeWarnings(sb, scan)
	}
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, scan *model.Scan, result *model.ScanResult) {
	sb.WriteString("\n")
	writeRule(sb, "=")
	sb.WriteString(centered("SITESCAN REPORT"))
	writeRule(sb, "=")
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Target:      %s\n", scan.Target)
	fmt.Fprintf(sb, "Scan Date:   %s (%s)\n",
		scan.DateScanned.Format("2006-01-02 15:04:05 MST"),
		humanize.Time(scan.DateScanned),
	)
	fmt.Fprintf(sb, "Status:      %s\n", statusText(scan))
	fmt.Fprintf(sb, "Risk Score:  %d / 100 [%s]\n", result.Summary.RiskScore, result.Summary.Severity)
	if result.Metadata.Model != "" {
		fmt.Fprintf(sb, "Model:       %s\n", result.Metadata.Model)
	}
	sb.WriteString("\n")

	if result.Summary.Text != "" {
		sb.WriteString(result.Summary.Text)
		sb.WriteString("\n\n")
	}
}

// writeSummary writes the per-category overview and recommended actions.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, result *model.ScanResult) {
	writeSection(sb, "SUMMARY")

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Category", "Value"})
	tbl.AppendRows([]table.Row{
		{"PII risks", humanize.Comma(int64(result.PII.RiskCount))},
		{"Tracker risks", humanize.Comma(int64(result.Trackers.RiskCount))},
		{"Cookies", result.Cookies.Display},
		{"Local cache", result.LocalCache.Display},
		{"Drop houses", result.DropHouses},
		{"Mules", result.Mules},
		{"Bots detected", yesNo(result.Bots.Detected)},
	})
	sb.WriteString(tbl.Render())
	sb.WriteString("\n\n")

	writeList(sb, "Critical issues", "!", result.Summary.CriticalIssues)
	writeList(sb, "Recommended actions", "*", result.Summary.RecommendedActions)
}

// writeTrackers writes the vendor table and reputation counts.
func (w *SimpleWriter) writeTrackers(sb *strings.Builder, result *model.ScanResult) {
	trackers := result.Trackers
	if len(trackers.Vendors) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "TRACKERS")

	if len(trackers.Vendors) == 0 {
		sb.WriteString("  No tracker vendors reported\n\n")
		return
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Domain", "Site", "Purpose", "Data Collected", "Reputation"})
	for _, v := range trackers.Vendors {
		tbl.AppendRow(table.Row{
			v.Domain,
			v.Site,
			v.Purpose,
			orDash(strings.Join(v.DataCollected, ", ")),
			v.Reputation,
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d vendors", len(trackers.Vendors))})
	sb.WriteString(tbl.Render())
	sb.WriteString("\n\n")

	sb.WriteString("  Reputation: ")
	parts := make([]string, len(model.ReputationLabels))
	for i, label := range model.ReputationLabels {
		parts[i] = label + "=" + strconv.Itoa(trackers.ReputationCounts[label])
	}
	sb.WriteString(strings.Join(parts, "  "))
	sb.WriteString("\n\n")
}

// writePII writes PII findings.
func (w *SimpleWriter) writePII(sb *strings.Builder, result *model.ScanResult) {
	pii := result.PII
	if len(pii.Items) == 0 && len(pii.ComplianceViolations) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "PERSONAL DATA")

	if len(pii.Items) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"Field", "Type", "Risk Level"})
		for _, item := range pii.Items {
			tbl.AppendRow(table.Row{orDash(item.Field), item.Type, item.RiskLevel})
		}
		sb.WriteString(tbl.Render())
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("  No personal data findings\n\n")
	}

	writeList(sb, "Compliance violations", "-", pii.ComplianceViolations)
}

// writeCookies writes cookie issues and high-risk cookies.
func (w *SimpleWriter) writeCookies(sb *strings.Builder, result *model.ScanResult) {
	cookies := result.Cookies
	if len(cookies.IssuesByType) == 0 && len(cookies.HighRiskCookies) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "COOKIES")

	if len(cookies.IssuesByType) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"Issue", "Count"})
		for _, label := range cookies.IssuesByType.ByCount() {
			tbl.AppendRow(table.Row{label, cookies.IssuesByType[label]})
		}
		sb.WriteString(tbl.Render())
		sb.WriteString("\n\n")
	}

	for _, c := range cookies.HighRiskCookies {
		fmt.Fprintf(sb, "  [!] %s: %s", c.Name, orDash(strings.Join(c.Issues, ", ")))
		if c.ExpirationDays != nil {
			fmt.Fprintf(sb, " (expires in %s days)", humanize.Comma(int64(*c.ExpirationDays)))
		}
		sb.WriteString("\n")
	}
	if len(cookies.HighRiskCookies) > 0 {
		sb.WriteString("\n")
	}
}

// writeLocalCache writes local storage findings.
func (w *SimpleWriter) writeLocalCache(sb *strings.Builder, result *model.ScanResult) {
	cache := result.LocalCache
	if len(cache.Items) == 0 && !cache.SensitiveDataFound && !w.showEmpty {
		return
	}

	writeSection(sb, "LOCAL STORAGE")
	fmt.Fprintf(sb, "  Sensitive data found: %s\n\n", yesNo(cache.SensitiveDataFound))
	writeList(sb, "Items", "-", cache.Items)
}

// writePage writes page observations, truncating storage values.
func (w *SimpleWriter) writePage(sb *strings.Builder, result *model.ScanResult) {
	page := result.Page
	if len(page.Trackers) == 0 && len(page.LocalStorage) == 0 {
		return
	}

	writeSection(sb, "PAGE OBSERVATIONS")

	if len(page.Trackers) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"Tracker", "Source", "Risk"})
		for _, t := range page.Trackers {
			tbl.AppendRow(table.Row{t.Type, truncateString(t.Source, 60), t.Risk})
		}
		sb.WriteString(tbl.Render())
		sb.WriteString("\n\n")
	}

	if len(page.LocalStorage) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"Storage Key", "Value"})
		for _, e := range page.LocalStorage {
			tbl.AppendRow(table.Row{e.Key, truncateString(e.Value, 40)})
		}
		sb.WriteString(tbl.Render())
		sb.WriteString("\n\n")
	}
}

// writeWarnings writes non-fatal problems met during the scan.
func (w *SimpleWriter) writeWarnings(sb *strings.Builder, scan *model.Scan) {
	if len(scan.Warnings) == 0 {
		return
	}
	writeSection(sb, "WARNINGS")
	writeList(sb, "", "-", scan.Warnings)
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	writeRule(sb, "=")
	sb.WriteString("Report generated by sitescan\n")
	sb.WriteString("https://github.com/nao1215/sitescan\n")
	writeRule(sb, "=")
}

const ruleWidth = 70

func writeRule(sb *strings.Builder, char string) {
	sb.WriteString(strings.Repeat(char, ruleWidth))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	writeRule(sb, "-")
	sb.WriteString(title)
	sb.WriteString("\n")
	writeRule(sb, "-")
	sb.WriteString("\n")
}

func writeList(sb *strings.Builder, title, marker string, items []string) {
	if len(items) == 0 {
		return
	}
	if title != "" {
		sb.WriteString(title + ":\n")
	}
	for _, item := range items {
		fmt.Fprintf(sb, "  %s %s\n", marker, item)
	}
	sb.WriteString("\n")
}

func centered(s string) string {
	pad := max((ruleWidth-len(s))/2, 0)
	return strings.Repeat(" ", pad) + s + "\n"
}

// newTable returns a borderless go-pretty table writer.
func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}
