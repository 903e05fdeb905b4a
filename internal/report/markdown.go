package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitescan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// Histograms are drawn as mermaid pie charts, which GitHub renders inline.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report of one scan in Markdown format.
func (w *MarkdownWriter) Write(scan *model.Scan) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeScan(md, scan, "# ")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs a summary table followed by each scan's report.
func (w *MarkdownWriter) WriteBatch(scans []*model.Scan) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Site Security Report")
	md.PlainText("")

	rows := make([][]string, 0, len(scans))
	for _, scan := range scans {
		if scan == nil {
			continue
		}
		result := resultOf(scan)
		rows = append(rows, []string{
			"`" + scan.Target + "`",
			strconv.Itoa(result.Summary.RiskScore),
			severityBadge(result.Summary.Severity),
			statusText(scan),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Target", "Risk Score", "Severity", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, scan := range scans {
		if scan == nil {
			continue
		}
		md.HorizontalRule()
		md.PlainText("")
		w.writeScan(md, scan, "## ")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeScan writes all sections of one scan. Headings start at the given
// level so scans can be nested under a batch summary.
func (w *MarkdownWriter) writeScan(md *markdown.Markdown, scan *model.Scan, level string) {
	result := resultOf(scan)
	sub := "#" + level

	md.PlainText(level + "Security Assessment: " + scan.Target)
	md.PlainText("")

	w.writeHeader(md, scan, result)
	w.writeAlert(md, result)
	w.writeOverview(md, sub, result)
	w.writeActions(md, sub, result)
	w.writeTrackers(md, sub, result)
	w.writePII(md, sub, result)
	w.writeCookies(md, sub, result)
	w.writeLocalCache(md, sub, result)
	w.writePage(md, sub, result)
	w.writeWarnings(md, sub, scan)
}

// writeHeader writes the basic information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, scan *model.Scan, result *model.ScanResult) {
	rows := [][]string{
		{"Target", "`" + scan.Target + "`"},
		{"Scan Date", scan.DateScanned.Format("2006-01-02 15:04:05 MST")},
		{"Status", statusText(scan)},
		{"Risk Score", strconv.Itoa(result.Summary.RiskScore) + " / 100"},
		{"Severity", severityBadge(result.Summary.Severity)},
	}
	if result.Metadata.Model != "" {
		rows = append(rows, []string{"Model", result.Metadata.Model})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// severityBadge returns the severity with a coloured marker.
func severityBadge(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴 " + s.String()
	case model.SeverityHigh:
		return "🟠 " + s.String()
	case model.SeverityMedium:
		return "🟡 " + s.String()
	case model.SeverityLow:
		return "🔵 " + s.String()
	default:
		return "⚪ " + s.String()
	}
}

// writeAlert writes an alert chosen by the risk score's severity.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.ScanResult) {
	score := result.Summary.RiskScore

	switch result.Summary.Severity {
	case model.SeverityCritical:
		md.Cautionf("Critical risk (score %d). This site exposes visitors to serious privacy and security threats.", score)
	case model.SeverityHigh:
		md.Warningf("High risk (score %d). Several issues should be addressed soon.", score)
	case model.SeverityMedium:
		md.Importantf("Medium risk (score %d). Review the findings below.", score)
	case model.SeverityLow:
		md.Note("Low risk. Only minor issues were reported.")
	default:
		md.Tip("No measurable risk was reported.")
	}
	md.PlainText("")

	if result.Summary.Text != "" {
		md.PlainText(result.Summary.Text)
		md.PlainText("")
	}
}

// writeOverview writes one row per risk category.
func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, level string, result *model.ScanResult) {
	md.PlainText(level + "Overview")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Value"},
		Rows: [][]string{
			{"PII risks", strconv.Itoa(result.PII.RiskCount)},
			{"Tracker risks", strconv.Itoa(result.Trackers.RiskCount)},
			{"Cookies (count, severity)", result.Cookies.Display},
			{"Local cache severity", result.LocalCache.Display},
			{"Drop houses", strconv.Itoa(result.DropHouses)},
			{"Mules", strconv.Itoa(result.Mules)},
			{"Bots detected", yesNo(result.Bots.Detected)},
			{"Suspicious endpoints", strconv.Itoa(len(result.Exfiltration.SuspiciousEndpoints))},
		},
	})
	md.PlainText("")
}

// writeActions writes critical issues and recommended actions.
func (w *MarkdownWriter) writeActions(md *markdown.Markdown, level string, result *model.ScanResult) {
	if len(result.Summary.CriticalIssues) > 0 {
		md.PlainText(level + "Critical Issues")
		md.PlainText("")
		md.BulletList(result.Summary.CriticalIssues...)
		md.PlainText("")
	}
	if len(result.Summary.RecommendedActions) > 0 {
		md.PlainText(level + "Recommended Actions")
		md.PlainText("")
		md.BulletList(result.Summary.RecommendedActions...)
		md.PlainText("")
	}
}

// writeTrackers writes the vendor table and tracker charts.
func (w *MarkdownWriter) writeTrackers(md *markdown.Markdown, level string, result *model.ScanResult) {
	trackers := result.Trackers

	md.PlainText(level + "Trackers")
	md.PlainText("")

	if len(trackers.Vendors) == 0 {
		md.PlainText("No tracker vendors reported.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(trackers.Vendors))
	for i, v := range trackers.Vendors {
		rows[i] = []string{
			v.Domain,
			v.Site,
			v.Purpose,
			orDash(strings.Join(v.DataCollected, ", ")),
			v.Reputation,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Site", "Purpose", "Data Collected", "Reputation"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, "Vendor Reputation", trackers.ReputationCounts, model.ReputationLabels)
	w.writePieChart(md, "Vendor Purposes", trackers.PurposeCounts, trackers.PurposeCounts.ByCount())
	w.writePieChart(md, "Data Collected", trackers.DataCollectedCounts, trackers.DataCollectedKeys)
}

// writePII writes PII findings and charts.
func (w *MarkdownWriter) writePII(md *markdown.Markdown, level string, result *model.ScanResult) {
	pii := result.PII

	md.PlainText(level + "Personal Data")
	md.PlainText("")

	if len(pii.Items) == 0 {
		md.PlainText("No personal data findings reported.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(pii.Items))
		for i, item := range pii.Items {
			rows[i] = []string{
				orDash(item.Field),
				item.Type,
				item.RiskLevel,
				truncateString(orDash(item.Evidence), 50),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Field", "Type", "Risk Level", "Evidence"},
			Rows:   rows,
		})
		md.PlainText("")

		w.writePieChart(md, "PII Risk Levels", pii.RiskLevelCounts, pii.RiskLevelCounts.ByCount())
		w.writePieChart(md, "PII Types", pii.TypeCounts, pii.TypeCounts.ByCount())
	}

	if len(pii.ComplianceViolations) > 0 {
		md.PlainText("Compliance violations:")
		md.PlainText("")
		md.BulletList(pii.ComplianceViolations...)
		md.PlainText("")
	}
}

// writeCookies writes cookie issues and high-risk cookies.
func (w *MarkdownWriter) writeCookies(md *markdown.Markdown, level string, result *model.ScanResult) {
	cookies := result.Cookies

	md.PlainText(level + "Cookies")
	md.PlainText("")
	md.PlainTextf("%d cookie(s), severity %d%%.", cookies.Count, cookies.Percent)
	md.PlainText("")

	if len(cookies.IssuesByType) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Issue", "Count"},
			Rows:   histogramRows(cookies.IssuesByType, cookies.IssuesByType.ByCount()),
		})
		md.PlainText("")
	}

	if len(cookies.HighRiskCookies) > 0 {
		rows := make([][]string, len(cookies.HighRiskCookies))
		for i, c := range cookies.HighRiskCookies {
			expires := "-"
			if c.ExpirationDays != nil {
				expires = strconv.Itoa(*c.ExpirationDays) + " days"
			}
			rows[i] = []string{c.Name, orDash(strings.Join(c.Issues, ", ")), expires}
		}
		md.Table(markdown.TableSet{
			Header: []string{"High-Risk Cookie", "Issues", "Expires"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeLocalCache writes local storage findings.
func (w *MarkdownWriter) writeLocalCache(md *markdown.Markdown, level string, result *model.ScanResult) {
	cache := result.LocalCache

	md.PlainText(level + "Local Storage")
	md.PlainText("")
	md.PlainTextf("Severity %s, sensitive data found: %s.", cache.Display, yesNo(cache.SensitiveDataFound))
	md.PlainText("")

	if len(cache.Items) > 0 {
		md.BulletList(cache.Items...)
		md.PlainText("")
	}
}

// writePage writes what the service observed on the page.
func (w *MarkdownWriter) writePage(md *markdown.Markdown, level string, result *model.ScanResult) {
	page := result.Page
	if len(page.Cookies) == 0 && len(page.Trackers) == 0 && len(page.LocalStorage) == 0 {
		return
	}

	md.PlainText(level + "Page Observations")
	md.PlainText("")

	if len(page.Trackers) > 0 {
		rows := make([][]string, len(page.Trackers))
		for i, t := range page.Trackers {
			rows[i] = []string{t.Type, truncateString(t.Source, 60), t.Risk}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Tracker", "Source", "Risk"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(page.Cookies) > 0 {
		rows := make([][]string, len(page.Cookies))
		for i, c := range page.Cookies {
			rows[i] = []string{c.Name, orDash(c.Domain), yesNo(c.Secure), yesNo(c.HTTPOnly)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Cookie", "Domain", "Secure", "HttpOnly"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(page.LocalStorage) > 0 {
		rows := make([][]string, len(page.LocalStorage))
		for i, e := range page.LocalStorage {
			rows[i] = []string{e.Key, truncateString(e.Value, 40)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Storage Key", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeWarnings writes non-fatal problems met during the scan.
func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, level string, scan *model.Scan) {
	if len(scan.Warnings) == 0 {
		return
	}
	md.PlainText(level + "Warnings")
	md.PlainText("")
	md.Details(strconv.Itoa(len(scan.Warnings))+" payload warning(s)", strings.Join(scan.Warnings, "\n"))
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of h in the given label order.
// Charts with no data are skipped.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, title string, h model.Histogram, labels []string) {
	if h.Total() == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(title),
		piechart.WithShowData(true),
	)
	for _, label := range labels {
		if n := h[label]; n > 0 {
			chart.LabelAndIntValue(label, uint64(n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitescan](https://github.com/nao1215/sitescan)*")
}

// histogramRows renders h as label/count rows in the given order.
func histogramRows(h model.Histogram, labels []string) [][]string {
	rows := make([][]string, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, []string{label, strconv.Itoa(h[label])})
	}
	return rows
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
