package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/sitescan/internal/model"
)

// Constants for risk direction.
const (
	riskDirectionWorsened  = "worsened"
	riskDirectionImproved  = "improved"
	riskDirectionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares two saved assessments of the same site.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <previous> <current>",
		Short: "Compare two saved assessments",
		Long: `Compare displays differences between two saved assessments of a site.

Inputs are saved service responses or JSON reports written by sitescan
(sitescan scan --json -o current.json). The comparison shows:
- Tracker domains that appeared or disappeared
- Critical issues that are new or resolved
- Changes in every histogram (PII, vendors, cookies)
- The change in risk score and severity

Examples:
  # Compare last week's scan with today's
  sitescan compare last-week.json today.json

  # Output comparison in JSON format
  sitescan compare --json last-week.json today.json`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("configuration error: --json and --markdown are mutually exclusive")
	}

	logger := setupLogger(cmd)

	previous, err := loadScan(cmd.Context(), cmd, args[0], logger)
	if err != nil {
		return fmt.Errorf("failed to load previous assessment: %w", err)
	}
	current, err := loadScan(cmd.Context(), cmd, args[1], logger)
	if err != nil {
		return fmt.Errorf("failed to load current assessment: %w", err)
	}

	comparison := compareScans(previous, current)

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		return outputComparisonJSON(out, comparison)
	case markdownOutput:
		return outputComparisonMarkdown(out, comparison)
	default:
		return outputComparisonText(out, comparison)
	}
}

// ComparisonResult holds the result of comparing two assessments.
type ComparisonResult struct {
	// Target is the site of the current assessment.
	Target string `json:"target"`

	// PreviousScan contains metadata about the previous assessment.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan contains metadata about the current assessment.
	CurrentScan ScanMetadata `json:"current_scan"`

	// Identical is true when both results share a fingerprint.
	Identical bool `json:"identical"`

	// NewDomains are tracker domains only present in the current assessment.
	NewDomains []string `json:"new_domains,omitempty"`

	// RemovedDomains are tracker domains only present in the previous assessment.
	RemovedDomains []string `json:"removed_domains,omitempty"`

	// NewIssues are critical issues only present in the current assessment.
	NewIssues []string `json:"new_issues,omitempty"`

	// ResolvedIssues are critical issues only present in the previous assessment.
	ResolvedIssues []string `json:"resolved_issues,omitempty"`

	// Changes lists every histogram bucket whose count changed.
	Changes []HistogramChange `json:"changes,omitempty"`

	// RiskChange describes the overall change in risk.
	RiskChange RiskChange `json:"risk_change"`
}

// ScanMetadata contains metadata about an assessment for comparison display.
type ScanMetadata struct {
	Source      string    `json:"source"`
	DateScanned time.Time `json:"date_scanned"`
	RiskScore   int       `json:"risk_score"`
	Severity    string    `json:"severity"`
	Fingerprint string    `json:"fingerprint"`
}

// HistogramChange is one changed histogram bucket.
type HistogramChange struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
	Delta    int    `json:"delta"`
}

// RiskChange describes the change in risk between assessments.
type RiskChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// ScoreDelta is the change in risk score.
	ScoreDelta int `json:"score_delta"`
}

// compareScans compares two assessments and generates a comparison result.
func compareScans(previous, current *model.Scan) *ComparisonResult {
	prev := resultOrEmpty(previous)
	cur := resultOrEmpty(current)

	result := &ComparisonResult{
		Target:       current.Target,
		PreviousScan: scanMetadata(previous, prev),
		CurrentScan:  scanMetadata(current, cur),
	}
	if page := cur.Page.URL; page != "" {
		result.Target = page
	}
	result.Identical = result.PreviousScan.Fingerprint == result.CurrentScan.Fingerprint

	result.NewDomains, result.RemovedDomains = diffLists(prev.Trackers.Domains, cur.Trackers.Domains)
	result.NewIssues, result.ResolvedIssues = diffLists(prev.Summary.CriticalIssues, cur.Summary.CriticalIssues)

	for _, h := range []struct {
		category string
		previous model.Histogram
		current  model.Histogram
	}{
		{"PII risk level", prev.PII.RiskLevelCounts, cur.PII.RiskLevelCounts},
		{"PII type", prev.PII.TypeCounts, cur.PII.TypeCounts},
		{"Vendor reputation", prev.Trackers.ReputationCounts, cur.Trackers.ReputationCounts},
		{"Vendor purpose", prev.Trackers.PurposeCounts, cur.Trackers.PurposeCounts},
		{"Data collected", prev.Trackers.DataCollectedCounts, cur.Trackers.DataCollectedCounts},
		{"Cookie issue", prev.Cookies.IssuesByType, cur.Cookies.IssuesByType},
	} {
		result.Changes = append(result.Changes, diffHistogram(h.category, h.previous, h.current)...)
	}

	result.RiskChange = calculateRiskChange(result.PreviousScan, result.CurrentScan)

	return result
}

func resultOrEmpty(scan *model.Scan) *model.ScanResult {
	if scan.Result != nil {
		return scan.Result
	}
	return &model.ScanResult{}
}

func scanMetadata(scan *model.Scan, result *model.ScanResult) ScanMetadata {
	meta := ScanMetadata{
		Source:      scan.Target,
		DateScanned: scan.DateScanned,
		RiskScore:   result.Summary.RiskScore,
		Severity:    result.Summary.Severity.String(),
		Fingerprint: result.Fingerprint(),
	}
	for _, layout := range analysisTimestampLayouts {
		if ts, err := time.Parse(layout, result.Metadata.AnalysisTimestamp); err == nil {
			meta.DateScanned = ts
			break
		}
	}
	return meta
}

// analysisTimestampLayouts are the timestamp formats seen in assessment metadata.
var analysisTimestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// diffLists returns the entries added to and removed from previous, sorted.
func diffLists(previous, current []string) (added, removed []string) {
	for _, s := range current {
		if !slices.Contains(previous, s) && !slices.Contains(added, s) {
			added = append(added, s)
		}
	}
	for _, s := range previous {
		if !slices.Contains(current, s) && !slices.Contains(removed, s) {
			removed = append(removed, s)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}

// diffHistogram returns the changed buckets of two histograms in label order.
func diffHistogram(category string, previous, current model.Histogram) []HistogramChange {
	merged := previous.Clone()
	for label := range current {
		merged[label] += 0
	}

	var changes []HistogramChange
	for _, label := range merged.Labels() {
		if previous[label] == current[label] {
			continue
		}
		changes = append(changes, HistogramChange{
			Category: category,
			Label:    label,
			Previous: previous[label],
			Current:  current[label],
			Delta:    current[label] - previous[label],
		})
	}
	return changes
}

// calculateRiskChange calculates the change in risk between two assessments.
func calculateRiskChange(previous, current ScanMetadata) RiskChange {
	change := RiskChange{ScoreDelta: current.RiskScore - previous.RiskScore}

	switch {
	case change.ScoreDelta < 0:
		change.Direction = riskDirectionImproved
	case change.ScoreDelta > 0:
		change.Direction = riskDirectionWorsened
	default:
		change.Direction = riskDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(w io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(w io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(w)
	md.H1("Assessment Comparison: " + result.Target)
	md.PlainText("")

	md.H2("Summary")
	md.PlainText("")
	md.PlainTextf("**Risk Status:** %s", formatRiskDirection(result.RiskChange.Direction))
	md.PlainText("")
	if result.Identical {
		md.Note("Both assessments are identical.")
		md.PlainText("")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Date", result.PreviousScan.DateScanned.Format("2006-01-02 15:04"), result.CurrentScan.DateScanned.Format("2006-01-02 15:04"), "-"},
			{"Risk Score", strconv.Itoa(result.PreviousScan.RiskScore), strconv.Itoa(result.CurrentScan.RiskScore), formatDelta(result.RiskChange.ScoreDelta)},
			{"Severity", result.PreviousScan.Severity, result.CurrentScan.Severity, "-"},
		},
	})
	md.PlainText("")

	writeMarkdownList(md, "New Tracker Domains", result.NewDomains, false)
	writeMarkdownList(md, "Removed Tracker Domains", result.RemovedDomains, true)
	writeMarkdownList(md, "New Critical Issues", result.NewIssues, false)
	writeMarkdownList(md, "Resolved Critical Issues", result.ResolvedIssues, true)

	if len(result.Changes) > 0 {
		md.H2(fmt.Sprintf("Changes (%d)", len(result.Changes)))
		md.PlainText("")
		rows := make([][]string, 0, len(result.Changes))
		for _, c := range result.Changes {
			rows = append(rows, []string{c.Category, c.Label, strconv.Itoa(c.Previous), strconv.Itoa(c.Current), formatDelta(c.Delta)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Category", "Label", "Previous", "Current", "Change"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return md.Build()
}

func writeMarkdownList(md *markdown.Markdown, title string, items []string, struck bool) {
	if len(items) == 0 {
		return
	}
	md.H2(fmt.Sprintf("%s (%d)", title, len(items)))
	md.PlainText("")
	for _, item := range items {
		if struck {
			md.PlainText("- ~~" + item + "~~")
		} else {
			md.PlainText("- " + item)
		}
	}
	md.PlainText("")
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(w io.Writer, result *ComparisonResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Assessment Comparison: %s\n", result.Target)
	b.WriteString(strings.Repeat("=", 60) + "\n")

	fmt.Fprintf(&b, "\nRisk Status: %s\n", formatRiskDirection(result.RiskChange.Direction))
	if result.Identical {
		b.WriteString("Both assessments are identical.\n")
	}

	fmt.Fprintf(&b, "\nPrevious: %s  score %d [%s]\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"),
		result.PreviousScan.RiskScore, result.PreviousScan.Severity)
	fmt.Fprintf(&b, "Current:  %s  score %d [%s]  (%s)\n",
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"),
		result.CurrentScan.RiskScore, result.CurrentScan.Severity,
		formatDelta(result.RiskChange.ScoreDelta))

	writeTextList(&b, "New Tracker Domains", "+", result.NewDomains)
	writeTextList(&b, "Removed Tracker Domains", "-", result.RemovedDomains)
	writeTextList(&b, "New Critical Issues", "+", result.NewIssues)
	writeTextList(&b, "Resolved Critical Issues", "-", result.ResolvedIssues)

	if len(result.Changes) > 0 {
		fmt.Fprintf(&b, "\nChanges (%d):\n", len(result.Changes))
		fmt.Fprintf(&b, "  %-18s  %-24s  %-8s  %-8s  %s\n", "Category", "Label", "Previous", "Current", "Change")
		b.WriteString("  " + strings.Repeat("-", 72) + "\n")
		for _, c := range result.Changes {
			fmt.Fprintf(&b, "  %-18s  %-24s  %-8d  %-8d  %s\n",
				c.Category, c.Label, c.Previous, c.Current, formatDelta(c.Delta))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTextList(b *strings.Builder, title, marker string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(b, "  [%s] %s\n", marker, item)
	}
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case riskDirectionImproved:
		return "IMPROVED (risk decreased)"
	case riskDirectionWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
