package aggregate

import (
	"strings"

	"github.com/nao1215/sitescan/internal/field"
	"github.com/nao1215/sitescan/internal/model"
)

// Section field keys shared by several sections.
const (
	keyRiskItems            = "risk_items"
	keyComplianceViolations = "compliance_violations"
	keyDomains              = "domains"
	keyVendorAnalysis       = "vendor_analysis"
	keyRiskScore            = "risk_score"
	keyCriticalIssues       = "critical_issues"
	keyRecommendedActions   = "recommended_actions"
	keyDetected             = "detected"
	keyConfidence           = "confidence"
	keyIndicators           = "indicators"
	keyMulesDetected        = "mules_detected"
	keyDropHousesDetected   = "drop_houses_detected"
	keySuspiciousEndpoints  = "suspicious_endpoints"
	keyModel                = "model"
	keyAnalysisTimestamp    = "analysis_timestamp"
)

const maxRiskScore = 100

// Normalize builds a fully populated ScanResult from an assessment.
// Absent or malformed sections yield zero counts, empty histograms and
// empty lists. Normalize never mutates raw and returns a new result on
// every call.
func Normalize(raw model.RawAssessment) *model.ScanResult {
	return normalize(raw, nil)
}

// NormalizeResponse is Normalize for a full service response. It also
// converts the page analysis block.
func NormalizeResponse(resp model.RawResponse) *model.ScanResult {
	return normalize(resp.Assessment(), resp.Analysis())
}

func normalize(raw model.RawAssessment, analysis map[string]any) *model.ScanResult {
	// Index through a plain map so nil and RawAssessment behave alike.
	sections := map[string]any(raw)

	pii := sections[model.SectionPII]
	trackers := sections[model.SectionTrackers]
	cookies := sections[model.SectionCookies]

	return &model.ScanResult{
		PII:          normalizePII(pii),
		Trackers:     normalizeTrackers(trackers),
		Cookies:      SummarizeCookies(cookies),
		LocalCache:   SummarizeLocalCache(sections[model.SectionLocalCache]),
		Summary:      normalizeOverall(sections[model.SectionOverall]),
		DropHouses:   riskCount(sections[model.SectionDropHouses]),
		Mules:        riskCount(sections[model.SectionMules]),
		Bots:         normalizeBots(sections[model.SectionBots]),
		Exfiltration: normalizeExfiltration(sections[model.SectionExfiltration]),
		Page:         AnalyzePage(analysis),
		Metadata:     normalizeMetadata(sections[model.SectionMetadata]),
	}
}

func normalizePII(section any) model.PIISummary {
	items := AggregatePII(field.Get(section, keyRiskItems, nil))
	violations := field.Get(section, keyComplianceViolations, nil)

	return model.PIISummary{
		RiskCount:            riskCount(section),
		Items:                items.Items,
		ComplianceViolations: field.StringSlice(section, keyComplianceViolations),
		RiskLevelCounts:      items.RiskLevelCounts,
		TypeCounts:           items.TypeCounts,
		ComplianceCounts:     CountLabels(violations),
	}
}

func normalizeTrackers(section any) model.TrackerSummary {
	vendors := AggregateVendors(field.Get(section, keyVendorAnalysis, nil))

	return model.TrackerSummary{
		RiskCount:           riskCount(section),
		Domains:             field.StringSlice(section, keyDomains),
		Vendors:             vendors.Vendors,
		ReputationCounts:    vendors.ReputationCounts,
		DataCollectedCounts: vendors.DataCollectedCounts,
		DataCollectedKeys:   vendors.DataCollectedCounts.Labels(),
		PurposeCounts:       vendors.PurposeCounts,
		SiteCounts:          vendors.SiteCounts,
	}
}

// normalizeOverall reads OVERALL_SECURITY_ASSESSMENT. Older service
// versions return a plain string there, which becomes the summary text.
func normalizeOverall(section any) model.OverallSummary {
	summary := model.OverallSummary{
		CriticalIssues:     field.StringSlice(section, keyCriticalIssues),
		RecommendedActions: field.StringSlice(section, keyRecommendedActions),
	}
	if text, ok := section.(string); ok {
		summary.Text = strings.TrimSpace(text)
	}

	summary.RiskScore = min(max(field.Int(section, keyRiskScore, 0), 0), maxRiskScore)
	summary.Severity = model.SeverityForScore(summary.RiskScore)
	summary.SeverityText = summary.Severity.String()
	return summary
}

func normalizeBots(section any) model.BotSummary {
	return model.BotSummary{
		Detected:   field.Bool(section, keyDetected, false),
		Confidence: field.String(section, keyConfidence, ""),
		Indicators: field.StringSlice(section, keyIndicators),
	}
}

func normalizeExfiltration(section any) model.ExfiltrationSummary {
	return model.ExfiltrationSummary{
		MulesDetected:       field.Bool(section, keyMulesDetected, false),
		DropHousesDetected:  field.Bool(section, keyDropHousesDetected, false),
		SuspiciousEndpoints: field.StringSlice(section, keySuspiciousEndpoints),
	}
}

func normalizeMetadata(section any) model.AssessmentMetadata {
	return model.AssessmentMetadata{
		Model:             field.String(section, keyModel, ""),
		AnalysisTimestamp: field.String(section, keyAnalysisTimestamp, ""),
	}
}

// riskCount returns the section's risk_count, with negatives read as zero.
func riskCount(section any) int {
	return max(field.Int(section, keyRiskCount, 0), 0)
}
