package model

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/sha3"
)

// ScanResult is the normalized output of the aggregation pipeline.
// It is rebuilt in full for every scan and never mutated afterwards;
// every histogram and list is non-nil so the presentation layer can read
// any field without further checks.
type ScanResult struct {
	// PII groups personally identifiable information findings.
	PII PIISummary `json:"pii"`

	// Trackers groups third-party tracker and vendor data.
	Trackers TrackerSummary `json:"trackers"`

	// Cookies groups cookie risk data.
	Cookies CookieSummary `json:"cookies"`

	// LocalCache groups local/session storage risk data.
	LocalCache LocalCacheSummary `json:"local_cache"`

	// Summary is the overall security assessment.
	Summary OverallSummary `json:"summary"`

	// DropHouses is the drop house risk count.
	DropHouses int `json:"drop_houses"`

	// Mules is the money mule risk count.
	Mules int `json:"mules"`

	// Bots holds bot detection indicators.
	Bots BotSummary `json:"bots"`

	// Exfiltration holds data exfiltration indicators.
	Exfiltration ExfiltrationSummary `json:"exfiltration"`

	// Page holds what the scanning service observed on the page itself.
	Page PageAnalysis `json:"page"`

	// Metadata describes how the assessment was produced.
	Metadata AssessmentMetadata `json:"metadata"`
}

// PIISummary holds PII counts and histograms.
type PIISummary struct {
	// RiskCount is the number of PII risks reported by the service.
	RiskCount int `json:"risk_count"`

	// Items are the well-formed risk items, in input order.
	Items []PIIRiskItem `json:"items"`

	// ComplianceViolations lists the regulations reported as violated.
	ComplianceViolations []string `json:"compliance_violations"`

	// RiskLevelCounts counts items by lower-cased risk level.
	RiskLevelCounts Histogram `json:"risk_level_counts"`

	// TypeCounts counts items by PII type.
	TypeCounts Histogram `json:"type_counts"`

	// ComplianceCounts counts compliance violations by regulation.
	ComplianceCounts Histogram `json:"compliance_counts"`
}

// PIIRiskItem is a single PII finding.
type PIIRiskItem struct {
	Field     string `json:"field"`
	Type      string `json:"type"`
	RiskLevel string `json:"risk_level"`
	Evidence  string `json:"evidence"`
}

// TrackerSummary holds tracker and vendor aggregates.
type TrackerSummary struct {
	// RiskCount is the number of tracker risks reported by the service.
	RiskCount int `json:"risk_count"`

	// Domains lists the tracker domains reported by the service.
	Domains []string `json:"domains"`

	// Vendors holds one row per well-formed vendor record, sorted by domain.
	Vendors []VendorRow `json:"vendors"`

	// ReputationCounts always holds exactly the three canonical buckets.
	ReputationCounts Histogram `json:"reputation_counts"`

	// DataCollectedCounts counts data categories across all vendors.
	DataCollectedCounts Histogram `json:"data_collected_counts"`

	// DataCollectedKeys lists the labels of DataCollectedCounts, sorted.
	DataCollectedKeys []string `json:"data_collected_keys"`

	// PurposeCounts counts vendors by declared purpose.
	PurposeCounts Histogram `json:"purpose_counts"`

	// SiteCounts counts vendors by registrable domain.
	SiteCounts Histogram `json:"site_counts"`
}

// VendorRow is one tracker domain with its vendor annotations.
type VendorRow struct {
	// Domain is the tracker domain as reported.
	Domain string `json:"domain"`

	// Site is the registrable domain (eTLD+1) of Domain.
	Site string `json:"site"`

	// Purpose is the declared purpose, "Unknown" when absent.
	Purpose string `json:"purpose"`

	// DataCollected lists the collected data categories.
	DataCollected []string `json:"data_collected"`

	// Reputation is the canonical reputation bucket.
	Reputation string `json:"reputation"`
}

// CookieSummary holds cookie risk aggregates.
type CookieSummary struct {
	// RiskCount is the reported cookie risk count.
	RiskCount int `json:"risk_count"`

	// Count is the cookie count used for the severity proxy.
	Count int `json:"count"`

	// Percent is the saturating severity proxy, 0-100.
	Percent int `json:"percent"`

	// Display is "<count>,<percent>%".
	Display string `json:"display"`

	// IssuesByType counts cookie issues by category.
	IssuesByType Histogram `json:"issues_by_type"`

	// HighRiskCookies lists cookies flagged as high risk.
	HighRiskCookies []CookieRecord `json:"high_risk_cookies"`
}

// CookieRecord is a single high-risk cookie.
type CookieRecord struct {
	Name   string   `json:"name"`
	Issues []string `json:"issues"`

	// ExpirationDays is nil when the service did not report an expiration.
	ExpirationDays *int `json:"expiration_days,omitempty"`
}

// LocalCacheSummary holds local storage risk aggregates.
type LocalCacheSummary struct {
	RiskCount          int      `json:"risk_count"`
	Percent            int      `json:"percent"`
	Display            string   `json:"display"`
	SensitiveDataFound bool     `json:"sensitive_data_found"`
	Items              []string `json:"items"`
}

// OverallSummary is the overall security assessment.
type OverallSummary struct {
	// RiskScore is the 0-100 risk score.
	RiskScore int `json:"risk_score"`

	// Severity is the band RiskScore falls into.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable Severity.
	SeverityText string `json:"severity_text"`

	CriticalIssues     []string `json:"critical_issues"`
	RecommendedActions []string `json:"recommended_actions"`

	// Text is the free-form assessment some service versions return
	// instead of a structured object.
	Text string `json:"text,omitempty"`
}

// BotSummary holds bot detection indicators.
type BotSummary struct {
	Detected   bool     `json:"detected"`
	Confidence string   `json:"confidence"`
	Indicators []string `json:"indicators"`
}

// ExfiltrationSummary holds data exfiltration indicators.
type ExfiltrationSummary struct {
	MulesDetected       bool     `json:"mules_detected"`
	DropHousesDetected  bool     `json:"drop_houses_detected"`
	SuspiciousEndpoints []string `json:"suspicious_endpoints"`
}

// PageAnalysis is what the scanning service observed on the page.
type PageAnalysis struct {
	URL      string            `json:"url,omitempty"`
	Scripts  []string          `json:"scripts"`
	Cookies  []ObservedCookie  `json:"cookies"`
	Trackers []ObservedTracker `json:"trackers"`

	// LocalStorage is sorted by key.
	LocalStorage []StorageEntry `json:"local_storage"`

	// LocalStorageAccessible is false when the service could not read storage.
	LocalStorageAccessible bool `json:"local_storage_accessible"`
}

// ObservedCookie is a cookie set by the scanned page.
type ObservedCookie struct {
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"http_only"`

	// Expiry is the Unix expiry time, 0 for session cookies.
	Expiry int64 `json:"expiry,omitempty"`
}

// ObservedTracker is a tracker script matched on the scanned page.
type ObservedTracker struct {
	Type   string `json:"type"`
	Source string `json:"source"`
	Risk   string `json:"risk"`
}

// StorageEntry is one local storage key/value pair.
type StorageEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AssessmentMetadata describes the model run behind the assessment.
type AssessmentMetadata struct {
	Model             string `json:"model,omitempty"`
	AnalysisTimestamp string `json:"analysis_timestamp,omitempty"`
}

// Fingerprint returns a hex SHA3-256 digest of the result's JSON encoding.
// Histograms encode with sorted keys, so equal results share a fingerprint.
func (r *ScanResult) Fingerprint() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
