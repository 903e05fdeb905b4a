package model

import "strings"

// Severity represents the overall risk band of a scan, derived from the
// assessment's 0-100 risk score.
type Severity int

const (
	// SeverityInfo means the service reported no measurable risk (score 0).
	SeverityInfo Severity = iota

	// SeverityLow covers scores 1-29.
	SeverityLow

	// SeverityMedium covers scores 30-59.
	SeverityMedium

	// SeverityHigh covers scores 60-79.
	SeverityHigh

	// SeverityCritical covers scores 80-100.
	SeverityCritical
)

// Score thresholds for each severity band.
const (
	scoreLow      = 1
	scoreMedium   = 30
	scoreHigh     = 60
	scoreCritical = 80
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// SeverityForScore maps a 0-100 risk score to its severity band.
func SeverityForScore(score int) Severity {
	switch {
	case score >= scoreCritical:
		return SeverityCritical
	case score >= scoreHigh:
		return SeverityHigh
	case score >= scoreMedium:
		return SeverityMedium
	case score >= scoreLow:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// Canonical tracker reputation buckets.
const (
	ReputationKnownGood = "known-good"
	ReputationNeutral   = "neutral"
	ReputationKnownBad  = "known-bad"
)

// ReputationLabels lists the canonical reputation buckets in display order.
var ReputationLabels = []string{ReputationKnownGood, ReputationNeutral, ReputationKnownBad}

// reputationMapping maps lower-cased reputation labels to their canonical bucket.
// The scanning service's prompt names the bad bucket "high-risk".
var reputationMapping = map[string]string{
	ReputationKnownGood: ReputationKnownGood,
	ReputationNeutral:   ReputationNeutral,
	ReputationKnownBad:  ReputationKnownBad,
	"high-risk":         ReputationKnownBad,
}

// CanonicalReputation returns the canonical bucket for a reputation label.
// Matching ignores case and surrounding space; anything unrecognized,
// including the empty string, is neutral.
func CanonicalReputation(label string) string {
	if canonical, ok := reputationMapping[strings.ToLower(strings.TrimSpace(label))]; ok {
		return canonical
	}
	return ReputationNeutral
}

// PII risk levels as they appear after lower-casing.
const (
	RiskLevelHigh    = "high"
	RiskLevelMedium  = "medium"
	RiskLevelLow     = "low"
	RiskLevelUnknown = "unknown"
)

// Display defaults used when a field is missing.
const (
	UnknownLabel = "Unknown"
	NoneLabel    = "None"
)
