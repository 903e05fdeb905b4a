package model

import "testing"

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestSeverityForScore tests the score band boundaries.
func TestSeverityForScore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		score    int
		expected Severity
	}{
		{-1, SeverityInfo},
		{0, SeverityInfo},
		{1, SeverityLow},
		{29, SeverityLow},
		{30, SeverityMedium},
		{59, SeverityMedium},
		{60, SeverityHigh},
		{79, SeverityHigh},
		{80, SeverityCritical},
		{100, SeverityCritical},
	}

	for _, tc := range testCases {
		if got := SeverityForScore(tc.score); got != tc.expected {
			t.Errorf("SeverityForScore(%d) = %v, expected %v", tc.score, got, tc.expected)
		}
	}
}

// TestSeverityOrdering tests that severity levels are ordered correctly.
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if SeverityInfo >= SeverityLow {
		t.Error("expected SeverityInfo < SeverityLow")
	}
	if SeverityLow >= SeverityMedium {
		t.Error("expected SeverityLow < SeverityMedium")
	}
	if SeverityMedium >= SeverityHigh {
		t.Error("expected SeverityMedium < SeverityHigh")
	}
	if SeverityHigh >= SeverityCritical {
		t.Error("expected SeverityHigh < SeverityCritical")
	}
}

// TestCanonicalReputation tests reputation label folding.
func TestCanonicalReputation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		label    string
		expected string
	}{
		{"known-good", ReputationKnownGood},
		{"Known-Good", ReputationKnownGood},
		{"neutral", ReputationNeutral},
		{"known-bad", ReputationKnownBad},
		{"high-risk", ReputationKnownBad},
		{"  HIGH-RISK\n", ReputationKnownBad},
		{"", ReputationNeutral},
		{"trusted", ReputationNeutral},
	}

	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			t.Parallel()
			if got := CanonicalReputation(tc.label); got != tc.expected {
				t.Errorf("CanonicalReputation(%q) = %q, expected %q", tc.label, got, tc.expected)
			}
		})
	}
}
