package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/sitescan/internal/schema"
)

// Validate tests toggle the color package's global switch and do not run
// in parallel.

func TestValidateCmdValidInput(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "response.json", sampleResponse)

	stdout, _, err := executeCommand(t, "", "validate", "--no-color", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Assessment is valid ("+path+")") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Compliance: 100%") {
		t.Errorf("expected full compliance, got:\n%s", stdout)
	}
}

func TestValidateCmdStdin(t *testing.T) {
	stdout, _, err := executeCommand(t, sampleResponse, "validate", "--no-color", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "(stdin)") {
		t.Errorf("expected stdin label, got:\n%s", stdout)
	}
}

func TestValidateCmdInvalidInput(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "response.json", invalidResponse)

	stdout, _, err := executeCommand(t, "", "validate", "--no-color", path)
	if !errors.Is(err, ErrSchemaViolations) {
		t.Fatalf("expected ErrSchemaViolations, got %v", err)
	}
	for _, want := range []string{
		"Assessment validation failed",
		"PII.risk_count",
		"OVERALL_SECURITY_ASSESSMENT.risk_score",
		"Recommendations:",
		"risk_score should be a number between 0 and 100",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestValidateCmdEmptyAssessment(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "response.json", `{"status": "ok"}`)

	stdout, _, err := executeCommand(t, "", "validate", "--no-color", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "no assessment sections found") {
		t.Errorf("expected empty assessment note, got:\n%s", stdout)
	}
}

func TestValidateCmdSchema(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "validate", "--schema")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !json.Valid([]byte(stdout)) {
		t.Error("expected the schema to be valid JSON")
	}

	if _, _, err := executeCommand(t, "", "validate", "--schema", "extra.json"); err == nil {
		t.Error("expected error for argument with --schema")
	}
}

func TestValidateCmdRequiresInput(t *testing.T) {
	if _, _, err := executeCommand(t, "", "validate"); err == nil {
		t.Error("expected error without input")
	}
}

func TestRecommendations(t *testing.T) {
	t.Parallel()

	issues := []schema.Issue{
		{Field: "OVERALL_SECURITY_ASSESSMENT.risk_score", Description: "Must be less than or equal to 100"},
		{Field: "OVERALL_SECURITY_ASSESSMENT.risk_score", Description: "Invalid type. Expected: integer, given: string"},
		{Field: "TRACKERS.vendor_analysis.ads.example.com", Description: "Invalid type. Expected: object, given: string"},
		{Field: "COOKIES.risk_count", Description: "Invalid type. Expected: integer, given: string"},
		{Field: "PII.risk_count", Description: "Must be greater than or equal to 0"},
	}

	got := recommendations(issues)
	want := []string{
		"risk_score should be a number between 0 and 100",
		"vendor_analysis entries should be objects with purpose, data_collected and reputation",
		"Check the type of COOKIES against `sitescan validate --schema`",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d recommendations, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("recommendation %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
