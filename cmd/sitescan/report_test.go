package main

import (
	"strings"
	"testing"

	"github.com/nao1215/sitescan/internal/model"
)

// TestNewReportCmd tests the report command creation.
func TestNewReportCmd(t *testing.T) {
	t.Parallel()

	cmd := NewReportCmd()
	if cmd.Use != "report <file|->..." {
		t.Errorf("unexpected use %q", cmd.Use)
	}
	for _, name := range []string{"json", "markdown", "output"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

// TestRunReportCmd tests rendering saved responses.
func TestRunReportCmd(t *testing.T) {
	t.Parallel()

	t.Run("markdown from file", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, t.TempDir(), "response.json", sampleResponse)
		stdout, _, err := executeCommand(t, "", "report", "--markdown", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"# Security Assessment: " + path, "[!WARNING]", "ads.example.com", "```mermaid"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
			}
		}
	})

	t.Run("from stdin", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCommand(t, sampleResponse, "report", "-")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "ads.example.com") {
			t.Errorf("expected vendor in output, got:\n%s", stdout)
		}
	})

	t.Run("several files produce a batch report", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := writeTestFile(t, dir, "a.json", sampleResponse)
		b := writeTestFile(t, dir, "b.json", improvedResponse)

		stdout, _, err := executeCommand(t, "", "report", "--markdown", a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "# Site Security Report") {
			t.Errorf("expected batch heading, got:\n%s", stdout)
		}
	})

	t.Run("non-object input", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, t.TempDir(), "list.json", `[1, 2, 3]`)
		if _, _, err := executeCommand(t, "", "report", path); err == nil {
			t.Error("expected error for non-object input")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, _, err := executeCommand(t, "", "report", "does-not-exist.json"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, t.TempDir(), "response.json", sampleResponse)
		if _, _, err := executeCommand(t, "", "report", "--json", "--markdown", path); err == nil {
			t.Error("expected error for conflicting formats")
		}
	})
}

func TestLoadScan(t *testing.T) {
	t.Parallel()

	t.Run("raw response is normalized", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, t.TempDir(), "response.json", sampleResponse)
		scan, err := loadScan(t.Context(), NewReportCmd(), path, discardLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if scan.Result.Summary.RiskScore != 72 {
			t.Errorf("expected risk score 72, got %d", scan.Result.Summary.RiskScore)
		}
		if len(scan.Warnings) != 0 {
			t.Errorf("unexpected warnings %v", scan.Warnings)
		}
	})

	t.Run("schema deviations become warnings", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, t.TempDir(), "response.json", invalidResponse)
		scan, err := loadScan(t.Context(), NewReportCmd(), path, discardLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(scan.Warnings) != 2 {
			t.Errorf("expected 2 warnings, got %v", scan.Warnings)
		}
		if scan.Result.Summary.RiskScore != 100 {
			t.Errorf("expected clamped risk score 100, got %d", scan.Result.Summary.RiskScore)
		}
	})
}

func TestSavedResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		resp  model.RawResponse
		score int
		ok    bool
	}{
		{
			name:  "single scan",
			resp:  model.RawResponse{"result": map[string]any{"summary": map[string]any{"risk_score": float64(40)}}},
			score: 40,
			ok:    true,
		},
		{
			name: "wrapped report",
			resp: model.RawResponse{"scans": []any{
				map[string]any{"result": map[string]any{"summary": map[string]any{"risk_score": float64(65)}}},
			}},
			score: 65,
			ok:    true,
		},
		{name: "empty report", resp: model.RawResponse{"scans": []any{}}},
		{name: "service response", resp: model.RawResponse{"assesment": map[string]any{}}},
		{name: "result of wrong type", resp: model.RawResponse{"result": "done"}},
		{name: "mistyped result field", resp: model.RawResponse{"result": map[string]any{"summary": "high"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, ok := savedResult(tt.resp)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && result.Summary.RiskScore != tt.score {
				t.Errorf("expected risk score %d, got %d", tt.score, result.Summary.RiskScore)
			}
		})
	}
}
