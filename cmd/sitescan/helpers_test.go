package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// sampleResponse is a conforming service response with one known-bad vendor.
const sampleResponse = `{
  "assesment": {
    "TRACKERS": {
      "risk_count": 1,
      "domains": ["ads.example.com"],
      "vendor_analysis": {
        "ads.example.com": {"purpose": "Advertising", "data_collected": ["email"], "reputation": "known-bad"}
      }
    },
    "OVERALL_SECURITY_ASSESSMENT": {
      "risk_score": 72,
      "critical_issues": ["PII shared with known-bad vendor"],
      "recommended_actions": ["Remove ads.example.com"]
    },
    "_metadata": {"model": "llama3.1:8b", "analysis_timestamp": "2025-03-02T10:04:05"}
  },
  "analysis": {"url": "https://shop.example.org/"}
}`

// improvedResponse is sampleResponse after the vendor was removed.
const improvedResponse = `{
  "assesment": {
    "TRACKERS": {
      "risk_count": 1,
      "domains": ["cdn.example.com"],
      "vendor_analysis": {
        "cdn.example.com": {"purpose": "Content Delivery", "data_collected": [], "reputation": "known-good"}
      }
    },
    "OVERALL_SECURITY_ASSESSMENT": {
      "risk_score": 20,
      "critical_issues": [],
      "recommended_actions": []
    },
    "_metadata": {"model": "llama3.1:8b", "analysis_timestamp": "2025-03-09T10:04:05"}
  },
  "analysis": {"url": "https://shop.example.org/"}
}`

// invalidResponse has a mistyped risk count and an out of range score.
const invalidResponse = `{
  "assesment": {
    "PII": {"risk_count": "three"},
    "OVERALL_SECURITY_ASSESSMENT": {"risk_score": 150}
  }
}`

// writeTestFile writes content to name inside dir and returns the path.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
