// Package report renders scans for people and tools.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Text tables for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown with mermaid pie charts for sharing
//
// Writers only read the normalized ScanResult; they never look at the
// raw service response.
package report
