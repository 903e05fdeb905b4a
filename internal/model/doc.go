// Package model defines the data structures shared across SiteScan.
//
// This package contains the following main types:
//   - RawAssessment / RawResponse: the untyped payload returned by the scanning service
//   - ScanResult: the normalized, fully defaulted output of the aggregation pipeline
//   - Histogram: label -> count mapping used by every chart-ready aggregate
//   - Scan: the per-target envelope carried through the CLI pipeline
//
// Models live in their own package so that aggregate, pipeline and report can
// share them without import cycles. All result types serialize to JSON.
package model
