// Package main provides the entry point for the SiteScan CLI.
//
// SiteScan asks a website security scanning service to analyze pages and
// turns its loosely structured assessments into consistent reports:
// PII findings, tracker vendors, cookie and local storage risks, and an
// overall risk score.
//
// Usage:
//
//	sitescan scan https://shop.example.org
//	sitescan report saved-response.json
//	sitescan compare before.json after.json
//
// See --help for all available options.
package main

// main is the entry point for SiteScan.
func main() {
	Execute()
}
