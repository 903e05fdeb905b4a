package model

import "time"

// Scan is the per-target envelope carried through the CLI pipeline.
// It holds what the pipeline knows about one target: the raw service
// response, the normalized result, and any problems met along the way.
//
// Scan is mutable while the pipeline runs; the ScanResult it carries is not.
type Scan struct {
	// Target is the scanned website URL or the input file path.
	Target string `json:"target"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Response is the raw body returned by the scanning service.
	// Excluded from JSON; the normalized Result is what gets reported.
	Response RawResponse `json:"-"`

	// Result is the normalized assessment. It is always set once the
	// normalize step ran, even when fetching failed.
	Result *ScanResult `json:"result,omitempty"`

	// Warnings are non-fatal problems such as schema deviations.
	Warnings []string `json:"warnings,omitempty"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is true if the pipeline was cancelled before finishing.
	TimedOut bool `json:"timed_out"`

	// Error is the first error recorded during the scan.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewScan creates a scan envelope for the given target.
func NewScan(target string) *Scan {
	return &Scan{
		Target:      target,
		DateScanned: time.Now(),
		Response:    RawResponse{},
	}
}

// RecordError stores err on the scan. Only the first error is kept.
func (s *Scan) RecordError(err error) {
	if err == nil || s.Error != nil {
		return
	}
	s.Error = err
	s.ErrorMessage = err.Error()
}

// Failed reports whether an error was recorded.
func (s *Scan) Failed() bool {
	return s.Error != nil || s.ErrorMessage != ""
}

// AddWarning appends a warning unless an identical one is already present.
func (s *Scan) AddWarning(warning string) {
	for _, w := range s.Warnings {
		if w == warning {
			return
		}
	}
	s.Warnings = append(s.Warnings, warning)
}

// Severity returns the severity band of the scan's risk score.
// A scan without a result is SeverityInfo.
func (s *Scan) Severity() Severity {
	if s.Result == nil {
		return SeverityInfo
	}
	return s.Result.Summary.Severity
}
