// Package pipeline provides a framework for executing scan steps in sequence.
//
// A scan moves through a small number of stages: obtaining the service
// response (fetching it from the scanning service or loading a saved one),
// checking it against the assessment schema, and normalizing it into a
// ScanResult. Each stage is a Step that receives the scan envelope and
// may modify it.
//
// Steps run in order with consistent logging and error recording, and
// the pipeline checks for cancellation between steps. With
// WithContinueOnError, a failed fetch still lets the normalize step
// produce a fully defaulted result.
//
// Several targets are processed concurrently with BatchProcessor, which
// bounds concurrency using errgroup.
package pipeline
