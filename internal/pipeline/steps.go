package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nao1215/sitescan/internal/aggregate"
	"github.com/nao1215/sitescan/internal/client"
	"github.com/nao1215/sitescan/internal/model"
	"github.com/nao1215/sitescan/internal/schema"
)

// StdinTarget is the target name that makes LoadStep read standard input.
const StdinTarget = "-"

// ErrInvalidInput is returned by LoadStep when the input is not a JSON object.
var ErrInvalidInput = errors.New("input is not a JSON object")

// Analyzer fetches the raw assessment of a target.
// *client.Client satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, target string, opts ...client.RequestOption) (model.RawResponse, error)
}

// FetchStep asks the scanning service to analyze the target.
// On failure the scan keeps an empty response, so later steps still run
// when the pipeline continues on error.
type FetchStep struct {
	analyzer Analyzer
	timeout  time.Duration
	headers  map[string]string
	logger   *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithFetchTimeout bounds a single fetch. Zero means no step-level timeout.
func WithFetchTimeout(d time.Duration) FetchStepOption {
	return func(s *FetchStep) {
		s.timeout = d
	}
}

// WithFetchHeaders sets headers sent with this target's request only.
func WithFetchHeaders(headers map[string]string) FetchStepOption {
	return func(s *FetchStep) {
		s.headers = headers
	}
}

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// NewFetchStep creates a new fetch step.
func NewFetchStep(analyzer Analyzer, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{
		analyzer: analyzer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do fetches the service response and stores it on the scan.
func (s *FetchStep) Do(ctx context.Context, scan *model.Scan) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var reqOpts []client.RequestOption
	if len(s.headers) > 0 {
		reqOpts = append(reqOpts, client.WithRequestHeaders(s.headers))
	}

	start := time.Now()
	resp, err := s.analyzer.Analyze(ctx, scan.Target, reqOpts...)
	if err != nil {
		scan.Response = model.RawResponse{}
		if errors.Is(err, context.DeadlineExceeded) {
			scan.TimedOut = true
		}
		return fmt.Errorf("failed to fetch assessment for %s: %w", scan.Target, err)
	}

	scan.Response = resp
	s.logger.Debug("assessment fetched",
		"target", scan.Target,
		"elapsed", time.Since(start),
	)
	return nil
}

// LoadStep reads a saved service response from a file, or from standard
// input when the target is StdinTarget.
type LoadStep struct {
	stdin  io.Reader
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithStdin replaces os.Stdin as the source for StdinTarget.
func WithStdin(r io.Reader) LoadStepOption {
	return func(s *LoadStep) {
		s.stdin = r
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new load step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		stdin:  os.Stdin,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do decodes the input named by the scan target into scan.Response.
func (s *LoadStep) Do(_ context.Context, scan *model.Scan) error {
	data, err := s.read(scan.Target)
	if err != nil {
		return err
	}

	var resp model.RawResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidInput, scan.Target, err)
	}
	if resp == nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, scan.Target)
	}

	scan.Response = resp
	s.logger.Debug("response loaded",
		"source", scan.Target,
		"bytes", len(data),
	)
	return nil
}

func (s *LoadStep) read(target string) ([]byte, error) {
	if target == StdinTarget {
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(target) //nolint:gosec // reading user-named input is the point
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	return data, nil
}

// ValidateStep checks the assessment against the payload schema.
// Deviations become scan warnings; the step itself never fails.
type ValidateStep struct {
	logger *slog.Logger
}

// NewValidateStep creates a new validate step.
func NewValidateStep(logger *slog.Logger) *ValidateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStep{logger: logger}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do records schema issues as warnings on the scan.
func (s *ValidateStep) Do(_ context.Context, scan *model.Scan) error {
	raw := scan.Response.Assessment()
	issues := schema.Validate(raw)
	for _, issue := range issues {
		scan.AddWarning(issue.String())
	}

	s.logger.Debug("assessment validated",
		"target", scan.Target,
		"issues", len(issues),
		"compliance", schema.Compliance(raw, issues),
	)
	return nil
}

// NormalizeStep builds the ScanResult from the scan's response.
// An empty response yields a fully defaulted result.
type NormalizeStep struct{}

// NewNormalizeStep creates a new normalize step.
func NewNormalizeStep() *NormalizeStep {
	return &NormalizeStep{}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do sets scan.Result.
func (s *NormalizeStep) Do(_ context.Context, scan *model.Scan) error {
	scan.Result = aggregate.NormalizeResponse(scan.Response)
	return nil
}

// NewScanPipeline creates the pipeline used by the scan command:
// fetch, validate and normalize. It continues after a failed fetch so
// every target ends up with a result.
func NewScanPipeline(analyzer Analyzer, logger *slog.Logger, opts ...FetchStepOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	fetchOpts := append([]FetchStepOption{WithFetchLogger(logger)}, opts...)

	p := New(WithLogger(logger), WithContinueOnError(true))
	p.AddSteps(
		NewFetchStep(analyzer, fetchOpts...),
		NewValidateStep(logger),
		NewNormalizeStep(),
	)
	return p
}

// NewReportPipeline creates the pipeline used by the report command:
// load, validate and normalize. Unreadable input stops the pipeline.
func NewReportPipeline(logger *slog.Logger, opts ...LoadStepOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	loadOpts := append([]LoadStepOption{WithLoadLogger(logger)}, opts...)

	p := New(WithLogger(logger))
	p.AddSteps(
		NewLoadStep(loadOpts...),
		NewValidateStep(logger),
		NewNormalizeStep(),
	)
	return p
}
