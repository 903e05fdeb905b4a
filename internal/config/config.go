package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultEndpoint is the scanning service's analysis route when it runs
	// on the local machine with its stock settings.
	DefaultEndpoint = "http://127.0.0.1:5002/api/v1/analyze_with_ollama"

	// DefaultTimeout covers a headless browser visit plus a local model run,
	// which regularly takes more than a minute.
	DefaultTimeout = 180 * time.Second

	// DefaultBatchSize is the number of targets analyzed concurrently.
	// The service runs one browser per request, so this stays small.
	DefaultBatchSize = 2

	// AppName is the application name used for XDG directory paths.
	AppName = "sitescan"

	// DefaultUserAgent identifies SiteScan in requests to the service.
	DefaultUserAgent = "SiteScan/1.0 (+https://github.com/nao1215/sitescan)"

	// DefaultMaxBodySize limits the size of the service response to read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Config holds all configuration options for SiteScan.
// It is populated from defaults, the configuration file and CLI flags, in
// that order, and passed through the application rather than kept global.
type Config struct {
	// Endpoint is the URL of the scanning service's analysis route.
	Endpoint string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format used
	// to reach the service. Empty means a direct connection.
	ProxyAddress string

	// Timeout bounds a single analysis request, including the time the
	// service spends visiting the page and running its model.
	Timeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent analyses when scanning
	// several targets.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the standard locations are searched (see FindConfigFile).
	ConfigFilePath string

	// File holds the loaded configuration file, including per-target
	// overrides. It is never nil after loading.
	File *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output with tables and pie charts.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Targets is the list of website URLs to scan.
	Targets []string

	// UserAgent is the User-Agent header sent to the service.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64

	// Headers are extra HTTP headers sent with every analysis request.
	Headers map[string]string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		Timeout:     DefaultTimeout,
		BatchSize:   DefaultBatchSize,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		File:        NewFile(),
		Headers:     map[string]string{},
	}
}

// ApplyFile copies the service settings of a configuration file over the
// current values. Empty settings in the file leave the current value alone.
// CLI flags are applied after this, so they win.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f
	if f.Endpoint != "" {
		c.Endpoint = f.Endpoint
	}
	if f.Proxy != "" {
		c.ProxyAddress = f.Proxy
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.MaxBodySize > 0 {
		c.MaxBodySize = f.MaxBodySize
	}
	if c.Headers == nil {
		c.Headers = make(map[string]string, len(f.Headers))
	}
	for k, v := range f.Headers {
		c.Headers[k] = v
	}
}

// HeadersFor returns the request headers for a target: the global headers
// overlaid with the file's defaults and the target's own overrides.
func (c *Config) HeadersFor(target string) map[string]string {
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		headers[k] = v
	}
	if c.File == nil {
		return headers
	}
	for k, v := range c.File.TargetConfig(target).Headers {
		headers[k] = v
	}
	return headers
}

// TimeoutFor returns the request timeout for a target, honouring a
// per-target override from the configuration file.
func (c *Config) TimeoutFor(target string) time.Duration {
	if c.File != nil {
		if tc := c.File.TargetConfig(target); tc.Timeout > 0 {
			return tc.Timeout
		}
	}
	return c.Timeout
}

// XDGConfigDir returns the XDG config directory for SiteScan.
// On Linux: ~/.config/sitescan
// On macOS: ~/Library/Application Support/sitescan
// On Windows: %APPDATA%\sitescan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGConfigFile returns the path of the configuration file inside the XDG
// config directory.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
// This is called once after CLI parsing, before any request is sent.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if !isHTTPURL(c.Endpoint) {
		return ErrInvalidEndpoint
	}

	return nil
}

// isHTTPURL reports whether s is an absolute http or https URL with a host.
func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
