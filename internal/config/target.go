package config

import (
	"net/url"
	"strings"
	"time"
)

// TargetConfig holds per-target request settings.
type TargetConfig struct {
	// Headers are extra HTTP headers sent to the service when analyzing
	// this target.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Timeout overrides the global request timeout for this target.
	// Slow or heavy pages may need more time.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// File represents the structure of the .sitescan configuration file.
type File struct {
	// Endpoint overrides the scanning service URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Timeout overrides the default request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Proxy is an optional SOCKS5 proxy address used to reach the service.
	Proxy string `yaml:"proxy,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize overrides the response size limit in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Headers are sent with every analysis request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Targets maps a website host (or full URL) to its overrides.
	Targets map[string]TargetConfig `yaml:"targets,omitempty"`

	// Defaults applies to every target unless overridden in Targets.
	Defaults TargetConfig `yaml:"defaults,omitempty"`
}

// NewFile returns an empty configuration file.
func NewFile() *File {
	return &File{Targets: make(map[string]TargetConfig)}
}

// TargetConfig returns the configuration for a target, merging its
// overrides over the defaults. The target is looked up as given, then by
// host name, so both "https://shop.example.org/" and "shop.example.org"
// match a "shop.example.org" entry.
func (cf *File) TargetConfig(target string) TargetConfig {
	result := TargetConfig{
		Headers: make(map[string]string, len(cf.Defaults.Headers)),
		Timeout: cf.Defaults.Timeout,
	}
	for k, v := range cf.Defaults.Headers {
		result.Headers[k] = v
	}

	override, ok := cf.Targets[target]
	if !ok {
		override, ok = cf.Targets[targetHost(target)]
	}
	if !ok {
		return result
	}

	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	for k, v := range override.Headers {
		result.Headers[k] = v
	}
	return result
}

// targetHost returns the lower-cased host name of a target URL.
func targetHost(target string) string {
	s := strings.TrimSpace(target)
	if !strings.Contains(s, "://") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return target
	}
	return strings.ToLower(u.Hostname())
}
