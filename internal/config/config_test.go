package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults should be intentional, so they are pinned here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Endpoint is the local analysis route", func(t *testing.T) {
		t.Parallel()
		if cfg.Endpoint != "http://127.0.0.1:5002/api/v1/analyze_with_ollama" {
			t.Errorf("unexpected Endpoint %q", cfg.Endpoint)
		}
	})

	t.Run("default Timeout is 180 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 180*time.Second {
			t.Errorf("expected Timeout to be 180s, got %v", cfg.Timeout)
		}
	})

	t.Run("default BatchSize is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 2 {
			t.Errorf("expected BatchSize to be 2, got %d", cfg.BatchSize)
		}
	})

	t.Run("no proxy by default", func(t *testing.T) {
		t.Parallel()
		if cfg.ProxyAddress != "" {
			t.Errorf("expected empty ProxyAddress, got %q", cfg.ProxyAddress)
		}
	})

	t.Run("file and headers are initialized", func(t *testing.T) {
		t.Parallel()
		if cfg.File == nil || cfg.File.Targets == nil {
			t.Error("expected File with Targets map")
		}
		if cfg.Headers == nil {
			t.Error("expected Headers map")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"https://shop.example.org"}
		return cfg
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid config returns nil", mutate: func(*Config) {}},
		{
			name:   "multiple targets is valid",
			mutate: func(c *Config) { c.Targets = []string{"a.example", "b.example"} },
		},
		{
			name:    "empty targets returns ErrNoTarget",
			mutate:  func(c *Config) { c.Targets = nil },
			wantErr: ErrNoTarget,
		},
		{
			name:    "zero timeout returns ErrInvalidTimeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative batch size returns ErrInvalidBatchSize",
			mutate:  func(c *Config) { c.BatchSize = -1 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "json and markdown both enabled returns ErrConflictingReportFormats",
			mutate:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "negative max body size returns ErrInvalidMaxBodySize",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "relative endpoint returns ErrInvalidEndpoint",
			mutate:  func(c *Config) { c.Endpoint = "/api/v1/analyze_with_ollama" },
			wantErr: ErrInvalidEndpoint,
		},
		{
			name:    "non-http endpoint returns ErrInvalidEndpoint",
			mutate:  func(c *Config) { c.Endpoint = "ftp://example.org/analyze" },
			wantErr: ErrInvalidEndpoint,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestConfigApplyFile tests that file settings override defaults.
func TestConfigApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("non-empty settings are applied", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(&File{
			Endpoint:  "https://scanner.internal/api/v1/analyze_with_openai",
			Timeout:   45 * time.Second,
			Proxy:     "127.0.0.1:1080",
			UserAgent: "audit-bot",
			Headers:   map[string]string{"X-Api-Key": "k"},
		})

		if cfg.Endpoint != "https://scanner.internal/api/v1/analyze_with_openai" {
			t.Errorf("endpoint not applied: %q", cfg.Endpoint)
		}
		if cfg.Timeout != 45*time.Second {
			t.Errorf("timeout not applied: %v", cfg.Timeout)
		}
		if cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("proxy not applied: %q", cfg.ProxyAddress)
		}
		if cfg.UserAgent != "audit-bot" {
			t.Errorf("user agent not applied: %q", cfg.UserAgent)
		}
		if cfg.Headers["X-Api-Key"] != "k" {
			t.Error("headers not applied")
		}
	})

	t.Run("empty settings keep defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(NewFile())

		if cfg.Endpoint != DefaultEndpoint || cfg.Timeout != DefaultTimeout || cfg.UserAgent != DefaultUserAgent {
			t.Error("empty file must not change defaults")
		}
	})

	t.Run("nil file is ignored", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil)
		if cfg.File == nil {
			t.Error("expected File to stay initialized")
		}
	})
}

// TestFileTargetConfig tests merging per-target overrides over defaults.
func TestFileTargetConfig(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: TargetConfig{
			Headers: map[string]string{"X-Tenant": "default", "X-Trace": "on"},
			Timeout: time.Minute,
		},
		Targets: map[string]TargetConfig{
			"shop.example.org": {
				Headers: map[string]string{"X-Tenant": "shop"},
				Timeout: 5 * time.Minute,
			},
			"https://blog.example.org/feed": {
				Headers: map[string]string{"X-Tenant": "blog"},
			},
		},
	}

	t.Run("returns defaults when target not found", func(t *testing.T) {
		t.Parallel()

		tc := file.TargetConfig("https://other.example.org")
		if tc.Headers["X-Tenant"] != "default" || tc.Timeout != time.Minute {
			t.Errorf("unexpected config %+v", tc)
		}
	})

	t.Run("matches by host name", func(t *testing.T) {
		t.Parallel()

		tc := file.TargetConfig("https://Shop.Example.org/checkout")
		if tc.Headers["X-Tenant"] != "shop" {
			t.Errorf("expected target header to override default, got %q", tc.Headers["X-Tenant"])
		}
		if tc.Headers["X-Trace"] != "on" {
			t.Error("expected default header to be kept")
		}
		if tc.Timeout != 5*time.Minute {
			t.Errorf("expected target timeout, got %v", tc.Timeout)
		}
	})

	t.Run("matches by exact target", func(t *testing.T) {
		t.Parallel()

		tc := file.TargetConfig("https://blog.example.org/feed")
		if tc.Headers["X-Tenant"] != "blog" {
			t.Errorf("got %q", tc.Headers["X-Tenant"])
		}
		if tc.Timeout != time.Minute {
			t.Errorf("zero timeout should fall back to default, got %v", tc.Timeout)
		}
	})

	t.Run("merging does not modify defaults", func(t *testing.T) {
		t.Parallel()

		_ = file.TargetConfig("shop.example.org")
		if file.Defaults.Headers["X-Tenant"] != "default" {
			t.Error("defaults were modified")
		}
	})
}

// TestConfigHeadersFor tests the combined request headers for a target.
func TestConfigHeadersFor(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Headers["Authorization"] = "Bearer global"
	cfg.File = &File{
		Targets: map[string]TargetConfig{
			"shop.example.org": {Headers: map[string]string{"Authorization": "Bearer shop"}},
		},
	}

	if got := cfg.HeadersFor("https://shop.example.org")["Authorization"]; got != "Bearer shop" {
		t.Errorf("expected target override, got %q", got)
	}
	if got := cfg.HeadersFor("https://other.example.org")["Authorization"]; got != "Bearer global" {
		t.Errorf("expected global header, got %q", got)
	}
	if cfg.TimeoutFor("https://shop.example.org") != DefaultTimeout {
		t.Error("expected global timeout when target has none")
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.sitescan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".sitescan")
		content := `endpoint: "https://scanner.internal/api/v1/analyze_with_ollama"
timeout: 90s
proxy: "127.0.0.1:9050"
userAgent: "audit-bot"
headers:
  X-Api-Key: "secret"
defaults:
  timeout: 2m
targets:
  shop.example.org:
    timeout: 5m
    headers:
      X-Tenant: "shop"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Endpoint != "https://scanner.internal/api/v1/analyze_with_ollama" {
			t.Errorf("unexpected endpoint %q", cfg.Endpoint)
		}
		if cfg.Timeout != 90*time.Second {
			t.Errorf("expected timeout 90s, got %v", cfg.Timeout)
		}
		if cfg.Proxy != "127.0.0.1:9050" {
			t.Errorf("unexpected proxy %q", cfg.Proxy)
		}
		if cfg.Headers["X-Api-Key"] != "secret" {
			t.Error("expected X-Api-Key header")
		}
		if cfg.Defaults.Timeout != 2*time.Minute {
			t.Errorf("expected default timeout 2m, got %v", cfg.Defaults.Timeout)
		}
		target, ok := cfg.Targets["shop.example.org"]
		if !ok {
			t.Fatal("expected shop.example.org in targets")
		}
		if target.Timeout != 5*time.Minute || target.Headers["X-Tenant"] != "shop" {
			t.Errorf("unexpected target config %+v", target)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".sitescan")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Targets map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".sitescan")
		if err := os.WriteFile(configPath, []byte("endpoint: http://localhost:5002/x\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Targets == nil {
			t.Error("expected Targets map to be initialized")
		}
	})
}

// TestFindConfigFile tests the config file search.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/custom.yaml"); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestXDGConfigFile tests the XDG config location.
func TestXDGConfigFile(t *testing.T) {
	t.Parallel()

	path := XDGConfigFile()
	if !strings.HasSuffix(path, filepath.Join("sitescan", "config.yaml")) {
		t.Errorf("unexpected XDG config file %q", path)
	}
	if filepath.Dir(path) != XDGConfigDir() {
		t.Errorf("config file %q is not inside %q", path, XDGConfigDir())
	}
}
