// Package config provides configuration types, defaults, and persistence for mxview.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/mxview/internal/log"
)

// Config holds all mxview configuration.
type Config struct {
	Primary       PrimaryConfig       `mapstructure:"primary" yaml:"primary"`
	Providers     ProvidersConfig     `mapstructure:"providers" yaml:"providers"`
	Server        ServerConfig        `mapstructure:"server" yaml:"server"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
	Tracing       TracingConfig       `mapstructure:"tracing" yaml:"tracing"`
	Filter        FilterConfig        `mapstructure:"filter" yaml:"filter"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`

	// Flags override feature flag defaults by name.
	Flags map[string]bool `mapstructure:"flags" yaml:"flags"`
}

// PrimaryConfig configures the registry that owns the default domain.
type PrimaryConfig struct {
	// Domain is the primary registry's default domain.
	Domain string `mapstructure:"domain" yaml:"domain"`

	// DelegateName is the name the server delegate is registered under.
	// Notifications carry it as their source.
	DelegateName string `mapstructure:"delegate_name" yaml:"delegate_name"`
}

// ProvidersConfig lists the virtual providers mounted beside the primary.
type ProvidersConfig struct {
	Alphabet AlphabetConfig `mapstructure:"alphabet" yaml:"alphabet"`
	Files    FilesConfig    `mapstructure:"files" yaml:"files"`
}

// AlphabetConfig configures the 26-letter demonstration provider.
type AlphabetConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Domain  string `mapstructure:"domain" yaml:"domain"`
}

// FilesConfig configures the directory tree provider.
type FilesConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Domain  string `mapstructure:"domain" yaml:"domain"`

	// Root is the directory exposed. Empty means the working directory.
	Root string `mapstructure:"root" yaml:"root"`

	MaxDepth        int           `mapstructure:"max_depth" yaml:"max_depth"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`
	ResolveTimeout  time.Duration `mapstructure:"resolve_timeout" yaml:"resolve_timeout"`
	Debounce        time.Duration `mapstructure:"debounce" yaml:"debounce"`

	// Watch enables fsnotify driven rescans in addition to the interval.
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LogConfig configures the category logger.
type LogConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the log file. Empty logs to stderr.
	Path string `mapstructure:"path" yaml:"path"`

	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter" yaml:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/mxview/traces/traces.jsonl
	FilePath string `mapstructure:"file_path" yaml:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`

	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

// FilterConfig configures the filter expression compiler.
type FilterConfig struct {
	// CacheTTL is how long parsed expressions are kept. Zero disables the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// NotificationsConfig configures notification fan-out.
type NotificationsConfig struct {
	// BufferSize is the per-subscriber channel size.
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size"`
}

// DefaultTracesFilePath returns ~/.config/mxview/traces/traces.jsonl, or an
// empty string if the home dir is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mxview", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Primary: PrimaryConfig{
			Domain:       "mxview",
			DelegateName: "mxview.delegate:type=ServerDelegate",
		},
		Providers: ProvidersConfig{
			Alphabet: AlphabetConfig{
				Enabled: true,
				Domain:  "alphabet",
			},
			Files: FilesConfig{
				Enabled:         false,
				Domain:          "files",
				Root:            "",
				MaxDepth:        3,
				RefreshInterval: 30 * time.Second,
				ResolveTimeout:  time.Second,
				Debounce:        200 * time.Millisecond,
				Watch:           true,
			},
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:7070",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Enabled: true,
			Path:    "",
			Level:   "info",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
			ServiceName:  "mxview",
		},
		Filter: FilterConfig{
			CacheTTL: 10 * time.Minute,
		},
		Notifications: NotificationsConfig{
			BufferSize: 100,
		},
	}
}

// Validate checks the whole configuration and returns every problem found.
func (c Config) Validate() error {
	return errors.Join(
		ValidatePrimary(c.Primary),
		ValidateProviders(c.Primary, c.Providers),
		ValidateServer(c.Server),
		ValidateLog(c.Log),
		ValidateTracing(c.Tracing),
		ValidateFilter(c.Filter),
		ValidateNotifications(c.Notifications),
	)
}

// ValidatePrimary checks the primary section.
func ValidatePrimary(p PrimaryConfig) error {
	if p.Domain == "" {
		return fmt.Errorf("primary.domain is required")
	}
	return nil
}

// ValidateProviders checks that enabled providers have usable settings and
// that every mounted domain is distinct from the others and from the primary.
func ValidateProviders(primary PrimaryConfig, p ProvidersConfig) error {
	var errs []error
	seen := map[string]string{primary.Domain: "primary.domain"}

	claim := func(key, domain string) {
		if domain == "" {
			errs = append(errs, fmt.Errorf("%s is required when the provider is enabled", key))
			return
		}
		if owner, ok := seen[domain]; ok {
			errs = append(errs, fmt.Errorf("%s %q conflicts with %s", key, domain, owner))
			return
		}
		seen[domain] = key
	}

	if p.Alphabet.Enabled {
		claim("providers.alphabet.domain", p.Alphabet.Domain)
	}

	if f := p.Files; f.Enabled {
		claim("providers.files.domain", f.Domain)
		if f.MaxDepth < 1 {
			errs = append(errs, fmt.Errorf("providers.files.max_depth must be at least 1, got %d", f.MaxDepth))
		}
		if f.RefreshInterval <= 0 {
			errs = append(errs, fmt.Errorf("providers.files.refresh_interval must be positive, got %s", f.RefreshInterval))
		}
		if f.ResolveTimeout <= 0 {
			errs = append(errs, fmt.Errorf("providers.files.resolve_timeout must be positive, got %s", f.ResolveTimeout))
		}
		if f.Debounce < 0 {
			errs = append(errs, fmt.Errorf("providers.files.debounce must not be negative, got %s", f.Debounce))
		}
	}

	return errors.Join(errs...)
}

// ValidateServer checks the server section.
func ValidateServer(s ServerConfig) error {
	if s.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", s.ShutdownTimeout)
	}
	return nil
}

// ValidateLog checks the log section.
func ValidateLog(l LogConfig) error {
	if l.Level == "" {
		return nil
	}
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ValidateFilter checks the filter section.
func ValidateFilter(f FilterConfig) error {
	if f.CacheTTL < 0 {
		return fmt.Errorf("filter.cache_ttl must not be negative, got %s", f.CacheTTL)
	}
	return nil
}

// ValidateNotifications checks the notifications section.
func ValidateNotifications(n NotificationsConfig) error {
	if n.BufferSize < 0 {
		return fmt.Errorf("notifications.buffer_size must not be negative, got %d", n.BufferSize)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# mxview configuration

# The primary registry owns the default domain. Real resources are
# registered here; virtual domains below are read-only.
primary:
  domain: mxview
  delegate_name: "mxview.delegate:type=ServerDelegate"

providers:
  # 26 letter resources, alphabet:letter=A .. alphabet:letter=Z
  alphabet:
    enabled: true
    domain: alphabet

  # A directory tree exposed as read-only resources.
  files:
    enabled: false
    domain: files
    # root: /var/log       # Default: working directory
    max_depth: 3
    refresh_interval: 30s
    resolve_timeout: 1s
    debounce: 200ms
    watch: true            # Rescan on filesystem changes

server:
  addr: "127.0.0.1:7070"
  shutdown_timeout: 5s

log:
  enabled: true
  # path: /tmp/mxview.log  # Default: stderr
  level: info              # debug, info, warn, error

# Filter expressions are parsed once and cached.
filter:
  cache_ttl: 10m

notifications:
  buffer_size: 100         # Per-subscriber buffer; slow subscribers drop events

# Feature flags for optional HTTP endpoints.
# flags:
#   event-stream: true         # GET /events
#   remote-registration: false # POST and DELETE /resource
#   metrics: true              # GET /metrics

# Distributed tracing (OpenTelemetry)
# tracing:
#   enabled: true
#   exporter: file         # none, file, stdout, otlp
#   file_path: ~/.config/mxview/traces/traces.jsonl
#   sample_rate: 1.0
#
# Example: Send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	if err := writeAtomic(configPath, []byte(DefaultConfigTemplate())); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return err
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
