package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kmd/mea/observe"
	"github.com/kmd/mea/secret"
)

// Check types understood by the checks package.
const (
	TypeHTTP     = "http"
	TypeTCP      = "tcp"
	TypePostgres = "postgres"
	TypeMemory   = "memory"
)

var validTypes = []string{TypeHTTP, TypeTCP, TypePostgres, TypeMemory}

// Config is the root application configuration.
type Config struct {
	Application   string              `yaml:"application"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Executor      ExecutorConfig      `yaml:"executor"`
	Observability ObservabilityConfig `yaml:"observability"`
	Checks        []Check             `yaml:"checks"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds the log level and the fields every record is
// enriched with.
type LoggingConfig struct {
	Level                 string `yaml:"level"`
	SlotName              string `yaml:"slot_name"`
	EnvironmentInstanceID string `yaml:"environment_instance_id"`
}

// ExecutorConfig holds health check execution settings.
type ExecutorConfig struct {
	DefaultTimeout Duration `yaml:"default_timeout"`
	Parallel       bool     `yaml:"parallel"`
	MaxConcurrency int      `yaml:"max_concurrency"`
}

// ObservabilityConfig selects telemetry exporters.
type ObservabilityConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// TracingConfig selects the trace exporter. "none" disables tracing.
type TracingConfig struct {
	Exporter  string  `yaml:"exporter"`
	SamplePct float64 `yaml:"sample_pct"`
}

// MetricsConfig selects the metrics exporter. "none" disables metrics.
type MetricsConfig struct {
	Exporter string `yaml:"exporter"`
}

// Check describes one dependency check.
type Check struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Target  string   `yaml:"target"`
	Tags    []string `yaml:"tags"`
	Timeout Duration `yaml:"timeout"`

	// http
	ExpectedStatus int               `yaml:"expected_status"`
	Headers        map[string]string `yaml:"headers"`

	// memory
	WarningThreshold  float64 `yaml:"warning_threshold"`
	CriticalThreshold float64 `yaml:"critical_threshold"`
	MaxAllocMB        uint64  `yaml:"max_alloc_mb"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Application: "mea",
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     Duration{5 * time.Second},
			WriteTimeout:    Duration{30 * time.Second},
			ShutdownTimeout: Duration{15 * time.Second},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Executor: ExecutorConfig{
			DefaultTimeout: Duration{10 * time.Second},
			Parallel:       true,
		},
		Observability: ObservabilityConfig{
			Tracing: TracingConfig{Exporter: "none", SamplePct: 1.0},
			Metrics: MetricsConfig{Exporter: "prometheus"},
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and KMD_MOMENTUM_MEA_ environment variables, then
// validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		defer f.Close()
		if err := cfg.Decode(f); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillHost()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode merges YAML from r into c. ${VAR} references are expanded first and
// unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	expanded, err := secret.ExpandEnvStrict(string(raw))
	if err != nil {
		return fmt.Errorf("expanding config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func (c *Config) fillHost() {
	if c.Logging.EnvironmentInstanceID != "" {
		return
	}
	if host, err := os.Hostname(); err == nil {
		c.Logging.EnvironmentInstanceID = host
	}
}

// Validate reports the first problem found in c.
func (c *Config) Validate() error {
	if c.Application == "" {
		return fmt.Errorf("%w: application is required", ErrInvalid)
	}
	if c.Server.Address == "" {
		return fmt.Errorf("%w: server address is required", ErrInvalid)
	}
	for name, d := range map[string]Duration{
		"server read_timeout":      c.Server.ReadTimeout,
		"server write_timeout":     c.Server.WriteTimeout,
		"server shutdown_timeout":  c.Server.ShutdownTimeout,
		"executor default_timeout": c.Executor.DefaultTimeout,
	} {
		if d.Duration <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, name, d)
		}
	}
	if !slices.Contains(observe.ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Logging.Level)
	}
	if c.Executor.MaxConcurrency < 0 {
		return fmt.Errorf("%w: executor max_concurrency must not be negative", ErrInvalid)
	}
	if !slices.Contains(observe.ValidTracingExporters, c.Observability.Tracing.Exporter) {
		return fmt.Errorf("%w: unknown tracing exporter %q", ErrInvalid, c.Observability.Tracing.Exporter)
	}
	if p := c.Observability.Tracing.SamplePct; p < observe.MinSamplePct || p > observe.MaxSamplePct {
		return fmt.Errorf("%w: tracing sample_pct must be between 0 and 1, got %v", ErrInvalid, p)
	}
	if !slices.Contains(observe.ValidMetricsExporters, c.Observability.Metrics.Exporter) {
		return fmt.Errorf("%w: unknown metrics exporter %q", ErrInvalid, c.Observability.Metrics.Exporter)
	}

	// A check still running at the write deadline drops the connection.
	write := c.Server.WriteTimeout.Duration
	if c.Executor.DefaultTimeout.Duration >= write {
		return fmt.Errorf("%w: executor default_timeout %s must be below server write_timeout %s",
			ErrInvalid, c.Executor.DefaultTimeout, c.Server.WriteTimeout)
	}

	names := make(map[string]bool, len(c.Checks))
	for i, chk := range c.Checks {
		if err := chk.validate(); err != nil {
			return fmt.Errorf("%w: check[%d]: %w", ErrInvalid, i, err)
		}
		if chk.Timeout.Duration >= write {
			return fmt.Errorf("%w: check[%d]: %q: timeout %s must be below server write_timeout %s",
				ErrInvalid, i, chk.Name, chk.Timeout, c.Server.WriteTimeout)
		}
		if names[chk.Name] {
			return fmt.Errorf("%w: duplicate check name %q", ErrInvalid, chk.Name)
		}
		names[chk.Name] = true
	}
	return nil
}

func (c Check) validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if !slices.Contains(validTypes, c.Type) {
		return fmt.Errorf("%q: invalid type %q (must be http, tcp, postgres, or memory)", c.Name, c.Type)
	}
	if c.Type != TypeMemory && c.Target == "" {
		return fmt.Errorf("%q: target is required", c.Name)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("%q: timeout must not be negative", c.Name)
	}
	if c.ExpectedStatus != 0 && (c.ExpectedStatus < 100 || c.ExpectedStatus > 599) {
		return fmt.Errorf("%q: invalid expected_status %d", c.Name, c.ExpectedStatus)
	}
	return nil
}

// TracingEnabled reports whether a trace exporter is selected.
func (c *Config) TracingEnabled() bool {
	e := c.Observability.Tracing.Exporter
	return e != "" && e != "none"
}

// MetricsEnabled reports whether a metrics exporter is selected.
func (c *Config) MetricsEnabled() bool {
	e := c.Observability.Metrics.Exporter
	return e != "" && e != "none"
}

// ObserveConfig converts c into the observer configuration.
func (c *Config) ObserveConfig(version string) observe.Config {
	return observe.Config{
		ServiceName: c.Application,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingEnabled(),
			Exporter:  c.Observability.Tracing.Exporter,
			SamplePct: c.Observability.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsEnabled(),
			Exporter: c.Observability.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Logging.Level,
			Attributes: []observe.Field{
				observe.F("application", c.Application),
				observe.F("slot_name", c.Logging.SlotName),
				observe.F("environment_instance_id", c.Logging.EnvironmentInstanceID),
			},
		},
	}
}
