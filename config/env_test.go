package config

import (
	"errors"
	"testing"
	"time"
)

func lookupMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupMap(map[string]string{
		"KMD_MOMENTUM_MEA_SERVER_ADDRESS":           ":7070",
		"KMD_MOMENTUM_MEA_SERVER_SHUTDOWN_TIMEOUT":  "3s",
		"KMD_MOMENTUM_MEA_LOG_LEVEL":                "warn",
		"KMD_MOMENTUM_MEA_SLOT_NAME":                "staging",
		"KMD_MOMENTUM_MEA_ENVIRONMENT_INSTANCE_ID":  "vm-7",
		"KMD_MOMENTUM_MEA_EXECUTOR_DEFAULT_TIMEOUT": "1500ms",
		"KMD_MOMENTUM_MEA_EXECUTOR_PARALLEL":        "false",
		"KMD_MOMENTUM_MEA_EXECUTOR_MAX_CONCURRENCY": "2",
		"KMD_MOMENTUM_MEA_TRACING_EXPORTER":         "otlp",
		"KMD_MOMENTUM_MEA_TRACING_SAMPLE_PCT":       "0.25",
		"KMD_MOMENTUM_MEA_METRICS_EXPORTER":         "none",
		"LOG_LEVEL":                                 "debug",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Server.Address != ":7070" || cfg.Server.ShutdownTimeout.Duration != 3*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, unprefixed variable must be ignored", cfg.Logging.Level)
	}
	if cfg.Logging.SlotName != "staging" || cfg.Logging.EnvironmentInstanceID != "vm-7" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Executor.DefaultTimeout.Duration != 1500*time.Millisecond || cfg.Executor.Parallel || cfg.Executor.MaxConcurrency != 2 {
		t.Errorf("executor = %+v", cfg.Executor)
	}
	if cfg.Observability.Tracing.Exporter != "otlp" || cfg.Observability.Tracing.SamplePct != 0.25 {
		t.Errorf("tracing = %+v", cfg.Observability.Tracing)
	}
	if cfg.MetricsEnabled() {
		t.Error("metrics should be disabled")
	}
}

func TestApplyEnv_EmptyIgnored(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyEnv(lookupMap(map[string]string{"KMD_MOMENTUM_MEA_SERVER_ADDRESS": ""})); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("address = %q, want default", cfg.Server.Address)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"KMD_MOMENTUM_MEA_SERVER_READ_TIMEOUT":      "fast",
		"KMD_MOMENTUM_MEA_EXECUTOR_PARALLEL":        "maybe",
		"KMD_MOMENTUM_MEA_EXECUTOR_MAX_CONCURRENCY": "many",
		"KMD_MOMENTUM_MEA_TRACING_SAMPLE_PCT":       "half",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			err := Default().ApplyEnv(lookupMap(map[string]string{key: value}))
			if !errors.Is(err, ErrInvalidEnv) {
				t.Fatalf("err = %v, want ErrInvalidEnv", err)
			}
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("KMD_MOMENTUM_MEA_LOG_LEVEL", "error")
	path := writeTemp(t, "logging:\n  level: debug\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("level = %q, want error", cfg.Logging.Level)
	}
}
