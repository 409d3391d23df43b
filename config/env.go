package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KMD_MOMENTUM_MEA_"

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields of c from EnvPrefix-prefixed variables. Empty
// values are ignored; unparsable values are an error.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	e := envReader{lookup: lookup}

	e.str("APPLICATION", &c.Application)
	e.str("SERVER_ADDRESS", &c.Server.Address)
	e.duration("SERVER_READ_TIMEOUT", &c.Server.ReadTimeout)
	e.duration("SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout)
	e.duration("SERVER_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)

	e.str("LOG_LEVEL", &c.Logging.Level)
	e.str("SLOT_NAME", &c.Logging.SlotName)
	e.str("ENVIRONMENT_INSTANCE_ID", &c.Logging.EnvironmentInstanceID)

	e.duration("EXECUTOR_DEFAULT_TIMEOUT", &c.Executor.DefaultTimeout)
	e.boolean("EXECUTOR_PARALLEL", &c.Executor.Parallel)
	e.integer("EXECUTOR_MAX_CONCURRENCY", &c.Executor.MaxConcurrency)

	e.str("TRACING_EXPORTER", &c.Observability.Tracing.Exporter)
	e.float("TRACING_SAMPLE_PCT", &c.Observability.Tracing.SamplePct)
	e.str("METRICS_EXPORTER", &c.Observability.Metrics.Exporter)

	return e.err
}

// envReader keeps the first parse error so overrides read as a flat list.
type envReader struct {
	lookup LookupFunc
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(key, v string, err error) {
	e.err = fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidEnv, EnvPrefix, key, v, err)
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) duration(key string, dst *Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	dst.Duration = d
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = f
}
