// Package secret resolves secret references in configuration values.
//
// Check targets such as database DSNs or HTTP authorization headers are
// usually kept out of the config file. A value may instead name an
// environment variable with ${VAR} (see ExpandEnvStrict) or point at a
// provider with a "secretref:" prefix:
//   - Full value:  secretref:file:/run/secrets/postgres_dsn
//   - Inline use:  Bearer secretref:env:PROBE_TOKEN
//
// Built-in providers read from the environment (EnvProvider) and from files
// such as mounted container secrets (FileProvider).
package secret
