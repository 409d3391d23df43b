// Package config loads the service configuration.
//
// Values are layered: Default, then an optional YAML file (Load, Decode),
// then environment variables prefixed with KMD_MOMENTUM_MEA_ (ApplyEnv).
// Command-line flags are applied on top by the caller.
//
//	server:
//	  address: ":8080"
//	logging:
//	  level: info
//	  slot_name: blue
//	checks:
//	  - name: database
//	    type: postgres
//	    target: secretref:file:/run/secrets/postgres_dsn
//	    tags: [ready]
//	    timeout: 2s
package config
