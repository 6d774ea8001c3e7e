// Package config holds the serve-time configuration for the gateway.
//
// Configuration is resolved in two steps: environment variables provide the
// baseline, and command-line flags override individual values when they were
// explicitly set. The cmd package owns flag registration; this package owns
// the environment parsing, defaulting and validation.
package config
