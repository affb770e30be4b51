// Package config loads and validates the TOML configuration controlling
// conversion defaults and log output.
package config
