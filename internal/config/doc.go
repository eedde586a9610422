// Package config provides configuration structures and utilities for sitescope.
// It covers request timeouts and limits, per-host request settings loaded
// from a YAML file, assistant credentials read from the environment, and
// report output preferences.
package config
