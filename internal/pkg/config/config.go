// Package config reads service settings from a YAML file with environment
// overrides.
package config

import "time"

// Config is the read-only settings view handed to the app and the modules.
// Missing keys read as zero values.
type Config interface {
	GetBool(key string) bool
	GetInt(key string) int
	GetFloat64(key string) float64
	GetString(key string) string

	// GetSecond reads an integer count of seconds.
	GetSecond(key string) time.Duration

	// GetArray reads a YAML list or a comma separated string.
	GetArray(key string) []string
}
