// Package config provides application configuration loaded from environment
// variables (RETAILPULSE_ prefix) merged with an optional config.yaml file,
// and centralized path resolution for the six source CSV tables.
package config
