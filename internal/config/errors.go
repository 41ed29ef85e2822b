package config

import "fmt"

// ValidationError reports a missing or malformed configuration key.
type ValidationError struct {
	Key    string // dotted key path, e.g. "network.total_agents"
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config key %s: %s", e.Key, e.Reason)
}

func invalid(key, format string, args ...any) *ValidationError {
	return &ValidationError{Key: key, Reason: fmt.Sprintf(format, args...)}
}
