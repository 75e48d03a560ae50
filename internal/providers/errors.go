package providers

import (
	"errors"
	"fmt"
)

// ErrMissingCredential marks configuration errors caused by an absent API
// key or base URL. Matched with errors.Is.
var ErrMissingCredential = errors.New("missing credential")

// ConfigError indicates the provider cannot be called because required
// configuration is absent. No network activity is attempted.
type ConfigError struct {
	Provider string
	Missing  string // name of the missing credential or setting
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s is missing; add it in settings", e.Provider, e.Missing)
}

func (e *ConfigError) Unwrap() error { return ErrMissingCredential }

// NetworkError indicates the transport failed before a response was
// received. Retryable by re-running.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError indicates the provider was reachable but answered with a
// non-success status.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: request failed with status %d: %s", e.Provider, e.Status, e.Body)
}
