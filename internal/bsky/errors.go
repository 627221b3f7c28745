package bsky

import "fmt"

// ConfigurationError reports absent publishing credentials. It aborts only
// the publish step; the run itself still succeeds.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing Bluesky credentials: %s", e.Missing)
}

// PublishError wraps any failure while posting. Always demoted to a warning
// by the caller.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("posting to Bluesky: %v", e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
