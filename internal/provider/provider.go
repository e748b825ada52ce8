package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider is the outbound translation boundary. One call sends a numbered
// list of source strings in a single prompt and expects a matching numbered
// reply. Implementations return one slot per input text; a slot may be empty
// when the corresponding reply line could not be parsed; the caller decides
// how to degrade.
//
// The API key is passed per call because credentials rotate above this layer.
type Provider interface {
	TranslateBatch(ctx context.Context, apiKey string, texts []string, targetLang string) ([]string, error)
	Model() string
}

// Error classifies a provider failure for the dispatch layer.
type Error struct {
	Message    string
	Cause      error
	Retryable  bool          // transient (network/5xx): retry same credential after a delay
	Throttled  bool          // rate limit or quota: force the credential into cooldown
	RetryAfter time.Duration // provider-supplied cooldown hint, zero if absent
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsThrottled reports whether err carries a provider throttle signal.
func IsThrottled(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Throttled
}

// IsRetryable reports whether err is worth retrying on the same credential.
func IsRetryable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Retryable && !pe.Throttled
}

// RetryAfter returns the provider-supplied cooldown hint, zero if absent.
func RetryAfter(err error) time.Duration {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.RetryAfter
	}
	return 0
}
