package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Reason details why a provider call failed. All reasons are one error kind;
// the reason is diagnostic detail for logs and metrics, not a retry contract.
type Reason string

const (
	ReasonAuth          Reason = "auth"
	ReasonRateLimit     Reason = "rate_limit"
	ReasonTransient     Reason = "transient"
	ReasonBadRequest    Reason = "bad_request"
	ReasonEmptyResponse Reason = "empty_response"
	ReasonUnknown       Reason = "unknown"
)

// ProviderError is the single error kind surfaced for any provider failure:
// network, authentication, rate limiting, or malformed responses.
type ProviderError struct {
	Err        error
	Provider   string
	Message    string
	Reason     Reason
	StatusCode int
}

// Error implements the error interface. The underlying error is always part
// of the message: callers surface Error() as the task's error_message, so the
// original failure text must survive classification.
func (e *ProviderError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("provider call failed (%s, %s): %s: %v", e.Provider, e.Reason, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("provider call failed (%s, %s): %s", e.Provider, e.Reason, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("provider call failed (%s, %s): %v", e.Provider, e.Reason, e.Err)
	default:
		return fmt.Sprintf("provider call failed (%s, %s): status %d", e.Provider, e.Reason, e.StatusCode)
	}
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a classified provider error with a message.
func NewProviderError(provider string, reason Reason, message string) *ProviderError {
	return &ProviderError{Provider: provider, Reason: reason, Message: message}
}

// AsProviderError extracts a *ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// Classify maps an arbitrary SDK or transport error to a ProviderError.
// Provider SDKs embed HTTP status codes in error strings, so status extraction
// falls back to text sniffing.
func Classify(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Reason: ReasonTransient, Err: err, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Provider: provider, Reason: ReasonTransient, Err: err, Message: "request canceled"}
	}

	errStr := err.Error()
	statusCode := extractStatusCode(errStr)

	switch statusCode {
	case 401:
		return &ProviderError{Provider: provider, Reason: ReasonAuth, StatusCode: statusCode, Err: err, Message: "authentication failed - check API key"}
	case 403:
		return &ProviderError{Provider: provider, Reason: ReasonAuth, StatusCode: statusCode, Err: err, Message: "permission denied - check API access"}
	case 429:
		return &ProviderError{Provider: provider, Reason: ReasonRateLimit, StatusCode: statusCode, Err: err, Message: "rate limit exceeded"}
	case 400:
		return &ProviderError{Provider: provider, Reason: ReasonBadRequest, StatusCode: statusCode, Err: err, Message: "bad request - check prompt and parameters"}
	case 500, 502, 503, 504:
		return &ProviderError{Provider: provider, Reason: ReasonTransient, StatusCode: statusCode, Err: err, Message: "server error"}
	}

	lower := strings.ToLower(errStr)
	switch {
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "connection"),
		strings.Contains(lower, "network"),
		strings.Contains(lower, "eof"),
		strings.Contains(lower, "reset"):
		return &ProviderError{Provider: provider, Reason: ReasonTransient, Err: err, Message: "network or connection error"}
	case strings.Contains(lower, "rate"),
		strings.Contains(lower, "quota"):
		return &ProviderError{Provider: provider, Reason: ReasonRateLimit, Err: err, Message: "rate limiting detected"}
	case strings.Contains(lower, "auth"),
		strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "api key"):
		return &ProviderError{Provider: provider, Reason: ReasonAuth, Err: err, Message: "authentication error"}
	case strings.Contains(lower, "invalid"),
		strings.Contains(lower, "malformed"),
		strings.Contains(lower, "too large"):
		return &ProviderError{Provider: provider, Reason: ReasonBadRequest, Err: err, Message: "prompt or request error"}
	}

	return &ProviderError{Provider: provider, Reason: ReasonUnknown, Err: err, Message: "unclassified error"}
}

// extractStatusCode attempts to pull an HTTP status code out of an error string.
func extractStatusCode(errStr string) int {
	patterns := []string{
		"status code: ",
		"status: ",
		"http ",
		"code ",
	}

	lower := strings.ToLower(errStr)
	codes := []int{400, 401, 403, 429, 500, 502, 503, 504}

	for _, pattern := range patterns {
		idx := strings.Index(lower, pattern)
		if idx == -1 {
			continue
		}
		rest := lower[idx+len(pattern):]
		for _, code := range codes {
			if strings.HasPrefix(rest, fmt.Sprintf("%d", code)) {
				return code
			}
		}
	}
	return 0
}
