package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a failed backend call.
type ErrorCode string

const (
	CodeAuth      ErrorCode = "auth"
	CodeRateLimit ErrorCode = "rate_limit"
	CodeNetwork   ErrorCode = "network"
	CodeNotFound  ErrorCode = "not_found"
	CodeEmpty     ErrorCode = "empty_response"
	CodeUnknown   ErrorCode = "unknown"
)

var errNilDescriptor = errors.New("nil provider descriptor")

// CallError is a classified failure from a generation backend. Callers use
// it to drive failover; it is never surfaced raw to end users.
type CallError struct {
	Provider Name
	Code     ErrorCode
	Err      error
}

// NewCallError wraps err with a provider identity and classification.
func NewCallError(provider Name, code ErrorCode, err error) *CallError {
	return &CallError{Provider: provider, Code: code, Err: err}
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Code, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Code)
}

func (e *CallError) Unwrap() error { return e.Err }

// TranslateCallError classifies a raw backend error by message content. The
// upstream clients expose most failures as plain errors, so string matching
// is the only classification signal available.
func TranslateCallError(provider Name, err error) *CallError {
	if err == nil {
		return nil
	}

	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewCallError(provider, CodeNetwork, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "unauthorized", "invalid api key", "authentication", "permission denied", "401", "403"):
		return NewCallError(provider, CodeAuth, err)
	case containsAny(msg, "rate limit", "too many requests", "quota", "resource exhausted", "overloaded", "429"):
		return NewCallError(provider, CodeRateLimit, err)
	case containsAny(msg, "timeout", "timed out", "connection", "network", "dial", "unavailable", "eof", "503"):
		return NewCallError(provider, CodeNetwork, err)
	case containsAny(msg, "not found", "does not exist", "unknown model", "404"):
		return NewCallError(provider, CodeNotFound, err)
	default:
		return NewCallError(provider, CodeUnknown, err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
