package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies provider failures.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindAuth        Kind = "auth"
	KindRateLimit   Kind = "rate_limit"
	KindUnavailable Kind = "unavailable"
	KindUnknown     Kind = "unknown"
)

// ProviderError reports a failed completion call.
type ProviderError struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("llm parse error")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("llm validation error")
)

// ParseError reports model output with no decodable JSON value, or one that
// does not satisfy the expected shape.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse: " + e.Reason
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParse, e.Err}
	}
	return []error{ErrParse}
}

// ValidationError reports a single malformed field or element.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// KindForStatus maps an HTTP status code to a failure kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// KindOf classifies any error returned by a provider call.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "client.timeout") || strings.Contains(msg, "deadline exceeded"):
		return KindTimeout
	case strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof"):
		return KindUnavailable
	}
	return KindUnknown
}

// Wrap converts err into a *ProviderError for provider, classifying it with
// KindOf. A nil err stays nil.
func Wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Kind: KindOf(err), Provider: provider, Err: err}
}

// Label names the failure in err for logs and metrics: "parse" or
// "validation" for unusable model output, otherwise its provider Kind.
func Label(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return string(KindOf(err))
	}
}

// IsProviderFailure reports whether err came from the provider call rather
// than from decoding its output.
func IsProviderFailure(err error) bool {
	return err != nil && !errors.Is(err, ErrParse) && !errors.Is(err, ErrValidation)
}
