package llm

import (
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// Sentinel failure classes for the call layer. Callers match with
// errors.Is; the underlying transport error stays wrapped for diagnostics.
var (
	// ErrInvalidRequest marks a client-side failure that is certain to
	// repeat (malformed parameters, bad auth). Never retried.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUpstreamUnavailable marks a transient network/server failure
	// that survived the retry ceiling.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

type errorClass int

const (
	classUnknown errorClass = iota
	classInvalid
	classTransient
)

// classify decides retry vs immediate failure for a transport error.
// Only an explicitly enumerated set of conditions counts as transient
// so that programming errors are never silently retried.
func classify(err error) errorClass {
	if err == nil {
		return classUnknown
	}

	var oaiErr *openai.Error
	if errors.As(err, &oaiErr) {
		return classifyStatus(oaiErr.StatusCode)
	}

	var antErr *anthropic.Error
	if errors.As(err, &antErr) {
		return classifyStatus(antErr.StatusCode)
	}

	msg := strings.ToLower(err.Error())

	// Rate limits
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") {
		return classTransient
	}

	// Server errors
	for _, code := range []string{"500", "502", "503", "504"} {
		if strings.Contains(msg, code) {
			return classTransient
		}
	}

	// Network errors
	for _, needle := range []string{"timeout", "timed out", "connection reset", "connection refused", "econnreset", "etimedout", "temporarily unavailable", "eof"} {
		if strings.Contains(msg, needle) {
			return classTransient
		}
	}

	// Auth / malformed request
	for _, needle := range []string{"400", "401", "403", "404", "422", "api key", "invalid"} {
		if strings.Contains(msg, needle) {
			return classInvalid
		}
	}

	return classUnknown
}

func classifyStatus(status int) errorClass {
	switch {
	case status == 408 || status == 429:
		return classTransient
	case status >= 500:
		return classTransient
	case status >= 400:
		return classInvalid
	default:
		return classUnknown
	}
}
