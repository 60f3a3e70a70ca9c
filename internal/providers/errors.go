package providers

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

type ErrorType string

const (
	ErrorQuota     ErrorType = "quota"
	ErrorRate      ErrorType = "rate"
	ErrorTransient ErrorType = "transient"
	ErrorPermanent ErrorType = "permanent"
	ErrorContext   ErrorType = "context"
	ErrorTimeout   ErrorType = "timeout"
)

var (
	ErrMissingKey      = errors.New("provider api key missing")
	ErrNoProviders     = errors.New("no llm providers available")
	ErrEmptyCompletion = errors.New("provider returned no candidates")
)

func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	e := strings.ToLower(err.Error())
	switch {
	case quotaRe.MatchString(e):
		return ErrorQuota
	case rateRe.MatchString(e):
		return ErrorRate
	case contextRe.MatchString(e):
		return ErrorContext
	case transientRe.MatchString(e):
		return ErrorTransient
	default:
		return ErrorPermanent
	}
}

// Provider errors are wrapped as "<name> generate: ...", so every matcher
// works on whole words or status codes rather than bare substrings.
var (
	quotaRe     = regexp.MustCompile(`\bquota\b|insufficient_quota|resource_exhausted|\bcredits?\b|\bbilling\b`)
	rateRe      = regexp.MustCompile(`\brate[ _-]?limit(ed|s)?\b|\b429\b|too many requests`)
	contextRe   = regexp.MustCompile(`context[ _-]?(length|window)|context_length_exceeded|maximum context|too long`)
	transientRe = regexp.MustCompile(`timeout|timed out|temporarily|unavailable|\b50[0234]\b|connection (reset|refused)|\beof\b|overloaded`)
)

// cooldownWorthy reports whether a provider should be skipped for a while.
func cooldownWorthy(t ErrorType) bool {
	return t == ErrorQuota || t == ErrorRate
}
