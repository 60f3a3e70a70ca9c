package safety

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MsgTooShort          = "Input too short. Please provide substantial text to analyze."
	MsgSecurityViolation = "Security violation detected. This request cannot be processed."
)

// Validator gates input before any external call is made. The blocklist is a
// best-effort filter and does not guarantee prevention of prompt manipulation.
type Validator struct {
	minChars int
	maxChars int
	patterns []string
}

func NewValidator(minChars, maxChars int, patterns []string) *Validator {
	if patterns == nil {
		patterns = DefaultInjectionPatterns
	}
	return &Validator{minChars: minChars, maxChars: maxChars, patterns: normalizePatterns(patterns)}
}

// Validate returns (true, "") for acceptable input, otherwise false with a
// caller-safe reason. Length is checked before content.
func (v *Validator) Validate(text string) (bool, string) {
	n := utf8.RuneCountInString(text)
	if n > v.maxChars {
		return false, fmt.Sprintf("Input too long. Maximum %d characters allowed.", v.maxChars)
	}
	if n < v.minChars {
		return false, MsgTooShort
	}
	if v.matchPattern(text) != "" {
		return false, MsgSecurityViolation
	}
	return true, ""
}

func (v *Validator) matchPattern(text string) string {
	low := strings.ToLower(text)
	for _, p := range v.patterns {
		if strings.Contains(low, p) {
			return p
		}
	}
	return ""
}

func (v *Validator) PatternCount() int {
	return len(v.patterns)
}
