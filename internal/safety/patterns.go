package safety

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultInjectionPatterns is the curated blocklist. Matching is a lower-cased
// substring test, so entries must be lower case.
var DefaultInjectionPatterns = []string{
	// instruction overrides
	"ignore previous instructions",
	"ignore all previous",
	"ignore the above",
	"disregard previous",
	"disregard all previous",
	"forget previous",
	"forget everything",
	"forget all previous",
	"forget your instructions",

	// role manipulation
	"you are now",
	"you are a",
	"act as a",
	"pretend you are",
	"pretend to be",
	"from now on you are",

	// system prompt extraction
	"system prompt",
	"your system prompt",
	"show me your prompt",
	"what is your prompt",
	"tell me your instructions",
	"reveal your instructions",
	"what are your instructions",

	// instruction injection
	"new instructions",
	"new instruction:",
	"updated instructions",
	"override instructions",
	"revised instructions",

	// developer impersonation
	"i am your developer",
	"i'm the developer",
	"as an admin",
	"developer mode",
	"admin mode",

	"jailbreak",
	"disable safety",
	"remove restrictions",
	"ignore safety",

	// context reset
	"start over",
	"reset conversation",
	"clear context",
}

type patternFile struct {
	Mode     string   `yaml:"mode"`
	Patterns []string `yaml:"patterns"`
}

// LoadPatterns returns the blocklist to use. An empty path yields the defaults.
// The file may either replace or extend the default list.
func LoadPatterns(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return normalizePatterns(DefaultInjectionPatterns), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	var pf patternFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(pf.Mode)) {
	case "", "extend":
		merged := make([]string, 0, len(DefaultInjectionPatterns)+len(pf.Patterns))
		merged = append(merged, DefaultInjectionPatterns...)
		merged = append(merged, pf.Patterns...)
		return normalizePatterns(merged), nil
	case "replace":
		if len(pf.Patterns) == 0 {
			return nil, fmt.Errorf("pattern file %s: replace mode with no patterns", path)
		}
		return normalizePatterns(pf.Patterns), nil
	default:
		return nil, fmt.Errorf("pattern file %s: unknown mode %q", path, pf.Mode)
	}
}

func normalizePatterns(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
