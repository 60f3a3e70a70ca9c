package analysis

import (
	"strings"
	"unicode"
)

const MaxCandidateTerms = 10

var termsMarkers = []string{"**Legal Terms Found:**", "Legal Terms Found:"}

// ExtractTerms returns the bulleted entries of the "Legal Terms Found" section,
// lower-cased, in order, capped at MaxCandidateTerms. A missing section yields
// an empty slice.
func ExtractTerms(summary string) []string {
	section, ok := termsSection(summary)
	if !ok {
		return []string{}
	}
	terms := make([]string, 0, MaxCandidateTerms)
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if endsSection(line) {
			break
		}
		body, ok := cutBullet(line)
		if !ok {
			continue
		}
		term := leadingWords(body)
		if term == "" {
			continue
		}
		terms = append(terms, term)
		if len(terms) == MaxCandidateTerms {
			break
		}
	}
	return terms
}

func termsSection(summary string) (string, bool) {
	for _, marker := range termsMarkers {
		if _, after, ok := strings.Cut(summary, marker); ok {
			return after, true
		}
	}
	return "", false
}

// endsSection reports a markdown heading or a bold label such as "**Notes:**".
func endsSection(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	return strings.HasPrefix(line, "**") && strings.HasSuffix(line, ":**")
}

func cutBullet(line string) (string, bool) {
	for _, glyph := range []string{"-", "*", "•"} {
		if rest, ok := strings.CutPrefix(line, glyph); ok {
			return rest, true
		}
	}
	return "", false
}

func leadingWords(body string) string {
	body = strings.TrimLeft(body, " \t*_`")
	end := 0
	for i, r := range body {
		if !(unicode.IsLetter(r) || r == ' ' || r == '\t') {
			break
		}
		end = i + len(string(r))
	}
	return strings.ToLower(strings.TrimSpace(body[:end]))
}
