package analysis

import (
	"context"
	"fmt"
	"strings"

	"legaldoc/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MaxDefinitions   = 3
	explainedHeader  = "\n**Legal Terms Explained:**\n"
	definitionBullet = "• "
)

// LookupFunc resolves one term. ok=false means no definition anywhere.
type LookupFunc func(ctx context.Context, term string) (models.TermLookupResult, bool)

// Enhance defines up to MaxDefinitions candidates and appends them to summary.
// Lookups that find nothing are skipped and do not count toward the cap. With
// no definitions the summary is returned unchanged.
func Enhance(ctx context.Context, summary string, candidates []string, lookup LookupFunc) (string, []string) {
	defined := make([]string, 0, MaxDefinitions)
	if len(candidates) == 0 || lookup == nil {
		return summary, defined
	}
	var section strings.Builder
	seen := make(map[string]struct{}, len(candidates))
	for _, term := range candidates {
		if len(defined) >= MaxDefinitions {
			break
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		res, ok := lookup(ctx, term)
		if !ok {
			continue
		}
		defined = append(defined, term)
		section.WriteString(definitionBullet)
		section.WriteString(FormatDefinition(res))
		section.WriteString("\n\n")
	}
	if len(defined) == 0 {
		return summary, defined
	}
	return summary + explainedHeader + section.String(), defined
}

// FormatDefinition renders "**Term** (part of speech): definition".
func FormatDefinition(res models.TermLookupResult) string {
	return fmt.Sprintf("**%s** (%s): %s", cases.Title(language.English).String(res.Term), res.PartOfSpeech, res.Definition)
}
