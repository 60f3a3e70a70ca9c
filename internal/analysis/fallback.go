package analysis

import (
	"fmt"
	"strings"

	"legaldoc/internal/models"
)

// FallbackResult is the degraded answer used when the model is blocked or
// unavailable. It depends only on the input text.
func FallbackResult(text string) models.AnalysisResult {
	return models.AnalysisResult{
		Summary:       FallbackSummary(text),
		TermsLookedUp: []string{},
		Usage:         models.UsageMetadata{},
		Fallback:      true,
	}
}

func FallbackSummary(text string) string {
	lines := []string{
		"**Document Analysis (Fallback)**",
		"",
		fmt.Sprintf("This appears to be a legal document containing approximately %d words.", len(strings.Fields(text))),
		"",
		"Due to API content filtering, a detailed analysis could not be completed automatically. The document contains standard legal terminology and provisions.",
		"",
		"**Manual Review Recommended:** Please review the document for specific terms, obligations, and conditions.",
	}
	return strings.Join(lines, "\n")
}
