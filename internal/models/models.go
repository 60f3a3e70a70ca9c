package models

const DefaultDocumentName = "unnamed_document"

type Pathway string

const (
	PathwayNone            Pathway = "none"
	PathwayLegalTermLookup Pathway = "legal_term_lookup"
	PathwayError           Pathway = "error"
)

const (
	SourceDictionaryAPI = "dictionary_api"
	SourceBuiltin       = "builtin"
)

type AnalysisRequest struct {
	Text         string `json:"text"`
	DocumentName string `json:"document_name,omitempty"`
}

type UsageMetadata struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type AnalysisResult struct {
	Summary       string        `json:"summary"`
	TermsLookedUp []string      `json:"terms_looked_up"`
	Usage         UsageMetadata `json:"usage"`
	Fallback      bool          `json:"fallback,omitempty"`
}

// PathwayFor classifies a completed analysis by which enrichment branch fired.
func PathwayFor(res AnalysisResult) Pathway {
	if len(res.TermsLookedUp) > 0 {
		return PathwayLegalTermLookup
	}
	return PathwayNone
}

type TermLookupResult struct {
	Term         string `json:"term"`
	Definition   string `json:"definition"`
	PartOfSpeech string `json:"part_of_speech"`
	Source       string `json:"source"`
}

type SummaryRecord struct {
	ID            string   `json:"id"`
	Timestamp     string   `json:"timestamp"`
	DocumentName  string   `json:"document_name"`
	Summary       string   `json:"summary"`
	TermsLookedUp []string `json:"terms_looked_up"`
	TokensUsed    *int     `json:"tokens_used"`
	InputLength   int      `json:"input_length"`
}

type LogRecord struct {
	Timestamp    string  `json:"timestamp"`
	Pathway      Pathway `json:"pathway"`
	LatencyMS    float64 `json:"latency_ms"`
	TokensUsed   *int    `json:"tokens_used"`
	InputLength  int     `json:"input_length"`
	Success      bool    `json:"success"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

type AnalysisResponse struct {
	Summary       string   `json:"summary"`
	TermsLookedUp []string `json:"terms_looked_up"`
	TokensUsed    *int     `json:"tokens_used"`
	SavedID       string   `json:"saved_id"`
	Timestamp     string   `json:"timestamp"`
}

func IntPtr(v int) *int { return &v }

func StringPtr(v string) *string { return &v }
