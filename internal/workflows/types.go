package workflows

type DocumentAnalysisInput struct {
	Text                 string `json:"text"`
	LLMTimeoutSeconds    int    `json:"llm_timeout_seconds,omitempty"`
	LookupTimeoutSeconds int    `json:"lookup_timeout_seconds,omitempty"`
}

type AnalysisStatus struct {
	CurrentStep string   `json:"current_step"`
	Candidates  []string `json:"candidates,omitempty"`
	Defined     []string `json:"defined,omitempty"`
	Fallback    bool     `json:"fallback"`
	Provider    string   `json:"provider,omitempty"`
}
