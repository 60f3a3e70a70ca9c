package activities

import "legaldoc/internal/models"

type GenerateSummaryInput struct {
	Text string `json:"text"`
}

type GenerateSummaryOutput struct {
	Text         string               `json:"text"`
	Blocked      bool                 `json:"blocked"`
	BlockReason  string               `json:"block_reason,omitempty"`
	ProviderName string               `json:"provider_name"`
	Model        string               `json:"model"`
	Usage        models.UsageMetadata `json:"usage"`
}

type LookupTermInput struct {
	Term string `json:"term"`
}

type LookupTermOutput struct {
	Found  bool                    `json:"found"`
	Result models.TermLookupResult `json:"result"`
}
