package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderList(t *testing.T) {
	refs := ParseProviderList("gemini| openai:gpt-4o |Mock")
	require.Len(t, refs, 3)
	assert.Equal(t, "gemini", refs[0].Name)
	assert.Equal(t, "openai", refs[1].Name)
	assert.Equal(t, "gpt-4o", refs[1].Model)
	assert.Equal(t, "openai:gpt-4o", refs[1].Raw)
	assert.Equal(t, "mock", refs[2].Name)
}

func TestParseProviderListDedupes(t *testing.T) {
	refs := ParseProviderList("openai|groq|OPENAI|openai:gpt-4o|:orphan")
	require.Len(t, refs, 3)
	assert.Equal(t, []string{"openai", "groq", "openai"}, []string{refs[0].Name, refs[1].Name, refs[2].Name})
	assert.Equal(t, "gpt-4o", refs[2].Model)
}

func TestParseProviderListEmpty(t *testing.T) {
	for _, raw := range []string{"", "  ", "| |"} {
		refs := ParseProviderList(raw)
		require.Len(t, refs, 1, raw)
		assert.Equal(t, "mock", refs[0].Name)
	}
}
