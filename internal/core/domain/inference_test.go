package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampTopK(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero falls back to default", 0, DefaultTopK},
		{"negative falls back to default", -3, DefaultTopK},
		{"in range unchanged", 7, 7},
		{"minimum kept", 1, 1},
		{"above maximum clamped", 50, MaxTopK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampTopK(tt.in))
		})
	}
}

func TestInferenceInput_ResolveAPIKey_Explicit(t *testing.T) {
	in := InferenceInput{Provider: ProviderOpenAI, APIKey: "  sk-direct  "}
	assert.Equal(t, "sk-direct", in.ResolveAPIKey())
}

func TestInferenceInput_ResolveAPIKey_PerProviderMap(t *testing.T) {
	in := InferenceInput{
		Provider: ProviderGemini,
		APIKeys: map[Provider]string{
			ProviderGemini: "gm-key",
			ProviderOpenAI: "sk-other",
		},
	}
	assert.Equal(t, "gm-key", in.ResolveAPIKey())
}

func TestInferenceInput_ResolveAPIKey_LegacyHuggingFace(t *testing.T) {
	in := InferenceInput{Provider: ProviderHuggingFace, HFAPIKey: "hf-legacy"}
	assert.Equal(t, "hf-legacy", in.ResolveAPIKey())

	// The legacy field only applies to the Hugging Face provider.
	in.Provider = ProviderOpenAI
	assert.Empty(t, in.ResolveAPIKey())
}

func TestInferenceInput_ResolveAPIKey_ExplicitWins(t *testing.T) {
	in := InferenceInput{
		Provider: ProviderHuggingFace,
		APIKey:   "direct",
		APIKeys:  map[Provider]string{ProviderHuggingFace: "mapped"},
		HFAPIKey: "legacy",
	}
	assert.Equal(t, "direct", in.ResolveAPIKey())
}

func TestInferenceInput_ResolveAPIKey_Missing(t *testing.T) {
	in := InferenceInput{Provider: ProviderLlama}
	assert.Empty(t, in.ResolveAPIKey())
}

func TestProvider_Valid(t *testing.T) {
	for _, p := range Providers() {
		assert.True(t, p.Valid(), "provider %s should be valid", p)
	}
	assert.False(t, Provider("bedrock").Valid())
	assert.False(t, Provider("").Valid())
}
