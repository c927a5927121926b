package domain

// Provider identifies a hosted model provider.
type Provider string

// Supported providers.
const (
	ProviderHuggingFace Provider = "huggingface"
	ProviderOpenAI      Provider = "openai"
	ProviderGemini      Provider = "gemini"
	ProviderLlama       Provider = "llama"
)

// Providers returns all supported providers in a stable order.
func Providers() []Provider {
	return []Provider{ProviderHuggingFace, ProviderOpenAI, ProviderGemini, ProviderLlama}
}

// Valid reports whether p names a supported provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderHuggingFace, ProviderOpenAI, ProviderGemini, ProviderLlama:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (p Provider) String() string {
	return string(p)
}
