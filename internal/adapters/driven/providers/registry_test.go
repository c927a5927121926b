package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driven"
)

func TestClientFor(t *testing.T) {
	registry := NewRegistry(Config{})

	for _, provider := range domain.Providers() {
		t.Run(string(provider), func(t *testing.T) {
			client, err := registry.ClientFor(provider)
			require.NoError(t, err)
			assert.Equal(t, provider, client.Provider())
		})
	}

	t.Run("unknown provider", func(t *testing.T) {
		_, err := registry.ClientFor(domain.Provider("bedrock"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
	})
}

func TestCaptioner(t *testing.T) {
	registry := NewRegistry(Config{})
	assert.NotNil(t, registry.Captioner())
}

func TestBaseURLOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"content":"routed"}}]}`)
	}))
	defer server.Close()

	registry := NewRegistry(Config{OpenAIBaseURL: server.URL, RateLimit: 100})
	client, err := registry.ClientFor(domain.ProviderOpenAI)
	require.NoError(t, err)

	resp, err := client.Infer(context.Background(), driven.ProviderRequest{
		Model:    "gpt-4o-mini",
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "Hi"}},
		APIKey:   "k",
	})
	require.NoError(t, err)
	assert.Equal(t, "routed", resp.Text)
}
