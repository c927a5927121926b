package cli

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/flowport/flowport/internal/core/domain"
)

// resolveProviderKey looks up the API key for a provider from the
// environment. FLOWPORT_<PROVIDER>_API_KEY wins over <PROVIDER>_API_KEY;
// HF_API_KEY is honoured for Hugging Face.
func resolveProviderKey(provider domain.Provider) string {
	upper := strings.ToUpper(string(provider))
	for _, name := range []string{"FLOWPORT_" + upper + "_API_KEY", upper + "_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	if provider == domain.ProviderHuggingFace {
		if v := strings.TrimSpace(os.Getenv("HF_API_KEY")); v != "" {
			return v
		}
	}
	return ""
}

// providerNames returns the supported providers as a comma-separated list.
func providerNames() string {
	providers := domain.Providers()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
