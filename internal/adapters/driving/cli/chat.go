package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowport/flowport/internal/core/domain"
)

var (
	chatProvider string
	chatModel    string
	chatSystem   string
	chatTopK     int
)

var chatCmd = &cobra.Command{
	Use:   "chat [collection-id]",
	Short: "Chat with a model over a collection",
	Long: `Starts an interactive chat session. Each question retrieves the most
similar chunks from the collection and injects them into the prompt
before it is sent to the provider.

The API key is taken from FLOWPORT_<PROVIDER>_API_KEY or
<PROVIDER>_API_KEY (plus HF_API_KEY for Hugging Face); when none is set
the key is prompted for without echo. Type 'exit' to quit.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatProvider, "provider", "p", "huggingface", "model provider")
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "model identifier")
	chatCmd.Flags().StringVar(&chatSystem, "system", "", "system prompt")
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", domain.DefaultTopK, "context chunks per question")
	_ = chatCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	provider := domain.Provider(strings.ToLower(strings.TrimSpace(chatProvider)))
	if !provider.Valid() {
		return fmt.Errorf("unsupported provider %q (choose from %s)", chatProvider, providerNames())
	}

	apiKey := resolveProviderKey(provider)
	if apiKey == "" {
		cmd.Printf("Enter %s API key: ", provider)
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required")
		}
	}

	collectionID := args[0]
	ctx := cmd.Context()

	col, err := knowledgeService.Get(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	cmd.Printf("Chatting over %s with %s/%s (key %s). Type 'exit' to quit.\n\n",
		col.Name, provider, chatModel, maskAPIKey(apiKey))

	reader := bufio.NewReader(cmd.InOrStdin())
	history := []domain.Message{}

	for {
		cmd.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				cmd.Println()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		history = append(history, domain.Message{Role: domain.RoleUser, Content: question})

		result, err := inferenceService.Run(ctx, domain.InferenceInput{
			Provider:        provider,
			Model:           chatModel,
			Messages:        history,
			SystemPrompt:    chatSystem,
			CollectionID:    collectionID,
			TopK:            chatTopK,
			ContextTemplate: domain.DefaultContextTemplate,
			APIKey:          apiKey,
		})
		if err != nil {
			// Drop the failed turn so a retry does not duplicate it.
			history = history[:len(history)-1]
			cmd.Printf("Error: %v\n\n", err)
			continue
		}

		answer := result.OutputText
		if answer == "" {
			cmd.Println("[no text in provider response]")
			cmd.Println()
			continue
		}

		cmd.Printf("%s\n", answer)
		if len(result.Matches) > 0 {
			cmd.Printf("[%d context chunks]\n", len(result.Matches))
		}
		cmd.Println()

		history = append(history, domain.Message{Role: domain.RoleAssistant, Content: answer})
	}
}
