package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowport/flowport/internal/chunker"
	"github.com/flowport/flowport/internal/core/domain"
)

var (
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [collection-id] [question...]",
	Short: "Retrieve the most similar chunks",
	Long: `Runs a similarity query against a collection's index and prints the
best matching chunks with their scores.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", domain.DefaultTopK, "maximum number of matches")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output matches as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	collectionID := args[0]
	question := strings.Join(args[1:], " ")

	ctx := context.Background()

	result, err := knowledgeService.Query(ctx, collectionID, question, queryTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, result)
	}

	return outputQueryTable(cmd, result)
}

func outputQueryJSON(cmd *cobra.Command, result *domain.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryTable(cmd *cobra.Command, result *domain.QueryResult) error {
	if len(result.Matches) == 0 {
		cmd.Println("No matches found.")
		return nil
	}

	cmd.Println("Matches:")
	cmd.Println()
	for i := range result.Matches {
		m := &result.Matches[i]

		title := m.DocumentTitle
		if title == "" {
			title = m.DocumentID
		}

		cmd.Printf("  [%d] %s (%.3f)\n", i+1, title, m.Score)
		cmd.Printf("      %s\n", chunker.Truncate(m.Content, 160))
		cmd.Println()
	}

	return nil
}
