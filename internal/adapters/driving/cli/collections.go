package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowport/flowport/internal/core/domain"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage knowledge collections",
	Long:  `List, create, or inspect knowledge collections.`,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all collections",
	Args:  cobra.NoArgs,
	RunE:  runCollectionsList,
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an empty collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsCreate,
}

var collectionsShowCmd = &cobra.Command{
	Use:   "show [collection-id]",
	Short: "Show a collection and its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsShow,
}

// createDescription is a flag for the create command.
var createDescription string

func init() {
	collectionsCreateCmd.Flags().StringVarP(&createDescription, "description", "d", "", "collection description")

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsShowCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	ctx := context.Background()

	collections, err := knowledgeService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(collections) == 0 {
		cmd.Println("No collections found.")
		return nil
	}

	cmd.Println("Collections:")
	cmd.Println()
	for i := range collections {
		col := &collections[i]
		cmd.Printf("  %s\n", col.ID)
		cmd.Printf("    Name: %s\n", col.Name)
		cmd.Printf("    Documents: %d  Chunks: %d  Ready: %t\n", col.DocumentCount, col.ChunkCount, col.Ready)
		cmd.Println()
	}

	cmd.Printf("Total: %d collections\n", len(collections))
	return nil
}

func runCollectionsCreate(cmd *cobra.Command, args []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	ctx := context.Background()

	col, err := knowledgeService.Create(ctx, domain.CreateCollectionInput{
		Name:        args[0],
		Description: createDescription,
		Origin:      domain.OriginUser,
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	cmd.Printf("Created collection %s (%s)\n", col.Name, col.ID)
	return nil
}

func runCollectionsShow(cmd *cobra.Command, args []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	ctx := context.Background()

	col, err := knowledgeService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	cmd.Printf("Collection: %s\n\n", col.ID)
	cmd.Printf("  Name:      %s\n", col.Name)
	if col.Description != "" {
		cmd.Printf("  About:     %s\n", col.Description)
	}
	cmd.Printf("  Source:    %s\n", col.Origin)
	cmd.Printf("  Documents: %d\n", col.DocumentCount)
	cmd.Printf("  Chunks:    %d\n", col.ChunkCount)
	cmd.Printf("  Ready:     %t\n", col.Ready)
	cmd.Printf("  Created:   %s\n", col.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(col.Documents) > 0 {
		cmd.Println("\n  Documents:")
		for i := range col.Documents {
			doc := &col.Documents[i]
			cmd.Printf("    %s  %s (%d chunks)\n", doc.ID, doc.Title, doc.ChunkCount)
		}
	}

	return nil
}
