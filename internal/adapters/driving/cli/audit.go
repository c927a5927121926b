package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowport/flowport/internal/adapters/driven/storage/sqlite"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent inference runs",
	Long:  `Prints the newest entries of the inference audit log, most recent first.`,
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", sqlite.DefaultRecentLimit, "maximum number of entries")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	if auditStore == nil {
		return errors.New("audit store not configured")
	}

	ctx := context.Background()

	entries, err := auditStore.Recent(ctx, auditLimit)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No audit entries found.")
		return nil
	}

	cmd.Println("Recent inference runs:")
	cmd.Println()
	for i := range entries {
		e := &entries[i]
		cmd.Printf("  [%d] %s  %s/%s  %s  %dms\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Provider, e.Model, e.Status, e.DurationMS)
		if e.CollectionID != "" {
			cmd.Printf("      Collection: %s\n", e.CollectionID)
		}
		if e.Detail != "" {
			cmd.Printf("      Detail: %s\n", e.Detail)
		}
	}
	cmd.Println()

	cmd.Printf("Total: %d entries\n", len(entries))
	return nil
}
