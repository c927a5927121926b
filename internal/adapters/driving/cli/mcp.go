package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowport/flowport/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants. Use
--http to serve the streamable HTTP transport instead.

Examples:
  # Stdio mode (default)
  flowport mcp

  # HTTP mode (for MCP Inspector, remote access)
  flowport mcp --http :8080`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP listen address (empty = stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Knowledge: knowledgeService})
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}

	return server.Run(cmd.Context())
}
