package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pageform/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list
projects, read page text and generate forms.

By default the server speaks JSON-RPC over stdio. Use --http-port to serve
streamable HTTP instead, for example to test with MCP Inspector.

Examples:
  # Stdio mode (for desktop assistants)
  pageform mcp serve

  # HTTP mode
  pageform mcp serve --http-port 8081

Assistant configuration:
  {
    "mcpServers": {
      "pageform": {
        "command": "/path/to/pageform",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().Int("http-port", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("http-port")
	if err != nil {
		return fmt.Errorf("getting http-port flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Projects: projectService,
		Forms:    formService,
		Bulk:     bulkDispatcher,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
