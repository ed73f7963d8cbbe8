package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k3ss-official/k3ss-search/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the discover_locations, search_files and format_for_llm
tools and the k3ss://locations resource.

By default, the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead, for example to test with MCP Inspector.

Examples:
  # Stdio mode (default, for desktop assistants)
  k3ss-search mcp serve

  # HTTP mode
  k3ss-search mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "k3ss-search": {
        "command": "/path/to/k3ss-search",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Discovery: discoveryService,
		Search:    searchService,
		Format:    formatService,
	}

	server, err := mcp.NewServer(ports)
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
