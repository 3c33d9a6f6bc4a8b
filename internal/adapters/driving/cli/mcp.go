package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HMaxF/jesoes.com/internal/adapters/driving/mcp"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can read the
cached document sets and change the selection.

By default the server talks JSON-RPC over stdio. Use --port to serve
HTTP instead, for example to test with MCP Inspector.

Examples:
  # Stdio mode (default)
  jesoes mcp serve

  # HTTP mode
  jesoes mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "jesoes": {
        "command": "/path/to/jesoes",
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
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	ports := &mcp.Ports{
		Reader:    readerService,
		Selection: selectionService,
		Sync:      syncService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	// Serve from the cache right away and refresh in the background.
	if _, err := syncService.LoadCached(cmd.Context()); err != nil {
		return storageHint(cmd, err)
	}
	go func() {
		if err := syncService.Initialize(cmd.Context(), nil); err != nil {
			logger.Warn("background sync: %v", err)
		}
	}()

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
