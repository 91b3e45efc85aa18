package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagefix/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can analyse
and correct documents and read stored reports.

By default the server communicates over stdio using JSON-RPC. Use --http
to serve the streamable HTTP transport instead.

Examples:
  # Stdio mode
  pagefix mcp

  # HTTP mode
  pagefix mcp --http :8080

Client configuration:
  {
    "mcpServers": {
      "pagefix": {
        "command": "/path/to/pagefix",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP listen address (empty = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	svc, err := requireCorrection()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Correction: svc,
		Reports:    reportService,
	})
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}
	return server.Run(cmd.Context())
}
