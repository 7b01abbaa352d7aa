package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drafter/internal/adapters/driving/mcp"
	"github.com/custodia-labs/drafter/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search your
index, assemble grounding context and draft content through drafter.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Use --metrics-addr to expose Prometheus metrics. In HTTP mode the metrics
are also served at /metrics on the MCP port.

Examples:
  # Stdio mode (default)
  drafter mcp serve

  # HTTP mode with metrics on the same port
  drafter mcp serve --port 8080

  # Stdio mode with a separate metrics endpoint
  drafter mcp serve --metrics-addr localhost:9090`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("metrics-addr", "", "address to serve Prometheus metrics on")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return fmt.Errorf("getting metrics-addr flag: %w", err)
	}

	ports := &mcp.Ports{
		Retrieval:  retrievalService,
		Context:    contextService,
		Generation: generationService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if metricsAddr != "" {
		if metricsHandler == nil {
			return errors.New("metrics not configured")
		}
		go func() {
			if err := mcp.ServeMetrics(ctx, metricsAddr, metricsHandler); err != nil {
				logger.Error("metrics server stopped", "addr", metricsAddr, "err", err)
			}
		}()
	}

	if port > 0 {
		extra := map[string]http.Handler{}
		if metricsHandler != nil {
			extra["/metrics"] = metricsHandler
		}
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr, extra)
	}

	return server.Run(ctx)
}
