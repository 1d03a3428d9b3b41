package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/Asar007/claude-code-compact-mcp/internal/mcpserver"
)

// version is reported to MCP clients; overridden with -ldflags at release.
var version = "1.0.0"

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tools and the compact prompt to an MCP client over stdio",
	Long: "Speaks the Model Context Protocol on stdin/stdout. Register it with\n" +
		"  claude mcp add claude-code-compact -- compact mcp",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		// stdout carries the protocol, so logs stay on stderr.
		setupLogging(cfg)

		server, err := mcpserver.New(newRegistry(cfg), version, slog.Default())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		slog.Info("mcp server started", "name", mcpserver.Name, "version", version)
		err = server.Run(ctx, &mcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
