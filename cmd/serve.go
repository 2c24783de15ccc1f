package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/ui-inspector/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing ui-inspector tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes capture, children,
export, click and apps as tools. One worker serves every tool call.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  ui-inspector serve
  ui-inspector serve --transport streamable-http --port 8080
  ui-inspector serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 0, "Capture cache TTL in milliseconds (0 to disable; default config cache_ttl)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	ttl := cfg.CacheTTL
	if cmd.Flags().Changed("cache-ttl") {
		ms, _ := cmd.Flags().GetInt("cache-ttl")
		ttl = time.Duration(ms) * time.Millisecond
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := startBridge(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	srv := server.New(b, ttl, logger.Named("mcp"))

	g.Go(func() error {
		defer cancel()
		return srv.Serve(gctx, server.Config{Transport: transport, Port: port, CacheTTL: ttl})
	})
	g.Go(func() error {
		select {
		case <-b.Done():
			if gctx.Err() != nil {
				return nil
			}
			return b.Err()
		case <-gctx.Done():
			stopBridge(b)
			return nil
		}
	})

	err = g.Wait()
	logger.Info("server stopped", zap.Error(err))
	return err
}
