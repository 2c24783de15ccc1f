// Package server exposes the inspector's worker requests as MCP tools.
package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/version"
)

// Caller sends one request to the worker and waits for its reply.
type Caller = bridge.Caller

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server with the worker bridge and capture cache.
type Server struct {
	caller Caller
	cache  *TreeCache
	log    *zap.Logger
	mcp    *mcpserver.MCPServer
}

// New creates and configures an MCP server with all inspector tools.
func New(caller Caller, cacheTTL time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		caller: caller,
		cache:  NewTreeCache(cacheTTL),
		log:    log,
	}
	s.mcp = mcpserver.NewMCPServer("ui-inspector", version.Version)
	s.registerTools()
	return s
}

// Serve runs the configured transport until ctx is done or the transport
// fails.
func (s *Server) Serve(ctx context.Context, cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		s.log.Info("serving MCP over stdio")
		return mcpserver.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	case "streamable-http":
		addr := fmt.Sprintf(":%d", cfg.Port)
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		errCh := make(chan error, 1)
		go func() { errCh <- httpServer.Start(addr) }()
		s.log.Info("serving MCP over streamable HTTP", zap.String("addr", addr))

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("capture_tree",
			mcp.WithDescription("Capture the UI tree around the element under a screen point. Every ancestor of that element is expanded; other branches are listed without children."),
			mcp.WithNumber("x", mcp.Description("Screen X coordinate"), mcp.Required()),
			mcp.WithNumber("y", mcp.Description("Screen Y coordinate"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Only keep nodes whose name, class or automation id contains this text")),
		),
		s.handleCapture,
	)

	s.mcp.AddTool(
		mcp.NewTool("gather_children",
			mcp.WithDescription("List the direct children of a node addressed by its drill id (comma-separated child indices from the desktop root)"),
			mcp.WithString("drill", mcp.Description("Drill id of the parent, e.g. '0,1,2'"), mcp.Required()),
			mcp.WithString("runtime", mcp.Description("Expected runtime id of the parent, e.g. '[2A,10010]'; rejects a moved address")),
		),
		s.handleChildren,
	)

	s.mcp.AddTool(
		mcp.NewTool("export_tree",
			mcp.WithDescription("Gather the full subtree below a node addressed by its drill id"),
			mcp.WithString("drill", mcp.Description("Drill id of the subtree root"), mcp.Required()),
			mcp.WithString("runtime", mcp.Description("Expected runtime id of the subtree root")),
			mcp.WithBoolean("flat", mcp.Description("Return a flat list with path breadcrumbs")),
			mcp.WithString("types", mcp.Description("Comma-separated control types or groups (interactive, containers, text) to keep, e.g. 'Button,Edit'")),
			mcp.WithBoolean("clipboard", mcp.Description("Also copy the text form to the clipboard")),
		),
		s.handleExport,
	)

	s.mcp.AddTool(
		mcp.NewTool("click",
			mcp.WithDescription("Click a node by drill id, or whatever is under a screen point"),
			mcp.WithString("drill", mcp.Description("Drill id of the node to click")),
			mcp.WithString("runtime", mcp.Description("Expected runtime id of the node")),
			mcp.WithNumber("x", mcp.Description("Click at X coordinate")),
			mcp.WithNumber("y", mcp.Description("Click at Y coordinate")),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle")),
		),
		s.handleClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_apps",
			mcp.WithDescription("List the desktop's top-level windows, with known applications resolved to their controls"),
		),
		s.handleListApps,
	)
}
