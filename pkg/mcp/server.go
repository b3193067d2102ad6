// Package mcp serves the skill registry over the Model Context Protocol.
package mcp

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/jingkaihe/skillmcp/pkg/logger"
	"github.com/jingkaihe/skillmcp/pkg/skills"
	"github.com/jingkaihe/skillmcp/pkg/version"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ServerName is the implementation name reported to MCP clients
const ServerName = "skill-to-mcp"

// Instructions is sent to clients during initialization
const Instructions = "Convert AI Skills (following Claude Skills format) into MCP server resources. " +
	"This server provides access to skills stored in SKILL.md files, allowing LLMs to " +
	"discover and use specialized knowledge and workflows. Use get_available_skills to " +
	"see what's available, then get_skill_details to access specific skills."

// Server exposes a skill registry as MCP tools
type Server struct {
	registry  *skills.Registry
	mcpServer *mcpserver.MCPServer
}

// NewServer creates an MCP server with the skill tools registered
func NewServer(registry *skills.Registry) *Server {
	s := mcpserver.NewMCPServer(
		ServerName,
		version.Get().Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithInstructions(Instructions),
		mcpserver.WithRecovery(),
	)
	NewSkillTools(registry).Register(s)

	return &Server{
		registry:  registry,
		mcpServer: s,
	}
}

// MCPServer returns the underlying mcp-go server
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio serves JSON-RPC messages read from in until ctx is done or in
// reaches EOF.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	errWriter := logger.G(ctx).WriterLevel(logrus.ErrorLevel)
	defer errWriter.Close()

	stdio := mcpserver.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(errWriter, "", 0))

	logger.G(ctx).WithField("skills_dir", s.registry.Root()).Info("Starting MCP server on stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "stdio server failed")
	}
	return nil
}

// SSEServer serves the MCP tools over HTTP with server-sent events
type SSEServer struct {
	server *mcpserver.SSEServer
	addr   string
}

// NewSSEServer creates an SSE transport listening on addr. baseURL is the
// externally visible URL advertised to clients; when empty, clients receive
// a relative message endpoint.
func (s *Server) NewSSEServer(addr, baseURL string) *SSEServer {
	// the http.Server exists before Start so an early Shutdown is not lost
	httpServer := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	opts := []mcpserver.SSEOption{mcpserver.WithHTTPServer(httpServer)}
	if baseURL != "" {
		opts = append(opts, mcpserver.WithBaseURL(baseURL))
	}
	sse := mcpserver.NewSSEServer(s.mcpServer, opts...)
	httpServer.Handler = sse

	return &SSEServer{
		server: sse,
		addr:   addr,
	}
}

// Start blocks serving HTTP until Shutdown is called
func (s *SSEServer) Start(ctx context.Context) error {
	logger.G(ctx).WithField("addr", s.addr).Info("Starting MCP SSE server")
	if err := s.server.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "SSE server failed")
	}
	return nil
}

// Shutdown gracefully closes active sessions and stops the HTTP server
func (s *SSEServer) Shutdown(ctx context.Context) error {
	logger.G(ctx).Info("Shutting down MCP SSE server")
	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown SSE server")
	}
	return nil
}

// Handler returns the HTTP handler serving the SSE and message endpoints
func (s *SSEServer) Handler() http.Handler {
	return s.server
}

// Addr returns the listen address
func (s *SSEServer) Addr() string {
	return s.addr
}
