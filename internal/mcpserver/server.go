// Package mcpserver exposes the component catalog, the dependency resolver
// and agent assembly as MCP tools.
package mcpserver

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/soyeahso/agentwiz/internal/assistant"
	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/logging"
	"github.com/soyeahso/agentwiz/internal/store"
	"github.com/soyeahso/agentwiz/internal/version"
	"github.com/soyeahso/agentwiz/internal/wizard"
)

// Loader loads the catalog and reloads it past any cache.
type Loader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
	Refresh(ctx context.Context) (*catalog.Catalog, error)
}

// Options customizes the sessions assemble_agent runs.
type Options struct {
	// NewSession creates the wizard for one assemble_agent call. Nil
	// selects wizard defaults.
	NewSession func(assistant.Assistant) *wizard.Wizard
	// Record keeps the produced document. Nil disables history.
	Record func(context.Context, *wizard.Wizard) (*store.DocumentRecord, error)
}

// Server serves the MCP tools over a lazily loaded catalog.
type Server struct {
	loader Loader
	opts   Options
	log    *logging.Logger

	mu  sync.RWMutex
	cat *catalog.Catalog
}

// New creates a Server. The catalog is loaded on first use.
func New(loader Loader, log *logging.Logger, opts Options) *Server {
	if opts.NewSession == nil {
		sessionLog := log
		opts.NewSession = func(a assistant.Assistant) *wizard.Wizard {
			return wizard.New(sessionLog, wizard.Options{Assistant: a, StrictNames: true})
		}
	}
	return &Server{loader: loader, opts: opts, log: log.Sub("mcp")}
}

// Catalog returns the current catalog, loading it if needed.
func (s *Server) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	s.mu.RLock()
	cat := s.cat
	s.mu.RUnlock()
	if cat != nil {
		return cat, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat != nil {
		return s.cat, nil
	}
	cat, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.cat = cat
	return cat, nil
}

// Reload refreshes the catalog from its source. On failure the previous
// catalog stays in use.
func (s *Server) Reload(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := s.loader.Refresh(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog reload failed, keeping previous catalog")
		return nil, err
	}
	s.mu.Lock()
	s.cat = cat
	s.mu.Unlock()
	s.log.Info().Str("version", cat.Version).Msg("catalog reloaded")
	return cat, nil
}

// MCP builds the protocol server with every tool registered.
func (s *Server) MCP() *server.MCPServer {
	srv := server.NewMCPServer(
		"agentwiz",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	srv.AddTool(listComponentsTool(), s.ListComponents)
	srv.AddTool(resolveServersTool(), s.ResolveServers)
	srv.AddTool(assembleAgentTool(), s.AssembleAgent)
	srv.AddTool(refreshCatalogTool(), s.RefreshCatalog)

	return srv
}

// Serve runs the MCP server on stdin and stdout until the input closes.
func (s *Server) Serve() error {
	return server.ServeStdio(s.MCP())
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}
