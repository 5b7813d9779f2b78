// Package mcpserver exposes the GitHub Projects client as MCP tools over
// stdio, SSE, or streamable HTTP transports.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/rgoodman/github-projects-mcp/internal/config"
	"github.com/rgoodman/github-projects-mcp/internal/domain"
	"github.com/rgoodman/github-projects-mcp/internal/gh"
)

// Version is reported to MCP clients during initialization.
const Version = "0.2.0"

// ProjectsAPI is the surface of the GitHub client the tool handlers need.
// Narrowed to an interface so tests can substitute a stub.
type ProjectsAPI interface {
	GetViewerProjects(ctx context.Context, first int, after string) (*domain.ProjectPage, error)
	GetOrganizationProjects(ctx context.Context, orgLogin string, first int, after string) (*domain.ProjectPage, error)
	GetUserProjects(ctx context.Context, userLogin string, first int, after string) (*domain.ProjectPage, error)
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)
	CreateProject(ctx context.Context, ownerID, title, description string) (*domain.Project, error)
	UpdateProject(ctx context.Context, projectID string, upd domain.ProjectUpdate) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID string) (string, error)

	GetProjectItems(ctx context.Context, projectID string, first int, after string) (*domain.ItemPage, error)
	GetProjectItemsAdvanced(ctx context.Context, projectID string, first int, after string, q gh.ItemsQuery) (map[string]interface{}, error)
	GetProjectFields(ctx context.Context, projectID string) ([]domain.Field, error)
	AddItemToProject(ctx context.Context, projectID, contentID string) (string, error)
	UpdateItemFieldValue(ctx context.Context, projectID, itemID, fieldID string, value interface{}) (string, error)
	RemoveItemFromProject(ctx context.Context, projectID, itemID string) (string, error)
	ArchiveItem(ctx context.Context, projectID, itemID string) (*domain.ArchivedItem, error)

	ExecuteCustomQuery(ctx context.Context, query string, variables map[string]interface{}) (map[string]interface{}, error)
	SearchProjectItems(ctx context.Context, projectID, query string, first int, after string) (*domain.FilteredItemPage, error)
	GetItemsByFieldValue(ctx context.Context, projectID, fieldID, value string, first int, after string) (*domain.FilteredItemPage, error)
	GetItemsByMilestone(ctx context.Context, projectID, milestone string, first int, after string) (*domain.FilteredItemPage, error)
}

// Server wraps the MCP server and its transport selection.
type Server struct {
	mcp *server.MCPServer
	log zerolog.Logger
}

// New builds the MCP server and registers every tool against the given API.
func New(api ProjectsAPI, log zerolog.Logger) *Server {
	s := server.NewMCPServer(
		"github-projects",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	h := &handler{api: api, log: log}
	registerProjectTools(s, h)
	registerItemTools(s, h)
	registerQueryTools(s, h)

	return &Server{mcp: s, log: log}
}

// Run serves MCP on the configured transport until the transport fails or,
// for stdio, the client disconnects.
func (s *Server) Run(ctx context.Context, cfg *config.Config) error {
	switch cfg.Transport {
	case config.TransportStdio:
		s.log.Info().Msg("serving MCP over stdio")
		return server.ServeStdio(s.mcp)
	case config.TransportSSE:
		s.log.Info().Str("addr", cfg.ListenAddr()).Msg("serving MCP over SSE")
		return server.NewSSEServer(s.mcp).Start(cfg.ListenAddr())
	case config.TransportHTTP:
		return s.serveHTTP(ctx, cfg.ListenAddr())
	default:
		return fmt.Errorf("unsupported transport: %s", cfg.Transport)
	}
}

// serveHTTP mounts the streamable HTTP handler on a chi router with CORS and
// a health endpoint.
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	r := chi.NewRouter()
	r.Use(cors.Default().Handler)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/mcp", server.NewStreamableHTTPServer(s.mcp))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	s.log.Info().Str("addr", addr).Msg("serving MCP over HTTP")
	return httpServer.ListenAndServe()
}
