// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/taskcollab/internal/adapters/server/common"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/board"
	"github.com/hylla/taskcollab/internal/help"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config names the MCP server and where it is mounted.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler serves MCP over stateless streamable HTTP.
type Handler struct {
	next http.Handler
}

// NewHandler registers the project, board, sprint and help tools.
func NewHandler(cfg Config, svc common.Service, catalog help.Catalog) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("service is required")
	}
	cfg = normalizeConfig(cfg)

	srv := mcpserver.NewMCPServer(cfg.ServerName, cfg.ServerVersion, mcpserver.WithToolCapabilities(false))
	for _, register := range []func(*mcpserver.MCPServer){
		func(s *mcpserver.MCPServer) { registerProjectTools(s, svc) },
		func(s *mcpserver.MCPServer) { registerBoardTools(s, svc) },
		func(s *mcpserver.MCPServer) { registerSprintTools(s, svc) },
		func(s *mcpserver.MCPServer) { registerHelpTools(s, catalog) },
	} {
		register(srv)
	}
	return &Handler{next: mcpserver.NewStreamableHTTPServer(
		srv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.next == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.next.ServeHTTP(w, r)
}

func normalizeConfig(cfg Config) Config {
	trimOr := func(v, fallback string) string {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		return fallback
	}
	cfg.ServerName = trimOr(cfg.ServerName, "taskcollab")
	cfg.ServerVersion = trimOr(cfg.ServerVersion, "dev")
	cfg.EndpointPath = "/" + strings.Trim(trimOr(cfg.EndpointPath, "/mcp"), "/")
	if cfg.EndpointPath == "/" {
		cfg.EndpointPath = "/mcp"
	}
	return cfg
}

// errorCodes is checked in order; the first match prefixes the tool error.
var errorCodes = []struct {
	code  string
	match func(error) bool
}{
	{"not_found", func(err error) bool { return errors.Is(err, app.ErrNotFound) }},
	{"invalid_move", func(err error) bool { return errors.Is(err, app.ErrInvalidMove) }},
	{"invalid_request", common.IsValidationError},
	{"not_implemented", func(err error) bool { return errors.Is(err, app.ErrUnavailable) }},
	{"sync_failed", func(err error) bool { return errors.Is(err, board.ErrSyncFailed) }},
}

func toolResultFromError(err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultError("unknown error")
	}
	for _, ec := range errorCodes {
		if ec.match(err) {
			return mcp.NewToolResultError(ec.code + ": " + err.Error())
		}
	}
	return mcp.NewToolResultError("internal_error: " + err.Error())
}

func invalidRequestToolResult(err error) *mcp.CallToolResult {
	msg := "malformed arguments"
	if err != nil {
		msg = err.Error()
	}
	return mcp.NewToolResultError("invalid_request: " + msg)
}

func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}
