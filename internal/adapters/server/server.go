// Package server mounts the REST API and the MCP endpoint on one listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hylla/taskcollab/internal/adapters/server/common"
	"github.com/hylla/taskcollab/internal/adapters/server/httpapi"
	"github.com/hylla/taskcollab/internal/adapters/server/mcpapi"
	"github.com/hylla/taskcollab/internal/help"
)

const (
	defaultBindAddress = "127.0.0.1:8080"
	defaultAPIPath     = "/api"
	defaultMCPPath     = "/mcp"
	shutdownGrace      = 5 * time.Second
)

// Config holds the listener address, mount points and API auth settings.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
	// DisableMCP leaves the MCP endpoint unmounted.
	DisableMCP bool

	TokenSecret    []byte
	TokenTTL       time.Duration
	RequireAuth    bool
	AllowedOrigins []string
}

// Dependencies are the collaborators both transports call into. Mail and
// Logger are optional.
type Dependencies struct {
	Service common.Service
	Mail    common.MailDeliverer
	Help    help.Catalog
	Logger  common.Logger
}

// NewHandler builds the root mux and returns it with the effective config.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, Config, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, Config{}, err
	}
	if deps.Service == nil {
		return nil, Config{}, errors.New("service dependency is required")
	}

	api, err := httpapi.NewHandler(httpapi.Config{
		BasePath:       cfg.APIEndpoint,
		TokenSecret:    cfg.TokenSecret,
		TokenTTL:       cfg.TokenTTL,
		RequireAuth:    cfg.RequireAuth,
		AllowedOrigins: cfg.AllowedOrigins,
	}, httpapi.Dependencies{
		Service: deps.Service,
		Mail:    deps.Mail,
		Help:    deps.Help,
		Logger:  deps.Logger,
	})
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure api handler: %w", err)
	}

	mux := http.NewServeMux()
	health := healthHandler(cfg)
	mux.Handle("/healthz", health)
	mux.Handle("/readyz", health)
	mux.Handle(cfg.APIEndpoint, api)
	mux.Handle(cfg.APIEndpoint+"/", api)

	if !cfg.DisableMCP {
		mcp, err := mcpapi.NewHandler(mcpapi.Config{
			ServerName:    cfg.ServerName,
			ServerVersion: cfg.ServerVersion,
			EndpointPath:  cfg.MCPEndpoint,
		}, deps.Service, deps.Help)
		if err != nil {
			return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
		}
		mux.Handle(cfg.MCPEndpoint, mcp)
	}
	return mux, cfg, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler, cfg, err := NewHandler(cfg, deps)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPBind,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func normalizeConfig(cfg Config) (Config, error) {
	cfg.HTTPBind = orDefault(cfg.HTTPBind, defaultBindAddress)
	cfg.ServerName = orDefault(cfg.ServerName, "taskcollab")
	cfg.ServerVersion = orDefault(cfg.ServerVersion, "dev")
	cfg.APIEndpoint = mountPath(cfg.APIEndpoint, defaultAPIPath)
	cfg.MCPEndpoint = mountPath(cfg.MCPEndpoint, defaultMCPPath)
	if cfg.APIEndpoint == cfg.MCPEndpoint {
		return Config{}, fmt.Errorf("api and mcp endpoints both resolve to %s", cfg.APIEndpoint)
	}
	return cfg, nil
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

// mountPath cleans p into "/a/b" form; empty or root falls back.
func mountPath(p, fallback string) string {
	p = path.Clean("/" + strings.TrimSpace(p))
	if p == "/" {
		return fallback
	}
	return p
}

func healthHandler(cfg Config) http.Handler {
	body := map[string]string{"status": "ok", "server": cfg.ServerName, "version": cfg.ServerVersion}
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
}
