// Package web serves the MCP endpoint over streamable HTTP, together with
// OAuth protected-resource metadata and a health check.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sgx-labs/aiorg/internal/config"
	"github.com/sgx-labs/aiorg/internal/credential"
	aimcp "github.com/sgx-labs/aiorg/internal/mcp"
)

// MetadataPath is the well-known OAuth protected-resource metadata route.
const MetadataPath = "/.well-known/oauth-protected-resource"

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg     *config.Config
	svc     aimcp.Saver
	logger  *slog.Logger
	version string
}

// NewHandler returns the full HTTP handler: the MCP endpoint at
// cfg.Server.Path, metadata, and /healthz, wrapped in middleware.
func NewHandler(cfg *config.Config, svc aimcp.Saver, logger *slog.Logger, version string) http.Handler {
	s := &server{cfg: cfg, svc: svc, logger: logger, version: version}

	// Stateless: every POST gets a fresh server bound to that request's
	// credential sources, so no credential outlives its request.
	streamable := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return aimcp.NewServer(svc, credential.FromRequest(r))
	}, &mcp.StreamableHTTPOptions{Stateless: true})

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, streamable)
	mux.HandleFunc("GET "+MetadataPath, s.handleMetadata)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return Chain(
		RequestID,
		Recovery(logger),
		AccessLog(logger),
	)(mux)
}

// --- Handlers ---

type resourceMetadata struct {
	Resource              string   `json:"resource"`
	AuthorizationServers  []string `json:"authorization_servers"`
	ScopesSupported       []string `json:"scopes_supported"`
	ResourceDocumentation string   `json:"resource_documentation,omitempty"`
}

func (s *server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	resource := s.cfg.Server.PublicURL
	if resource == "" {
		resource = requestOrigin(r)
	}
	writeJSON(w, resourceMetadata{
		Resource:              resource,
		AuthorizationServers:  nonNil(s.cfg.Auth.AuthorizationServers),
		ScopesSupported:       nonNil(s.cfg.Auth.Scopes),
		ResourceDocumentation: s.cfg.Auth.DocumentationURL,
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":             "ok",
		"version":            s.version,
		"backend_configured": s.cfg.BackendConfigured(),
	})
}

// requestOrigin rebuilds scheme://host for the inbound request, honouring
// X-Forwarded-Proto from a TLS-terminating proxy.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "https" || p == "http" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// Serve listens on addr and serves handler until ctx is cancelled, then
// shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return serveListener(ctx, listener, handler, logger)
}

func serveListener(ctx context.Context, listener net.Listener, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
