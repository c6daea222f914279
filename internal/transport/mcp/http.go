package mcp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/pkg/log"
	"github.com/sandevgo/stravamcp/pkg/srv"
)

var _ srv.Service = (*HTTPService)(nil)

// HTTPService serves the MCP server over streamable HTTP next to a health
// probe.
type HTTPService struct {
	cfg    *config.ServerConfig
	server *http.Server
}

func NewHTTPService(cfg *config.ServerConfig, s *mcpserver.MCPServer) *HTTPService {
	streamable := mcpserver.NewStreamableHTTPServer(s,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
	)

	mux := http.NewServeMux()
	mux.Handle(cfg.EndpointPath, streamable)
	mux.HandleFunc("GET /healthz", healthz)

	return &HTTPService{
		cfg: cfg,
		server: &http.Server{
			Addr:              cfg.GetAddr(),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (h *HTTPService) Handler() http.Handler {
	return h.server.Handler
}

func (h *HTTPService) Start(ctx context.Context) error {
	// requests keep the logger but outlive ctx until Shutdown drains them
	base := context.WithoutCancel(ctx)
	h.server.BaseContext = func(net.Listener) context.Context { return base }

	log.FromCtx(ctx).Info().
		Str("addr", h.cfg.GetAddr()).
		Str("endpoint", h.cfg.GetEndpointURL()).
		Msg("mcp server listening")

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *HTTPService) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
