package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/voxkit/telnyx-mcp-gateway/internal/auth"
	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
)

// GatewayHTTPServer serves the MCP endpoint behind bearer authentication,
// together with the auth flow, webhook receiver and health endpoints.
type GatewayHTTPServer struct {
	serverContext  *ServerContext
	mcpServer      *mcpserver.MCPServer
	authHandlers   *auth.Handlers
	authMiddleware *auth.Middleware
	webhookHandler http.Handler
	health         *HealthChecker
	httpServer     *http.Server
}

// NewGatewayHTTPServer assembles the gateway's HTTP surface. The webhook
// handler may be nil when the receiver is disabled.
func NewGatewayHTTPServer(
	sc *ServerContext,
	mcpServer *mcpserver.MCPServer,
	handlers *auth.Handlers,
	middleware *auth.Middleware,
	webhookHandler http.Handler,
	health *HealthChecker,
) (*GatewayHTTPServer, error) {
	if err := validateHTTPSRequirement(sc.Config().BaseURL); err != nil {
		return nil, err
	}

	return &GatewayHTTPServer{
		serverContext:  sc,
		mcpServer:      mcpServer,
		authHandlers:   handlers,
		authMiddleware: middleware,
		webhookHandler: webhookHandler,
		health:         health,
	}, nil
}

// Handler builds the gateway's HTTP handler.
func (s *GatewayHTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	s.health.RegisterHealthEndpoints(mux)
	s.authHandlers.Register(mux)

	if s.webhookHandler != nil {
		mux.Handle("POST /webhooks/telnyx", s.webhookHandler)
	}

	// Stateless: every request is authorized and dispatched on its own,
	// with no session handshake required before tools/list or tools/call.
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath("/mcp"),
		mcpserver.WithStateLess(true),
		mcpserver.WithLogger(logging.NewSlogAdapter(slog.Default())),
	}
	if s.serverContext.Config().DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	// The streamable server negotiates buffered JSON vs SSE per request
	// via the Accept header; both routes share it.
	protected := s.authMiddleware.Wrap(streamable)
	mux.Handle("/mcp", protected)
	mux.Handle("/mcp/stream", protected)

	return s.instrumentHTTP(mux)
}

// instrumentHTTP records request counts and latency per route pattern.
func (s *GatewayHTTPServer) instrumentHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// The route pattern keeps the label set bounded; unmatched
		// requests are lumped together.
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		s.serverContext.Metrics().RecordHTTPRequest(r.Context(), r.Method, path, rec.status, time.Since(start))
	})
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Start starts the gateway HTTP server and blocks until it stops.
func (s *GatewayHTTPServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the gateway HTTP server.
func (s *GatewayHTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// validateHTTPSRequirement allows HTTP only for loopback addresses; bearer
// tokens must not transit plaintext links.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("HTTPS is required for non-loopback base URL %s", baseURL)
		}
		return nil
	default:
		return fmt.Errorf("invalid URL scheme %q: must be http (localhost only) or https", u.Scheme)
	}
}
