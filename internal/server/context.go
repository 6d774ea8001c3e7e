package server

import (
	"context"
	"sync"

	"github.com/voxkit/telnyx-mcp-gateway/internal/auth"
	"github.com/voxkit/telnyx-mcp-gateway/internal/config"
	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/telnyx"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tunnel"
	"github.com/voxkit/telnyx-mcp-gateway/internal/webhook"
)

// ServerContext holds the shared dependencies of a running gateway.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	config   config.Config
	telnyx   *telnyx.Client
	registry *registry.Registry

	webhookBuffer *webhook.Buffer
	tunnelManager *tunnel.Manager

	authenticator *auth.Authenticator
	provider      *instrumentation.Provider

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context wrapping the given dependencies.
// The webhook buffer and tunnel manager may be nil when the receiver is
// disabled.
func NewServerContext(ctx context.Context, cfg config.Config, client *telnyx.Client, reg *registry.Registry) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		config:   cfg,
		telnyx:   client,
		registry: reg,
	}
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the gateway configuration.
func (sc *ServerContext) Config() config.Config {
	return sc.config
}

// TelnyxClient returns the Telnyx API client.
func (sc *ServerContext) TelnyxClient() *telnyx.Client {
	return sc.telnyx
}

// Registry returns the tool registry.
func (sc *ServerContext) Registry() *registry.Registry {
	return sc.registry
}

// SetWebhookBuffer attaches the webhook event buffer.
func (sc *ServerContext) SetWebhookBuffer(buffer *webhook.Buffer) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.webhookBuffer = buffer
}

// WebhookBuffer returns the webhook event buffer, or nil when the receiver
// is disabled.
func (sc *ServerContext) WebhookBuffer() *webhook.Buffer {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.webhookBuffer
}

// SetTunnelManager attaches the tunnel manager.
func (sc *ServerContext) SetTunnelManager(manager *tunnel.Manager) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.tunnelManager = manager
}

// TunnelManager returns the tunnel manager, or nil when tunnelling is
// disabled.
func (sc *ServerContext) TunnelManager() *tunnel.Manager {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.tunnelManager
}

// SetAuthenticator attaches the token authenticator.
func (sc *ServerContext) SetAuthenticator(a *auth.Authenticator) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.authenticator = a
}

// Authenticator returns the token authenticator, or nil for stdio transport.
func (sc *ServerContext) Authenticator() *auth.Authenticator {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.authenticator
}

// SetInstrumentationProvider attaches the instrumentation provider.
func (sc *ServerContext) SetInstrumentationProvider(p *instrumentation.Provider) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.provider = p
}

// InstrumentationProvider returns the instrumentation provider, which may
// be nil when instrumentation is disabled.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.provider
}

// Metrics returns the metrics recorder. Never nil; a no-op recorder is
// returned when instrumentation is disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.provider == nil {
		return &instrumentation.Metrics{}
	}
	return sc.provider.Metrics()
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and stops the tunnel if one is
// running. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	manager := sc.tunnelManager
	sc.mu.Unlock()

	if manager != nil {
		if err := manager.Stop(); err != nil {
			sc.cancel()
			return err
		}
	}
	sc.cancel()
	return nil
}
