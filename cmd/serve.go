package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/voxkit/telnyx-mcp-gateway/internal/auth"
	"github.com/voxkit/telnyx-mcp-gateway/internal/config"
	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/resources"
	"github.com/voxkit/telnyx-mcp-gateway/internal/server"
	"github.com/voxkit/telnyx-mcp-gateway/internal/supervisor"
	"github.com/voxkit/telnyx-mcp-gateway/internal/telnyx"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/common"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tunnel"
	"github.com/voxkit/telnyx-mcp-gateway/internal/webhook"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode bool

		transport string
		httpAddr  string
		baseURL   string

		telnyxAPIKey  string
		telnyxAPIBase string

		includeTools []string
		excludeTools []string
		toolTimeout  int

		webhookEnabled bool
		webhookHistory int
		ngrokAuthtoken string

		jwtSecret      string
		jwtExpiryHours int

		oauthClientID     string
		oauthClientSecret string
		oauthAuthURL      string
		oauthTokenURL     string
		oauthUserinfoURL  string

		metricsEnabled   bool
		metricsAddr      string
		disableStreaming bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP gateway",
		Long: `Start the Telnyx MCP gateway.

Supports two transports:
  - stdio: standard input/output for desktop MCP clients (default)
  - streamable-http: HTTP transport with bearer authentication

HTTP Transport:
  Clients must present a bearer token on /mcp. Tokens are issued by the
  gateway after an OAuth authorization-code flow against the configured
  identity provider (--oauth-* flags). Responses stream as SSE when the
  client accepts text/event-stream, buffered JSON otherwise.

Webhooks:
  --webhook-enabled starts an inbound receiver on /webhooks/telnyx and
  publishes it through an ngrok tunnel (--ngrok-authtoken). Received
  events are kept in a bounded in-memory history, readable through the
  get_webhook_events tool and the resource://webhook/* resources. A
  tunnel that fails to establish aborts startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Environment is the baseline; explicitly set flags win.
			cfg := config.FromEnv()
			flags := cmd.Flags()
			if flags.Changed("transport") {
				cfg.Transport = transport
			}
			if flags.Changed("http-addr") {
				cfg.HTTPAddr = httpAddr
			}
			if flags.Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if flags.Changed("telnyx-api-key") {
				cfg.TelnyxAPIKey = telnyxAPIKey
			}
			if flags.Changed("telnyx-api-base") {
				cfg.TelnyxAPIBase = telnyxAPIBase
			}
			if flags.Changed("include-tools") {
				cfg.IncludeTools = includeTools
			}
			if flags.Changed("exclude-tools") {
				cfg.ExcludeTools = excludeTools
			}
			if flags.Changed("tool-timeout") {
				cfg.ToolTimeout = time.Duration(toolTimeout) * time.Second
			}
			if flags.Changed("webhook-enabled") {
				cfg.WebhookEnabled = webhookEnabled
			}
			if flags.Changed("webhook-history") {
				cfg.WebhookHistory = webhookHistory
			}
			if flags.Changed("ngrok-authtoken") {
				cfg.NgrokAuthtoken = ngrokAuthtoken
			}
			if flags.Changed("jwt-secret") {
				cfg.JWTSecret = jwtSecret
			}
			if flags.Changed("jwt-expiry-hours") {
				cfg.JWTExpiry = time.Duration(jwtExpiryHours) * time.Hour
			}
			if flags.Changed("oauth-client-id") {
				cfg.OAuth.ClientID = oauthClientID
			}
			if flags.Changed("oauth-client-secret") {
				cfg.OAuth.ClientSecret = oauthClientSecret
			}
			if flags.Changed("oauth-auth-url") {
				cfg.OAuth.AuthURL = oauthAuthURL
			}
			if flags.Changed("oauth-token-url") {
				cfg.OAuth.TokenURL = oauthTokenURL
			}
			if flags.Changed("oauth-userinfo-url") {
				cfg.OAuth.UserinfoURL = oauthUserinfoURL
			}
			if flags.Changed("metrics-enabled") {
				cfg.MetricsEnabled = metricsEnabled
			}
			if flags.Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if flags.Changed("disable-streaming") {
				cfg.DisableStreaming = disableStreaming
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return runServeFunc(cfg, debugMode)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", config.TransportStdio, "Transport type: stdio or streamable-http. Can also use MCP_TRANSPORT env var.")
	cmd.Flags().StringVar(&httpAddr, "http-addr", config.DefaultHTTPAddr, "HTTP server address (streamable-http transport). Can also use MCP_HTTP_ADDR env var.")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL used in OAuth discovery metadata. Can also use MCP_BASE_URL env var. Example: https://mcp.example.com")
	cmd.Flags().StringVar(&telnyxAPIKey, "telnyx-api-key", "", "Telnyx API key (required). Can also use TELNYX_API_KEY env var.")
	cmd.Flags().StringVar(&telnyxAPIBase, "telnyx-api-base", config.DefaultTelnyxAPIBase, "Telnyx API base URL. Can also use TELNYX_API_BASE env var.")
	cmd.Flags().StringSliceVar(&includeTools, "include-tools", nil, "Only expose these tools (comma-separated). Wins over --exclude-tools. Can also use TELNYX_MCP_INCLUDE_TOOLS env var.")
	cmd.Flags().StringSliceVar(&excludeTools, "exclude-tools", nil, "Hide these tools (comma-separated). Can also use TELNYX_MCP_EXCLUDE_TOOLS env var.")
	cmd.Flags().IntVar(&toolTimeout, "tool-timeout", int(config.DefaultToolTimeout/time.Second), "Per-tool dispatch timeout in seconds. Can also use TOOL_TIMEOUT_SECONDS env var.")
	cmd.Flags().BoolVar(&webhookEnabled, "webhook-enabled", false, "Enable the inbound webhook receiver and ngrok tunnel. Can also use WEBHOOK_ENABLED env var.")
	cmd.Flags().IntVar(&webhookHistory, "webhook-history", config.DefaultWebhookHistory, "Webhook event history capacity. Can also use WEBHOOK_HISTORY_SIZE env var.")
	cmd.Flags().StringVar(&ngrokAuthtoken, "ngrok-authtoken", "", "ngrok authtoken for the webhook tunnel. Can also use NGROK_AUTHTOKEN env var.")
	cmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "HMAC secret for bearer token signing (required for streamable-http). Can also use JWT_SECRET_KEY env var.")
	cmd.Flags().IntVar(&jwtExpiryHours, "jwt-expiry-hours", int(config.DefaultJWTExpiry/time.Hour), "Bearer token lifetime in hours. Can also use JWT_EXPIRATION_HOURS env var.")
	cmd.Flags().StringVar(&oauthClientID, "oauth-client-id", "", "OAuth client ID at the identity provider. Can also use OAUTH_CLIENT_ID env var.")
	cmd.Flags().StringVar(&oauthClientSecret, "oauth-client-secret", "", "OAuth client secret at the identity provider. Can also use OAUTH_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&oauthAuthURL, "oauth-auth-url", "", "Identity provider authorization endpoint. Can also use OAUTH_AUTH_URL env var.")
	cmd.Flags().StringVar(&oauthTokenURL, "oauth-token-url", "", "Identity provider token endpoint. Can also use OAUTH_TOKEN_URL env var.")
	cmd.Flags().StringVar(&oauthUserinfoURL, "oauth-userinfo-url", "", "Identity provider userinfo endpoint. Can also use OAUTH_USERINFO_URL env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Start the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Always answer /mcp with buffered JSON instead of SSE (for clients that cannot consume event streams)")

	return cmd
}

// runServeFunc indirection lets tests observe the resolved configuration.
var runServeFunc = runServe

func runServe(cfg config.Config, debugMode bool) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := setupLogger(cfg.Transport, debugMode)

	// Instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if cfg.Transport == config.TransportStdio {
		// stdio sessions are short-lived local processes; a metrics
		// endpoint has nowhere to bind without clashing with the client.
		instrConfig.Enabled = false
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var auditLogger *instrumentation.AuditLogger
	if provider.Enabled() {
		auditLogger = instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	}

	// Telnyx client and tool catalog
	clientOpts := []telnyx.Option{
		telnyx.WithBaseURL(cfg.TelnyxAPIBase),
		telnyx.WithLogger(logger),
	}
	if provider.Enabled() {
		clientOpts = append(clientOpts, telnyx.WithRecorder(provider.Metrics()))
	}
	client := telnyx.NewClient(cfg.TelnyxAPIKey, clientOpts...)

	if cfg.Transport == config.TransportStreamableHTTP && cfg.BaseURL == "" {
		cfg.BaseURL = autoDetectBaseURL(cfg.HTTPAddr)
		logger.Info("no base URL configured, using auto-detected",
			slog.String("base_url", cfg.BaseURL))
	}

	var buffer *webhook.Buffer
	if cfg.WebhookEnabled {
		buffer = webhook.NewBuffer(cfg.WebhookHistory)
	}

	catalog := common.InstrumentAll(tools.Catalog(client, buffer), auditLogger)
	reg, err := registry.New(catalog,
		registry.Filter{Include: cfg.IncludeTools, Exclude: cfg.ExcludeTools},
		registry.WithLogger(logger),
		registry.WithToolTimeout(cfg.ToolTimeout))
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}

	serverContext := server.NewServerContext(shutdownCtx, cfg, client, reg)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()
	if buffer != nil {
		serverContext.SetWebhookBuffer(buffer)
	}
	if provider.Enabled() {
		serverContext.SetInstrumentationProvider(provider)
	}

	// MCP server with tools and resources
	mcpSrv := mcpserver.NewMCPServer("telnyx-mcp-gateway", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithRecovery())

	var recorder registry.Recorder
	if provider.Enabled() {
		recorder = provider.Metrics()
	}
	registry.RegisterAll(reg, mcpSrv, recorder)

	// Webhook tunnel. A tunnel that cannot establish is fatal.
	var tunnelManager *tunnel.Manager
	if cfg.WebhookEnabled {
		tunnelManager = tunnel.NewManager(tunnel.NgrokDialer{}, cfg.NgrokAuthtoken,
			tunnel.WithLogger(logger),
			tunnel.WithRecorder(serverContext.Metrics()))
		serverContext.SetTunnelManager(tunnelManager)

		webhookMux := http.NewServeMux()
		webhookMux.Handle("POST /webhooks/telnyx", webhook.NewHandler(buffer, logger, serverContext.Metrics()))
		if err := tunnelManager.Start(shutdownCtx, webhookMux); err != nil {
			return fmt.Errorf("webhook tunnel failed to start: %w", err)
		}
		logger.Info("webhook tunnel established",
			slog.String("url", tunnelManager.URL()))
	}

	resources.RegisterWebhookResources(mcpSrv, buffer, tunnelManager)

	switch cfg.Transport {
	case config.TransportStdio:
		return runStdioServer(shutdownCtx, mcpSrv, cancel, logger)
	case config.TransportStreamableHTTP:
		return runHTTPServer(shutdownCtx, cfg, serverContext, mcpSrv, provider, auditLogger, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s", cfg.Transport)
	}
}

// autoDetectBaseURL derives a loopback base URL from the listen address for
// local development when no public URL is configured.
func autoDetectBaseURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return fmt.Sprintf("http://localhost%s", addr)
	}
	return fmt.Sprintf("http://%s", addr)
}

// setupLogger configures the process logger. Logs always go to stderr:
// with the stdio transport, stdout carries the protocol stream.
func setupLogger(transport string, debugMode bool) *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(logging.Transport(transport))
	slog.SetDefault(logger)
	return logger
}

// runStdioServer serves MCP over stdin/stdout until the client disconnects,
// the context is cancelled, or the parent process dies. Desktop clients
// spawn the gateway directly, so parent death means the session is over.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, cancel context.CancelFunc, logger *slog.Logger) error {
	sup := supervisor.New(cancel, supervisor.WithLogger(logger))
	go sup.Run(ctx)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}

func runHTTPServer(
	ctx context.Context,
	cfg config.Config,
	serverContext *server.ServerContext,
	mcpSrv *mcpserver.MCPServer,
	provider *instrumentation.Provider,
	auditLogger *instrumentation.AuditLogger,
	logger *slog.Logger,
) error {
	baseURL := cfg.BaseURL

	authenticator, err := auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}
	serverContext.SetAuthenticator(authenticator)

	oauthProvider, err := auth.NewProvider(cfg.OAuth, baseURL+"/auth/callback")
	if err != nil {
		return fmt.Errorf("failed to create OAuth provider: %w", err)
	}

	authHandlers := auth.NewHandlers(oauthProvider, authenticator, baseURL, logger)
	if auditLogger != nil {
		authHandlers.SetAuditLogger(auditLogger)
	}
	authMiddleware := auth.NewMiddleware(authenticator, baseURL, logger)
	if provider.Enabled() {
		authHandlers.SetRecorder(provider.Metrics())
		authMiddleware.SetRecorder(provider.Metrics())
	}

	var webhookHandler http.Handler
	if cfg.WebhookEnabled {
		webhookHandler = webhook.NewHandler(serverContext.WebhookBuffer(), logger, serverContext.Metrics())
	}

	health := server.NewHealthChecker(serverContext, version)
	gateway, err := server.NewGatewayHTTPServer(serverContext, mcpSrv, authHandlers, authMiddleware, webhookHandler, health)
	if err != nil {
		return err
	}

	// Dedicated metrics server
	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(cfg.MetricsAddr, provider)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
		logger.Info("metrics server listening", slog.String("addr", metricsServer.Addr()))
	}

	logger.Info("gateway listening",
		slog.String("addr", cfg.HTTPAddr),
		slog.String("base_url", baseURL),
		slog.Bool("webhooks", cfg.WebhookEnabled),
		slog.Bool("streaming", !cfg.DisableStreaming))

	health.SetReady(true)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := gateway.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping gateway")
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := gateway.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down gateway: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("gateway stopped with error: %w", err)
		}
	}

	logger.Info("gateway stopped")
	return nil
}
