package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/voxkit/telnyx-mcp-gateway/internal/auth"
	"github.com/voxkit/telnyx-mcp-gateway/internal/config"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/webhook"
)

const gatewayTestBaseURL = "http://localhost:8080"

func newTestGateway(t *testing.T) (*GatewayHTTPServer, *auth.Authenticator, *webhook.Buffer) {
	t.Helper()

	cfg := config.Config{
		BaseURL:          gatewayTestBaseURL,
		DisableStreaming: true,
		OAuth: config.OAuth{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			AuthURL:      "http://localhost:9000/authorize",
			TokenURL:     "http://localhost:9000/token",
			UserinfoURL:  "http://localhost:9000/userinfo",
		},
	}

	catalog := []registry.Descriptor{
		{
			Name:        "ping",
			Description: "Reply with pong",
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return "pong", nil
			},
		},
	}
	reg, err := registry.New(catalog, registry.Filter{})
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}

	sc := NewServerContext(context.Background(), cfg, nil, reg)
	t.Cleanup(func() { _ = sc.Shutdown() })

	authenticator, err := auth.NewAuthenticator("test-secret", config.DefaultJWTExpiry)
	if err != nil {
		t.Fatalf("failed to create authenticator: %v", err)
	}
	sc.SetAuthenticator(authenticator)

	provider, err := auth.NewProvider(cfg.OAuth, gatewayTestBaseURL+"/auth/callback")
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	handlers := auth.NewHandlers(provider, authenticator, gatewayTestBaseURL, nil)
	middleware := auth.NewMiddleware(authenticator, gatewayTestBaseURL, nil)

	buffer := webhook.NewBuffer(10)
	sc.SetWebhookBuffer(buffer)
	webhookHandler := webhook.NewHandler(buffer, nil, nil)

	mcpSrv := mcpserver.NewMCPServer("telnyx-mcp-gateway", "test",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	registry.RegisterAll(reg, mcpSrv, nil)

	gateway, err := NewGatewayHTTPServer(sc, mcpSrv, handlers, middleware, webhookHandler, NewHealthChecker(sc, "test"))
	if err != nil {
		t.Fatalf("failed to create gateway server: %v", err)
	}
	return gateway, authenticator, buffer
}

func TestGatewayHTTPServer_RejectsNonLoopbackHTTP(t *testing.T) {
	cfg := config.Config{BaseURL: "http://example.com"}
	sc := NewServerContext(context.Background(), cfg, nil, nil)
	defer func() { _ = sc.Shutdown() }()

	_, err := NewGatewayHTTPServer(sc, nil, nil, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for non-loopback http base URL")
	}
}

func TestGatewayHTTPServer_HealthOpen(t *testing.T) {
	gateway, _, _ := newTestGateway(t)
	handler := gateway.Handler()

	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}

func TestGatewayHTTPServer_MCPRequiresToken(t *testing.T) {
	gateway, _, _ := newTestGateway(t)
	handler := gateway.Handler()

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if got := rr.Header().Get("WWW-Authenticate"); !strings.Contains(got, "Bearer") {
		t.Errorf("WWW-Authenticate = %q, want Bearer challenge", got)
	}

	var body struct {
		JSONRPC string `json:"jsonrpc"`
		Error   struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode 401 body: %v", err)
	}
	if body.Error.Code != -32001 {
		t.Errorf("error code = %d, want -32001", body.Error.Code)
	}
}

func TestGatewayHTTPServer_MCPStreamAliasRequiresToken(t *testing.T) {
	gateway, _, _ := newTestGateway(t)
	handler := gateway.Handler()

	req := httptest.NewRequest(http.MethodPost, "/mcp/stream", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestGatewayHTTPServer_MCPInitializeWithToken(t *testing.T) {
	gateway, authenticator, _ := newTestGateway(t)
	handler := gateway.Handler()

	token, _, err := authenticator.Issue(auth.Identity{Subject: "user-1"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	initReq := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(initReq))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "telnyx-mcp-gateway") {
		t.Errorf("expected server info in response, got %s", rr.Body.String())
	}
}

func TestGatewayHTTPServer_ToolsListWithoutSession(t *testing.T) {
	gateway, authenticator, _ := newTestGateway(t)
	handler := gateway.Handler()

	token, _, err := authenticator.Issue(auth.Identity{Subject: "user-1"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	// A bare tools/list with no prior initialize and no session header
	// must dispatch; each request stands alone.
	req := httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var body struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode tools/list response: %v (body: %s)", err, rr.Body.String())
	}
	if body.Error != nil {
		t.Fatalf("tools/list returned error %d %q, want result", body.Error.Code, body.Error.Message)
	}
	if len(body.Result.Tools) != 1 || body.Result.Tools[0].Name != "ping" {
		t.Errorf("tools = %+v, want the single registered tool", body.Result.Tools)
	}
}

func TestGatewayHTTPServer_ToolCallWithoutSession(t *testing.T) {
	gateway, authenticator, _ := newTestGateway(t)
	handler := gateway.Handler()

	token, _, err := authenticator.Issue(auth.Identity{Subject: "user-1"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"ping","arguments":{}}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "pong") {
		t.Errorf("expected tool result in response, got %s", rr.Body.String())
	}
}

func TestGatewayHTTPServer_WebhookOpenAndStores(t *testing.T) {
	gateway, _, buffer := newTestGateway(t)
	handler := gateway.Handler()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/telnyx",
		strings.NewReader(`{"data":{"event_type":"message.received","id":"evt-1"}}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "success") {
		t.Errorf("expected success ack, got %s", rr.Body.String())
	}

	events := buffer.Events()
	if len(events) != 1 {
		t.Fatalf("buffered events = %d, want 1", len(events))
	}
	if events[0].EventType != "message.received" {
		t.Errorf("event type = %q, want message.received", events[0].EventType)
	}
}

func TestGatewayHTTPServer_AuthURLOpen(t *testing.T) {
	gateway, _, _ := newTestGateway(t)
	handler := gateway.Handler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/url", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "auth_url") {
		t.Errorf("expected auth_url in body, got %s", rr.Body.String())
	}
}

func TestValidateHTTPSRequirement(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"https allowed", "https://gateway.example.com", false},
		{"http localhost allowed", "http://localhost:8080", false},
		{"http loopback v4 allowed", "http://127.0.0.1:8080", false},
		{"http loopback v6 allowed", "http://[::1]:8080", false},
		{"http non-loopback rejected", "http://gateway.example.com", true},
		{"empty rejected", "", true},
		{"bad scheme rejected", "ftp://gateway.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHTTPSRequirement(tt.baseURL)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
