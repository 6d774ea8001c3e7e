package auth

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
)

// stateTTL bounds how long an issued authorization state stays valid.
const stateTTL = 10 * time.Minute

// AuditSink receives auth audit events. Implemented by the instrumentation
// package's audit logger; may be nil.
type AuditSink interface {
	LogTokenIssued(subject string, expiresAt time.Time)
	LogAuthRejection(reason string)
}

// Handlers serves the token bootstrap endpoints and the OAuth discovery
// documents.
type Handlers struct {
	provider      *Provider
	authenticator *Authenticator
	baseURL       string
	logger        *slog.Logger
	recorder      Recorder
	audit         AuditSink

	mu     sync.Mutex
	states map[string]time.Time
}

// NewHandlers creates the auth HTTP handlers.
func NewHandlers(provider *Provider, authenticator *Authenticator, baseURL string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		provider:      provider,
		authenticator: authenticator,
		baseURL:       baseURL,
		logger:        logger,
		states:        make(map[string]time.Time),
	}
}

// SetRecorder attaches a metrics recorder for token issuance.
func (h *Handlers) SetRecorder(rec Recorder) {
	h.recorder = rec
}

// SetAuditLogger attaches an audit sink for token issuance and rejections.
func (h *Handlers) SetAuditLogger(audit AuditSink) {
	h.audit = audit
}

// Register attaches the handlers to mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/url", h.handleAuthURL)
	mux.HandleFunc("GET /auth/callback", h.handleCallback)
	mux.HandleFunc("GET /.well-known/oauth-protected-resource", h.handleProtectedResource)
	mux.HandleFunc("GET /.well-known/oauth-authorization-server", h.handleAuthorizationServer)
	mux.HandleFunc("GET /.well-known/openid-configuration", h.handleAuthorizationServer)
}

// handleAuthURL returns the provider URL a user visits to authorize.
func (h *Handlers) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	h.rememberState(state)

	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": h.provider.AuthCodeURL(state),
	})
}

// handleCallback exchanges the authorization code, issues a bearer token
// and renders it for manual copy into the MCP client configuration.
func (h *Handlers) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		h.logger.Warn("authorization denied by provider",
			slog.String("provider_error", errParam))
		h.renderError(w, http.StatusBadRequest, "Authorization failed: "+errParam)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.renderError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}
	if !h.consumeState(q.Get("state")) {
		h.renderError(w, http.StatusBadRequest, "Unknown or expired state")
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("authorization code exchange failed", logging.Err(err))
		h.renderError(w, http.StatusBadGateway, "Code exchange with the identity provider failed")
		return
	}

	token, expiresAt, err := h.authenticator.Issue(*identity)
	if err != nil {
		h.logger.Error("token issue failed", logging.Err(err))
		h.renderError(w, http.StatusInternalServerError, "Token issuance failed")
		return
	}

	h.logger.Info("bearer token issued",
		logging.Subject(identity.Subject),
		slog.Time("expires_at", expiresAt))
	if h.recorder != nil {
		h.recorder.RecordTokenIssued(r.Context())
	}
	if h.audit != nil {
		h.audit.LogTokenIssued(identity.Subject, expiresAt)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	err = callbackPage.Execute(w, callbackData{
		Token:     token,
		Name:      identity.Name,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Error("render callback page", logging.Err(err))
	}
}

// handleProtectedResource serves the RFC 9728 protected-resource metadata.
func (h *Handlers) handleProtectedResource(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"resource":                 h.baseURL + "/mcp",
		"authorization_servers":    []string{h.baseURL},
		"bearer_methods_supported": []string{"header"},
	})
}

// handleAuthorizationServer serves the RFC 8414 authorization-server
// metadata pointing at the gateway's own bootstrap endpoints.
func (h *Handlers) handleAuthorizationServer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                h.baseURL,
		"authorization_endpoint":                h.baseURL + "/auth/url",
		"token_endpoint":                        h.baseURL + "/auth/callback",
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code"},
		"token_endpoint_auth_methods_supported": []string{"none"},
	})
}

func (h *Handlers) rememberState(state string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now()
	for s, issued := range h.states {
		if now.Sub(issued) > stateTTL {
			delete(h.states, s)
		}
	}
	h.states[state] = now
}

func (h *Handlers) consumeState(state string) bool {
	if state == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	issued, ok := h.states[state]
	if !ok {
		return false
	}
	delete(h.states, state)
	return time.Since(issued) <= stateTTL
}

func (h *Handlers) renderError(w http.ResponseWriter, status int, msg string) {
	if h.audit != nil {
		h.audit.LogAuthRejection(msg)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = errorPage.Execute(w, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type callbackData struct {
	Token     string
	Name      string
	ExpiresAt string
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorization Complete</title>
<style>
body { font-family: sans-serif; max-width: 42em; margin: 3em auto; }
code { display: block; word-break: break-all; padding: 1em; background: #f4f4f4; }
</style>
</head>
<body>
<h1>Authorization complete{{if .Name}}, {{.Name}}{{end}}</h1>
<p>Copy this token into your MCP client configuration as the bearer token.
It expires at {{.ExpiresAt}}.</p>
<code id="token">{{.Token}}</code>
<p><button onclick="navigator.clipboard.writeText(document.getElementById('token').textContent)">Copy token</button></p>
</body>
</html>
`))

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorization Failed</title></head>
<body style="font-family: sans-serif; max-width: 42em; margin: 3em auto;">
<h1>Authorization failed</h1>
<p>{{.}}</p>
</body>
</html>
`))
