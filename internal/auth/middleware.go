package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
)

type contextKey struct{}

// identityKey carries the verified identity through the request context.
var identityKey = contextKey{}

// IdentityFromContext returns the verified identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// Recorder receives auth metrics. Implemented by the instrumentation
// package; may be nil when metrics are disabled.
type Recorder interface {
	RecordTokenIssued(ctx context.Context)
	RecordAuthRejection(ctx context.Context, result string)
}

// Middleware enforces bearer-token auth on the MCP endpoint.
type Middleware struct {
	authenticator *Authenticator
	baseURL       string
	logger        *slog.Logger
	recorder      Recorder
}

// NewMiddleware creates the auth middleware. baseURL is the public gateway
// URL used in the discovery headers of 401 responses.
func NewMiddleware(authenticator *Authenticator, baseURL string, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{authenticator: authenticator, baseURL: baseURL, logger: logger}
}

// SetRecorder attaches a metrics recorder for auth rejections.
func (m *Middleware) SetRecorder(rec Recorder) {
	m.recorder = rec
}

// Wrap returns a handler that verifies the Authorization header before
// delegating to next. The verified identity is attached to the request
// context for audit logging.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			m.reject(r.Context(), "failure")
			m.unauthorized(w, "missing bearer token")
			return
		}

		identity, err := m.authenticator.Verify(token)
		if err != nil {
			m.logger.Debug("token rejected",
				logging.Err(err),
				slog.String("token", logging.SanitizeToken(token)))
			reason, result := "invalid token", "failure"
			if errors.Is(err, ErrExpiredToken) {
				reason, result = "token expired", "expired"
			}
			m.reject(r.Context(), result)
			m.unauthorized(w, reason)
			return
		}

		m.logger.Debug("request authenticated", logging.Subject(identity.Subject))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

func (m *Middleware) reject(ctx context.Context, result string) {
	if m.recorder != nil {
		m.recorder.RecordAuthRejection(ctx, result)
	}
}

// unauthorized writes the 401 response: discovery headers plus a JSON-RPC
// error body carrying the URL where a token can be obtained.
func (m *Middleware) unauthorized(w http.ResponseWriter, reason string) {
	metadataURL := m.baseURL + "/.well-known/oauth-protected-resource"
	w.Header().Set("WWW-Authenticate",
		fmt.Sprintf(`Bearer realm=%q, resource_metadata=%q`, m.baseURL, metadataURL))
	w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="resource-metadata"`, metadataURL))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]any{
		"jsonrpc": "2.0",
		"id":      nil,
		"error": map[string]any{
			"code":    -32001,
			"message": "Unauthorized: " + reason,
			"data": map[string]any{
				"oauth_url": m.baseURL + "/auth/url",
			},
		},
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		m.logger.Error("write unauthorized response", logging.Err(err))
	}
}

// bearerToken extracts the token from an Authorization header. The Bearer
// scheme comparison is case-insensitive per RFC 9110.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
