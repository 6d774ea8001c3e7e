package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Transport selects how the MCP server is exposed.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Defaults applied when neither flag nor environment provides a value.
const (
	DefaultHTTPAddr       = ":8080"
	DefaultMetricsAddr    = ":9090"
	DefaultTelnyxAPIBase  = "https://api.telnyx.com/v2"
	DefaultWebhookHistory = 100
	DefaultJWTExpiry      = 24 * time.Hour
	DefaultToolTimeout    = 30 * time.Second
)

// OAuth holds the identity-provider settings used to bootstrap bearer
// tokens for the remote transport.
type OAuth struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserinfoURL  string
	RedirectURL  string
}

// Config is the resolved serve configuration.
type Config struct {
	Transport string
	HTTPAddr  string
	BaseURL   string

	TelnyxAPIKey  string
	TelnyxAPIBase string

	IncludeTools []string
	ExcludeTools []string
	ToolTimeout  time.Duration

	WebhookEnabled bool
	WebhookHistory int
	NgrokAuthtoken string

	JWTSecret string
	JWTExpiry time.Duration
	OAuth     OAuth

	MetricsEnabled   bool
	MetricsAddr      string
	DisableStreaming bool
}

// FromEnv builds a Config from environment variables with defaults applied.
func FromEnv() Config {
	cfg := Config{
		Transport:      envOr("MCP_TRANSPORT", TransportStdio),
		HTTPAddr:       envOr("MCP_HTTP_ADDR", DefaultHTTPAddr),
		BaseURL:        os.Getenv("MCP_BASE_URL"),
		TelnyxAPIKey:   os.Getenv("TELNYX_API_KEY"),
		TelnyxAPIBase:  envOr("TELNYX_API_BASE", DefaultTelnyxAPIBase),
		IncludeTools:   ParseToolList(os.Getenv("TELNYX_MCP_INCLUDE_TOOLS")),
		ExcludeTools:   ParseToolList(os.Getenv("TELNYX_MCP_EXCLUDE_TOOLS")),
		ToolTimeout:    envSeconds("TOOL_TIMEOUT_SECONDS", DefaultToolTimeout),
		WebhookEnabled: envBool("WEBHOOK_ENABLED", false),
		WebhookHistory: envInt("WEBHOOK_HISTORY_SIZE", DefaultWebhookHistory),
		NgrokAuthtoken: os.Getenv("NGROK_AUTHTOKEN"),
		JWTSecret:      os.Getenv("JWT_SECRET_KEY"),
		JWTExpiry:      envHours("JWT_EXPIRATION_HOURS", DefaultJWTExpiry),
		OAuth: OAuth{
			ClientID:     os.Getenv("OAUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
			AuthURL:      os.Getenv("OAUTH_AUTH_URL"),
			TokenURL:     os.Getenv("OAUTH_TOKEN_URL"),
			UserinfoURL:  os.Getenv("OAUTH_USERINFO_URL"),
		},
		MetricsEnabled: envBool("METRICS_ENABLED", false),
		MetricsAddr:    envOr("METRICS_ADDR", DefaultMetricsAddr),
	}
	return cfg
}

// Validate reports configuration errors that would prevent the gateway
// from serving.
func (c Config) Validate() error {
	if c.TelnyxAPIKey == "" {
		return fmt.Errorf("telnyx API key is required (set TELNYX_API_KEY or --telnyx-api-key)")
	}
	switch c.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("unknown transport %q (must be %q or %q)", c.Transport, TransportStdio, TransportStreamableHTTP)
	}
	if c.Transport == TransportStreamableHTTP && c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required for the %s transport (set JWT_SECRET_KEY)", TransportStreamableHTTP)
	}
	if c.WebhookEnabled && c.NgrokAuthtoken == "" {
		return fmt.Errorf("ngrok authtoken is required when webhooks are enabled (set NGROK_AUTHTOKEN)")
	}
	if c.WebhookHistory <= 0 {
		return fmt.Errorf("webhook history size must be positive, got %d", c.WebhookHistory)
	}
	return nil
}

// ParseToolList splits a comma-separated tool list, trimming whitespace and
// dropping empty entries. An empty input yields a nil slice.
func ParseToolList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func envHours(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Hour
}
