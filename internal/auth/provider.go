package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/voxkit/telnyx-mcp-gateway/internal/config"
)

// Provider performs the authorization-code exchange against the configured
// identity provider and resolves the resulting identity.
type Provider struct {
	oauth       *oauth2.Config
	userinfoURL string
	httpClient  *http.Client
}

// NewProvider builds a Provider from the OAuth configuration. redirectURL
// is the gateway's own /auth/callback endpoint.
func NewProvider(cfg config.OAuth, redirectURL string) (*Provider, error) {
	if cfg.ClientID == "" || cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("oauth provider requires client ID, auth URL and token URL")
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userinfoURL: cfg.UserinfoURL,
		httpClient:  http.DefaultClient,
	}, nil
}

// AuthCodeURL returns the provider URL the user visits to authorize.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange swaps an authorization code for the user's identity. Provider
// failures are returned as-is; there is no retry.
func (p *Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return p.fetchIdentity(ctx, token)
}

// userinfo is the OpenID Connect userinfo response subset the gateway uses.
type userinfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

func (p *Provider) fetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	if p.userinfoURL == "" {
		return nil, fmt.Errorf("userinfo URL not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("userinfo response has no subject")
	}
	return &Identity{Subject: info.Subject, Email: info.Email, Name: info.Name}, nil
}
