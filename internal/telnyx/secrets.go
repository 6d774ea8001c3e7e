package telnyx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// CreateSecretParams are the inputs for CreateSecret. Type is "bearer" or
// "basic"; Value (and Username for basic) carry the credential material.
type CreateSecretParams struct {
	Identifier string `json:"identifier"`
	Type       string `json:"type"`
	Value      string `json:"value,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
}

// CreateSecret stores an integration secret for use by other Telnyx
// features. The returned object never contains the secret material.
func (c *Client) CreateSecret(ctx context.Context, params CreateSecretParams) (json.RawMessage, error) {
	var env objectEnvelope
	if err := c.do(ctx, "secrets.create", http.MethodPost, "/integration_secrets", nil, params, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListSecrets returns stored integration secrets. Secret values are never
// included in the response.
func (c *Client) ListSecrets(ctx context.Context, pageSize, pageNumber int) ([]json.RawMessage, error) {
	q := url.Values{}
	if pageSize > 0 {
		q.Set("page[size]", strconv.Itoa(pageSize))
	}
	if pageNumber > 0 {
		q.Set("page[number]", strconv.Itoa(pageNumber))
	}
	var env listEnvelope
	if err := c.do(ctx, "secrets.list", http.MethodGet, "/integration_secrets", q, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// DeleteSecret removes an integration secret by ID.
func (c *Client) DeleteSecret(ctx context.Context, id string) error {
	return c.do(ctx, "secrets.delete", http.MethodDelete, "/integration_secrets/"+id, nil, nil, nil)
}
