package telnyx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// ListConnectionsParams filter the connection listing.
type ListConnectionsParams struct {
	PageSize   int
	PageNumber int
	NameFilter string
}

// ListConnections returns the account's connections (Call Control
// applications, credential connections and the like).
func (c *Client) ListConnections(ctx context.Context, params ListConnectionsParams) ([]json.RawMessage, error) {
	q := url.Values{}
	if params.PageSize > 0 {
		q.Set("page[size]", strconv.Itoa(params.PageSize))
	}
	if params.PageNumber > 0 {
		q.Set("page[number]", strconv.Itoa(params.PageNumber))
	}
	if params.NameFilter != "" {
		q.Set("filter[connection_name][contains]", params.NameFilter)
	}
	var env listEnvelope
	if err := c.do(ctx, "connections.list", http.MethodGet, "/connections", q, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetConnection retrieves a single connection by ID.
func (c *Client) GetConnection(ctx context.Context, id string) (json.RawMessage, error) {
	var env objectEnvelope
	if err := c.do(ctx, "connections.get", http.MethodGet, "/connections/"+id, nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}
