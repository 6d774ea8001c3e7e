package connection_tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/telnyx"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *telnyx.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return telnyx.NewClient("KEY_test", telnyx.WithBaseURL(srv.URL))
}

func findTool(t *testing.T, descs []registry.Descriptor, name string) registry.Descriptor {
	t.Helper()
	for _, d := range descs {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("tool %s not in catalog", name)
	return registry.Descriptor{}
}

func TestDescriptors(t *testing.T) {
	descs := Descriptors(nil)
	require.Len(t, descs, 2)
	for _, d := range descs {
		assert.Equal(t, "connections", d.Service)
	}
}

func TestListConnections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/connections", r.URL.Path)
		assert.Equal(t, "gateway", r.URL.Query().Get("filter[connection_name][contains]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"conn-1","connection_name":"gateway-prod"}]}`))
	})

	tool := findTool(t, Descriptors(client), "list_connections")
	out, err := tool.Handler(context.Background(), map[string]any{"name_filter": "gateway"})
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 connections:")
	assert.Contains(t, out, "gateway-prod")
}

func TestGetConnection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/connections/conn-5", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"conn-5","active":true}}`))
	})

	tool := findTool(t, Descriptors(client), "get_connection")
	out, err := tool.Handler(context.Background(), map[string]any{"id": "conn-5"})
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "conn-5"`)
}
