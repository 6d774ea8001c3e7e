// Package connection_tools exposes Telnyx connection listing as MCP tools.
package connection_tools

import (
	"context"

	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/telnyx"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/common"
)

// Descriptors returns the connection tool catalog entries.
func Descriptors(client *telnyx.Client) []registry.Descriptor {
	return []registry.Descriptor{
		{
			Name:        "list_connections",
			Description: "List the account's connections (Call Control applications, credential connections and similar).",
			Service:     instrumentation.ServiceConnections,
			Params: []registry.Param{
				{Name: "page_size", Type: registry.TypeNumber, Description: "Results per page (default 20)"},
				{Name: "page_number", Type: registry.TypeNumber, Description: "Page to fetch"},
				{Name: "name_filter", Type: registry.TypeString, Description: "Filter by connection name substring"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				connections, err := client.ListConnections(ctx, telnyx.ListConnectionsParams{
					PageSize:   common.Int(args, "page_size", 0),
					PageNumber: common.Int(args, "page_number", 0),
					NameFilter: common.String(args, "name_filter"),
				})
				if err != nil {
					return "", err
				}
				return common.FormatList("connections", connections)
			},
		},
		{
			Name:        "get_connection",
			Description: "Fetch a connection's configuration by its ID.",
			Service:     instrumentation.ServiceConnections,
			Params: []registry.Param{
				{Name: "id", Type: registry.TypeString, Description: "Connection ID", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				conn, err := client.GetConnection(ctx, common.String(args, "id"))
				if err != nil {
					return "", err
				}
				return common.FormatJSON(conn)
			},
		},
	}
}
