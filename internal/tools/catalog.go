// Package tools assembles the gateway tool catalog from the per-service
// tool packages. Catalog order is the order tools are listed to clients.
package tools

import (
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/telnyx"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/call_tools"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/connection_tools"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/messaging_tools"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/number_tools"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/secret_tools"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/webhook_tools"
	"github.com/voxkit/telnyx-mcp-gateway/internal/webhook"
)

// Catalog returns every tool the gateway can expose. The webhook buffer may
// be nil when the webhook receiver is disabled; the webhook tools then
// report that at call time.
func Catalog(client *telnyx.Client, buffer *webhook.Buffer) []registry.Descriptor {
	var catalog []registry.Descriptor
	catalog = append(catalog, messaging_tools.Descriptors(client)...)
	catalog = append(catalog, number_tools.Descriptors(client)...)
	catalog = append(catalog, call_tools.Descriptors(client)...)
	catalog = append(catalog, connection_tools.Descriptors(client)...)
	catalog = append(catalog, secret_tools.Descriptors(client)...)
	catalog = append(catalog, webhook_tools.Descriptors(buffer)...)
	return catalog
}
