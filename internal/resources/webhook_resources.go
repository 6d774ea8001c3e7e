package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/voxkit/telnyx-mcp-gateway/internal/tunnel"
	"github.com/voxkit/telnyx-mcp-gateway/internal/webhook"
)

// RegisterWebhookResources registers resources exposing the webhook receiver
// state: tunnel status and the buffered event history.
func RegisterWebhookResources(s *mcpserver.MCPServer, buffer *webhook.Buffer, manager *tunnel.Manager) {
	infoResource := mcp.NewResource(
		"resource://webhook/info",
		"Webhook Receiver Info",
		mcp.WithResourceDescription("Tunnel state and public URL of the inbound webhook receiver"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(infoResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleWebhookInfo(request, buffer, manager)
	})

	eventsResource := mcp.NewResource(
		"resource://webhook/events",
		"Recent Webhook Events",
		mcp.WithResourceDescription("Recently received Telnyx webhook events, oldest first"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(eventsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleWebhookEvents(request, buffer)
	})
}

// handleWebhookInfo returns the tunnel status and buffer counters.
func handleWebhookInfo(request mcp.ReadResourceRequest, buffer *webhook.Buffer, manager *tunnel.Manager) ([]mcp.ResourceContents, error) {
	info := map[string]interface{}{
		"tunnel_state":     string(tunnel.StateDisabled),
		"webhook_endpoint": "/webhooks/telnyx",
		"buffer_capacity":  0,
		"buffered_events":  0,
		"total_events":     uint64(0),
	}

	if manager != nil {
		status := manager.Status()
		info["tunnel_state"] = string(status.State)
		if status.URL != "" {
			info["public_url"] = status.URL
			info["webhook_url"] = status.URL + "/webhooks/telnyx"
		}
		if status.LastError != "" {
			info["last_error"] = status.LastError
		}
		if !status.StartedAt.IsZero() {
			info["started_at"] = status.StartedAt
		}
	}

	if buffer != nil {
		info["buffer_capacity"] = buffer.Capacity()
		info["buffered_events"] = buffer.Len()
		info["total_events"] = buffer.Total()
	}

	jsonData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook info: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleWebhookEvents returns the buffered events, oldest first.
func handleWebhookEvents(request mcp.ReadResourceRequest, buffer *webhook.Buffer) ([]mcp.ResourceContents, error) {
	var events []webhook.Event
	if buffer != nil {
		events = buffer.Events()
	}
	if events == nil {
		events = []webhook.Event{}
	}

	jsonData, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook events: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
