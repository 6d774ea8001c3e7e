// Package webhook_tools exposes the gateway's buffered webhook history as
// MCP tools, letting a client inspect recently received Telnyx events.
package webhook_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/common"
	"github.com/voxkit/telnyx-mcp-gateway/internal/webhook"
)

// Descriptors returns the webhook inspection tool catalog entries. A nil
// buffer yields tools that report the webhook receiver as disabled.
func Descriptors(buffer *webhook.Buffer) []registry.Descriptor {
	return []registry.Descriptor{
		{
			Name:        "get_webhook_events",
			Description: "Return recently received Telnyx webhook events, newest last. Optionally filter by event type and cap the count.",
			Service:     instrumentation.ServiceWebhooks,
			Params: []registry.Param{
				{Name: "event_type", Type: registry.TypeString, Description: "Only return events of this exact type, e.g. message.received"},
				{Name: "limit", Type: registry.TypeNumber, Description: "Return at most this many of the newest matching events"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				if buffer == nil {
					return "", fmt.Errorf("webhook receiver is not enabled")
				}

				events := buffer.Events()
				if want := common.String(args, "event_type"); want != "" {
					filtered := events[:0]
					for _, e := range events {
						if e.EventType == want {
							filtered = append(filtered, e)
						}
					}
					events = filtered
				}
				if limit := common.Int(args, "limit", 0); limit > 0 && len(events) > limit {
					events = events[len(events)-limit:]
				}

				if events == nil {
					events = []webhook.Event{}
				}
				body, err := json.MarshalIndent(events, "", "  ")
				if err != nil {
					return "", fmt.Errorf("format events: %w", err)
				}
				return fmt.Sprintf("Found %d webhook events (%d received in total):\n%s",
					len(events), buffer.Total(), body), nil
			},
		},
	}
}
