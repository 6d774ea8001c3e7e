// Package messaging_tools exposes Telnyx messaging operations as MCP tools.
package messaging_tools

import (
	"context"
	"fmt"

	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/telnyx"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/common"
)

// Descriptors returns the messaging tool catalog entries.
func Descriptors(client *telnyx.Client) []registry.Descriptor {
	return []registry.Descriptor{
		{
			Name:        "send_message",
			Description: "Send an SMS or MMS message from a Telnyx number. Provide media_urls to send MMS.",
			Service:     instrumentation.ServiceMessaging,
			Params: []registry.Param{
				{Name: "from", Type: registry.TypeString, Description: "Sending phone number in E.164 format", Required: true},
				{Name: "to", Type: registry.TypeString, Description: "Destination phone number in E.164 format", Required: true},
				{Name: "text", Type: registry.TypeString, Description: "Message body"},
				{Name: "media_urls", Type: registry.TypeArray, Description: "List of media URLs to attach (MMS)"},
				{Name: "messaging_profile_id", Type: registry.TypeString, Description: "Messaging profile to send through"},
				{Name: "webhook_url", Type: registry.TypeString, Description: "Delivery webhook override for this message"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				params := telnyx.SendMessageParams{
					From:               common.String(args, "from"),
					To:                 common.String(args, "to"),
					Text:               common.String(args, "text"),
					MediaURLs:          common.StringSlice(args, "media_urls"),
					MessagingProfileID: common.String(args, "messaging_profile_id"),
					WebhookURL:         common.String(args, "webhook_url"),
				}
				if params.Text == "" && len(params.MediaURLs) == 0 {
					return "", fmt.Errorf("send_message requires text or media_urls")
				}
				msg, err := client.SendMessage(ctx, params)
				if err != nil {
					return "", err
				}
				body, err := common.FormatJSON(msg.Raw)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Message %s queued:\n%s", msg.ID, body), nil
			},
		},
		{
			Name:        "get_message",
			Description: "Fetch a previously sent or received message by its ID, including delivery status.",
			Service:     instrumentation.ServiceMessaging,
			Params: []registry.Param{
				{Name: "id", Type: registry.TypeString, Description: "Message ID", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				msg, err := client.GetMessage(ctx, common.String(args, "id"))
				if err != nil {
					return "", err
				}
				return common.FormatJSON(msg.Raw)
			},
		},
	}
}
