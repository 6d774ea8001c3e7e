// Package call_tools exposes Telnyx Call Control operations as MCP tools.
package call_tools

import (
	"context"
	"fmt"

	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/telnyx"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/common"
)

// Descriptors returns the call control tool catalog entries.
func Descriptors(client *telnyx.Client) []registry.Descriptor {
	return []registry.Descriptor{
		{
			Name:        "make_call",
			Description: "Start an outbound call through a Call Control connection. The result includes the call_control_id used by hangup and speak.",
			Service:     instrumentation.ServiceCallControl,
			Params: []registry.Param{
				{Name: "to", Type: registry.TypeString, Description: "Destination phone number in E.164 format", Required: true},
				{Name: "from", Type: registry.TypeString, Description: "Caller ID number in E.164 format", Required: true},
				{Name: "connection_id", Type: registry.TypeString, Description: "Call Control connection to dial through", Required: true},
				{Name: "timeout_secs", Type: registry.TypeNumber, Description: "Seconds to wait for an answer"},
				{Name: "webhook_url", Type: registry.TypeString, Description: "Call event webhook override"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				call, err := client.Dial(ctx, telnyx.DialParams{
					To:           common.String(args, "to"),
					From:         common.String(args, "from"),
					ConnectionID: common.String(args, "connection_id"),
					TimeoutSecs:  common.Int(args, "timeout_secs", 0),
					WebhookURL:   common.String(args, "webhook_url"),
				})
				if err != nil {
					return "", err
				}
				body, err := common.FormatJSON(call)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Call started:\n%s", body), nil
			},
		},
		{
			Name:        "hangup_call",
			Description: "Hang up an active call by its call_control_id.",
			Service:     instrumentation.ServiceCallControl,
			Params: []registry.Param{
				{Name: "call_control_id", Type: registry.TypeString, Description: "Call control ID from make_call or a call webhook", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				result, err := client.Hangup(ctx, common.String(args, "call_control_id"))
				if err != nil {
					return "", err
				}
				body, err := common.FormatJSON(result)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Hangup requested:\n%s", body), nil
			},
		},
		{
			Name:        "speak_text",
			Description: "Speak text on an active call using text-to-speech.",
			Service:     instrumentation.ServiceCallControl,
			Params: []registry.Param{
				{Name: "call_control_id", Type: registry.TypeString, Description: "Call control ID of the active call", Required: true},
				{Name: "payload", Type: registry.TypeString, Description: "Text to speak", Required: true},
				{Name: "voice", Type: registry.TypeString, Description: "Voice to use, e.g. female or male"},
				{Name: "language", Type: registry.TypeString, Description: "Speech language, e.g. en-US"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				result, err := client.Speak(ctx, common.String(args, "call_control_id"), telnyx.SpeakParams{
					Payload:  common.String(args, "payload"),
					Voice:    common.String(args, "voice"),
					Language: common.String(args, "language"),
				})
				if err != nil {
					return "", err
				}
				body, err := common.FormatJSON(result)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Speak command accepted:\n%s", body), nil
			},
		},
		{
			Name:        "send_dtmf",
			Description: "Send DTMF tones on an active call. Digits may include 0-9, A-D, *, # and w for a half-second pause.",
			Service:     instrumentation.ServiceCallControl,
			Params: []registry.Param{
				{Name: "call_control_id", Type: registry.TypeString, Description: "Call control ID of the active call", Required: true},
				{Name: "digits", Type: registry.TypeString, Description: "DTMF digit string to play", Required: true},
				{Name: "duration_millis", Type: registry.TypeNumber, Description: "Tone duration per digit in milliseconds"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				result, err := client.SendDTMF(ctx, common.String(args, "call_control_id"), telnyx.SendDTMFParams{
					Digits:         common.String(args, "digits"),
					DurationMillis: common.Int(args, "duration_millis", 0),
				})
				if err != nil {
					return "", err
				}
				body, err := common.FormatJSON(result)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("DTMF accepted:\n%s", body), nil
			},
		},
		{
			Name:        "transfer_call",
			Description: "Transfer an active call to a new destination number.",
			Service:     instrumentation.ServiceCallControl,
			Params: []registry.Param{
				{Name: "call_control_id", Type: registry.TypeString, Description: "Call control ID of the active call", Required: true},
				{Name: "to", Type: registry.TypeString, Description: "Destination phone number in E.164 format", Required: true},
				{Name: "from", Type: registry.TypeString, Description: "Caller ID shown to the transfer target"},
				{Name: "timeout_secs", Type: registry.TypeNumber, Description: "Seconds to wait for the target to answer"},
				{Name: "webhook_url", Type: registry.TypeString, Description: "Call event webhook override for the new leg"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				result, err := client.Transfer(ctx, common.String(args, "call_control_id"), telnyx.TransferParams{
					To:          common.String(args, "to"),
					From:        common.String(args, "from"),
					TimeoutSecs: common.Int(args, "timeout_secs", 0),
					WebhookURL:  common.String(args, "webhook_url"),
				})
				if err != nil {
					return "", err
				}
				body, err := common.FormatJSON(result)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Transfer requested:\n%s", body), nil
			},
		},
		{
			Name:        "playback_start",
			Description: "Start audio playback on an active call from an audio file URL.",
			Service:     instrumentation.ServiceCallControl,
			Params: []registry.Param{
				{Name: "call_control_id", Type: registry.TypeString, Description: "Call control ID of the active call", Required: true},
				{Name: "audio_url", Type: registry.TypeString, Description: "URL of the audio file to play", Required: true},
				{Name: "loop", Type: registry.TypeString, Description: "Repeat count, or infinity to loop until stopped"},
				{Name: "overlay", Type: registry.TypeBoolean, Description: "Mix playback over the call audio instead of replacing it"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				result, err := client.PlaybackStart(ctx, common.String(args, "call_control_id"), telnyx.PlaybackStartParams{
					AudioURL: common.String(args, "audio_url"),
					Loop:     common.String(args, "loop"),
					Overlay:  common.Bool(args, "overlay"),
				})
				if err != nil {
					return "", err
				}
				body, err := common.FormatJSON(result)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Playback started:\n%s", body), nil
			},
		},
		{
			Name:        "playback_stop",
			Description: "Stop audio playback on an active call.",
			Service:     instrumentation.ServiceCallControl,
			Params: []registry.Param{
				{Name: "call_control_id", Type: registry.TypeString, Description: "Call control ID of the active call", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				result, err := client.PlaybackStop(ctx, common.String(args, "call_control_id"))
				if err != nil {
					return "", err
				}
				body, err := common.FormatJSON(result)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Playback stopped:\n%s", body), nil
			},
		},
	}
}
