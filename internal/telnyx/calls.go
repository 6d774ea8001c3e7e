package telnyx

import (
	"context"
	"encoding/json"
	"net/http"
)

// DialParams are the inputs for Dial. ConnectionID selects the Call Control
// application the call runs under.
type DialParams struct {
	To           string `json:"to"`
	From         string `json:"from"`
	ConnectionID string `json:"connection_id"`
	TimeoutSecs  int    `json:"timeout_secs,omitempty"`
	WebhookURL   string `json:"webhook_url,omitempty"`
}

// SpeakParams control text-to-speech playback on an active call.
type SpeakParams struct {
	Payload  string `json:"payload"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

// SendDTMFParams carry the digit string to play on an active call. Digits
// may include 0-9, A-D, * , # and w (half-second pause).
type SendDTMFParams struct {
	Digits         string `json:"digits"`
	DurationMillis int    `json:"duration_millis,omitempty"`
}

// TransferParams redirect an active call to a new destination.
type TransferParams struct {
	To          string `json:"to"`
	From        string `json:"from,omitempty"`
	TimeoutSecs int    `json:"timeout_secs,omitempty"`
	WebhookURL  string `json:"webhook_url,omitempty"`
}

// PlaybackStartParams start audio playback on an active call. Loop is either
// a count or "infinity".
type PlaybackStartParams struct {
	AudioURL string `json:"audio_url"`
	Loop     string `json:"loop,omitempty"`
	Overlay  bool   `json:"overlay,omitempty"`
}

// Dial initiates an outbound call and returns the raw call object, which
// includes the call_control_id used by subsequent call commands.
func (c *Client) Dial(ctx context.Context, params DialParams) (json.RawMessage, error) {
	var env objectEnvelope
	if err := c.do(ctx, "calls.dial", http.MethodPost, "/calls", nil, params, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Hangup terminates an active call.
func (c *Client) Hangup(ctx context.Context, callControlID string) (json.RawMessage, error) {
	var env objectEnvelope
	err := c.do(ctx, "calls.hangup", http.MethodPost, "/calls/"+callControlID+"/actions/hangup", nil, struct{}{}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Speak plays text-to-speech audio on an active call.
func (c *Client) Speak(ctx context.Context, callControlID string, params SpeakParams) (json.RawMessage, error) {
	if params.Voice == "" {
		params.Voice = "female"
	}
	if params.Language == "" {
		params.Language = "en-US"
	}
	var env objectEnvelope
	err := c.do(ctx, "calls.speak", http.MethodPost, "/calls/"+callControlID+"/actions/speak", nil, params, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// SendDTMF plays DTMF tones on an active call.
func (c *Client) SendDTMF(ctx context.Context, callControlID string, params SendDTMFParams) (json.RawMessage, error) {
	var env objectEnvelope
	err := c.do(ctx, "calls.send_dtmf", http.MethodPost, "/calls/"+callControlID+"/actions/send_dtmf", nil, params, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Transfer redirects an active call to a new destination.
func (c *Client) Transfer(ctx context.Context, callControlID string, params TransferParams) (json.RawMessage, error) {
	var env objectEnvelope
	err := c.do(ctx, "calls.transfer", http.MethodPost, "/calls/"+callControlID+"/actions/transfer", nil, params, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// PlaybackStart begins audio playback on an active call.
func (c *Client) PlaybackStart(ctx context.Context, callControlID string, params PlaybackStartParams) (json.RawMessage, error) {
	var env objectEnvelope
	err := c.do(ctx, "calls.playback_start", http.MethodPost, "/calls/"+callControlID+"/actions/playback_start", nil, params, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// PlaybackStop stops audio playback on an active call.
func (c *Client) PlaybackStop(ctx context.Context, callControlID string) (json.RawMessage, error) {
	var env objectEnvelope
	err := c.do(ctx, "calls.playback_stop", http.MethodPost, "/calls/"+callControlID+"/actions/playback_stop", nil, struct{}{}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}
