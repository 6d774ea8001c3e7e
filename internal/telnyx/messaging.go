package telnyx

import (
	"context"
	"encoding/json"
	"net/http"
)

// SendMessageParams are the inputs for SendMessage. From and To are E.164
// numbers; at least one of Text or MediaURLs must be set.
type SendMessageParams struct {
	From               string   `json:"from"`
	To                 string   `json:"to"`
	Text               string   `json:"text,omitempty"`
	Subject            string   `json:"subject,omitempty"`
	MediaURLs          []string `json:"media_urls,omitempty"`
	MessagingProfileID string   `json:"messaging_profile_id,omitempty"`
	UseProfileWebhooks bool     `json:"use_profile_webhooks,omitempty"`
	WebhookURL         string   `json:"webhook_url,omitempty"`
}

// Message is a Telnyx message record. Raw carries the full API object so
// tool output preserves fields this struct does not model.
type Message struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

type messageEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func decodeMessage(data json.RawMessage) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m.Raw = data
	return &m, nil
}

// SendMessage sends an SMS or MMS message.
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Message, error) {
	var env messageEnvelope
	if err := c.do(ctx, "messages.send", http.MethodPost, "/messages", nil, params, &env); err != nil {
		return nil, err
	}
	return decodeMessage(env.Data)
}

// GetMessage retrieves a previously sent or received message by ID.
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	var env messageEnvelope
	if err := c.do(ctx, "messages.get", http.MethodGet, "/messages/"+id, nil, nil, &env); err != nil {
		return nil, err
	}
	return decodeMessage(env.Data)
}
