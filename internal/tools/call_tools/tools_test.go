package call_tools

import (
	"context"
	"encoding/json"
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
	require.Len(t, descs, 7)
	for _, d := range descs {
		assert.Equal(t, "call_control", d.Service)
	}
}

func TestMakeCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calls", r.URL.Path)

		var params telnyx.DialParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "+15552223333", params.To)
		assert.Equal(t, "conn-1", params.ConnectionID)
		assert.Equal(t, 30, params.TimeoutSecs)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"call_control_id":"cc-abc","call_leg_id":"leg-1"}}`))
	})

	tool := findTool(t, Descriptors(client), "make_call")
	out, err := tool.Handler(context.Background(), map[string]any{
		"to":            "+15552223333",
		"from":          "+15550001111",
		"connection_id": "conn-1",
		"timeout_secs":  float64(30),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Call started:")
	assert.Contains(t, out, "cc-abc")
}

func TestHangupCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calls/cc-abc/actions/hangup", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"result":"ok"}}`))
	})

	tool := findTool(t, Descriptors(client), "hangup_call")
	out, err := tool.Handler(context.Background(), map[string]any{"call_control_id": "cc-abc"})
	require.NoError(t, err)
	assert.Contains(t, out, "Hangup requested:")
}

func TestSpeakText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calls/cc-abc/actions/speak", r.URL.Path)

		var params telnyx.SpeakParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "Hello from the gateway", params.Payload)
		assert.Equal(t, "en-US", params.Language)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"result":"ok"}}`))
	})

	tool := findTool(t, Descriptors(client), "speak_text")
	out, err := tool.Handler(context.Background(), map[string]any{
		"call_control_id": "cc-abc",
		"payload":         "Hello from the gateway",
		"language":        "en-US",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Speak command accepted:")
}

func TestSendDTMF(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calls/cc-abc/actions/send_dtmf", r.URL.Path)

		var params telnyx.SendDTMFParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "1w2w3#", params.Digits)
		assert.Equal(t, 500, params.DurationMillis)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"result":"ok"}}`))
	})

	tool := findTool(t, Descriptors(client), "send_dtmf")
	out, err := tool.Handler(context.Background(), map[string]any{
		"call_control_id": "cc-abc",
		"digits":          "1w2w3#",
		"duration_millis": float64(500),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "DTMF accepted:")
}

func TestTransferCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calls/cc-abc/actions/transfer", r.URL.Path)

		var params telnyx.TransferParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "+15559998888", params.To)
		assert.Equal(t, "+15550001111", params.From)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"result":"ok"}}`))
	})

	tool := findTool(t, Descriptors(client), "transfer_call")
	out, err := tool.Handler(context.Background(), map[string]any{
		"call_control_id": "cc-abc",
		"to":              "+15559998888",
		"from":            "+15550001111",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Transfer requested:")
}

func TestPlaybackStart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calls/cc-abc/actions/playback_start", r.URL.Path)

		var params telnyx.PlaybackStartParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "https://example.com/hold.mp3", params.AudioURL)
		assert.Equal(t, "infinity", params.Loop)
		assert.True(t, params.Overlay)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"result":"ok"}}`))
	})

	tool := findTool(t, Descriptors(client), "playback_start")
	out, err := tool.Handler(context.Background(), map[string]any{
		"call_control_id": "cc-abc",
		"audio_url":       "https://example.com/hold.mp3",
		"loop":            "infinity",
		"overlay":         true,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Playback started:")
}

func TestPlaybackStop(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calls/cc-abc/actions/playback_stop", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"result":"ok"}}`))
	})

	tool := findTool(t, Descriptors(client), "playback_stop")
	out, err := tool.Handler(context.Background(), map[string]any{"call_control_id": "cc-abc"})
	require.NoError(t, err)
	assert.Contains(t, out, "Playback stopped:")
}
