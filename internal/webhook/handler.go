package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
)

// eventTypeUnknown is recorded when a payload carries no recognizable type.
const eventTypeUnknown = "unknown"

// Recorder receives per-event metrics. May be nil.
type Recorder interface {
	RecordWebhookEvent(ctx context.Context, eventType string, duration time.Duration)
}

// Handler is the inbound webhook receiver.
type Handler struct {
	buffer   *Buffer
	logger   *slog.Logger
	recorder Recorder
}

// NewHandler creates a receiver storing events in buffer.
func NewHandler(buffer *Buffer, logger *slog.Logger, recorder Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{buffer: buffer, logger: logger, recorder: recorder}
}

// ServeHTTP ingests one webhook. Every request is acknowledged with 200:
// a delivery failure on our side must not make Telnyx retry forever.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.logger.Warn("webhook body read failed", logging.Err(err))
		h.ack(w)
		return
	}

	eventType := extractEventType(body)
	ev := h.buffer.Append(eventType, json.RawMessage(body))

	h.logger.Info("webhook received",
		logging.EventType(eventType),
		slog.Uint64(logging.KeySequence, ev.Sequence))
	if h.recorder != nil {
		h.recorder.RecordWebhookEvent(r.Context(), eventType, time.Since(start))
	}
	h.ack(w)
}

func (h *Handler) ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"success"}`))
}

// extractEventType finds the event type at the payload root or nested under
// data, which is where Telnyx puts it.
func extractEventType(body []byte) string {
	var payload struct {
		EventType string `json:"event_type"`
		Data      struct {
			EventType string `json:"event_type"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return eventTypeUnknown
	}
	if payload.EventType != "" {
		return payload.EventType
	}
	if payload.Data.EventType != "" {
		return payload.Data.EventType
	}
	return eventTypeUnknown
}
