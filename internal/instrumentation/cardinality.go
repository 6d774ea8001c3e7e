package instrumentation

import "strings"

// Cardinality management helpers for metrics.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Webhook event types are attacker-controlled input (anyone who learns the
// public tunnel URL can POST arbitrary payloads), so they must never be used
// as metric labels verbatim.

// knownEventFamilies are the Telnyx event-type prefixes recorded as-is.
var knownEventFamilies = []string{
	"message",
	"call",
	"fax",
	"conference",
	"number_order",
	"delivery",
}

// NormalizeEventType reduces a webhook event type to its family for use as
// a metric label.
//
// Example:
//
//	NormalizeEventType("message.received")  // "message"
//	NormalizeEventType("call.answered")     // "call"
//	NormalizeEventType("made.up.event")     // "other"
//	NormalizeEventType("")                  // "unknown"
func NormalizeEventType(eventType string) string {
	if eventType == "" || eventType == StatusUnknown {
		return StatusUnknown
	}
	family, _, _ := strings.Cut(eventType, ".")
	for _, known := range knownEventFamilies {
		if family == known {
			return family
		}
	}
	return "other"
}

// Common operation types for Telnyx API metrics.
// Status and service constants are defined in config.go.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationDelete = "delete"
	OperationSend   = "send"
	OperationDial   = "dial"
	OperationHangup = "hangup"
	OperationSpeak  = "speak"
)
