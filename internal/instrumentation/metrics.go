package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrEventType = "event_type"
	attrState     = "state"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Telnyx API metrics
	telnyxOperationsTotal   metric.Int64Counter
	telnyxOperationDuration metric.Float64Histogram

	// Auth metrics
	tokensIssuedTotal   metric.Int64Counter
	authRejectionsTotal metric.Int64Counter

	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Webhook metrics
	webhookEventsTotal metric.Int64Counter

	// Tunnel metrics
	tunnelTransitionsTotal metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.telnyxOperationsTotal, err = meter.Int64Counter(
		"telnyx_api_operations_total",
		metric.WithDescription("Total number of Telnyx API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telnyx_api_operations_total counter: %w", err)
	}

	m.telnyxOperationDuration, err = meter.Float64Histogram(
		"telnyx_api_operation_duration_seconds",
		metric.WithDescription("Telnyx API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telnyx_api_operation_duration_seconds histogram: %w", err)
	}

	m.tokensIssuedTotal, err = meter.Int64Counter(
		"auth_tokens_issued_total",
		metric.WithDescription("Total number of bearer tokens issued"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth_tokens_issued_total counter: %w", err)
	}

	m.authRejectionsTotal, err = meter.Int64Counter(
		"auth_rejections_total",
		metric.WithDescription("Total number of rejected bearer tokens"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth_rejections_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.webhookEventsTotal, err = meter.Int64Counter(
		"webhook_events_total",
		metric.WithDescription("Total number of received webhook events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook_events_total counter: %w", err)
	}

	m.tunnelTransitionsTotal, err = meter.Int64Counter(
		"tunnel_state_transitions_total",
		metric.WithDescription("Total number of tunnel state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tunnel_state_transitions_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code
// and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTelnyxOperation records a Telnyx API operation.
//
// Parameters:
//   - service: Telnyx service name (messaging, phone_numbers, call_control, ...)
//   - operation: operation type (list, get, create, send, ...)
//   - status: "success" or "error"
//   - duration: time taken for the operation
func (m *Metrics) RecordTelnyxOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.telnyxOperationsTotal == nil || m.telnyxOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.telnyxOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.telnyxOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTokenIssued records a successful bearer token issuance.
func (m *Metrics) RecordTokenIssued(ctx context.Context) {
	if m.tokensIssuedTotal == nil {
		return
	}
	m.tokensIssuedTotal.Add(ctx, 1)
}

// RecordAuthRejection records a rejected request with the rejection result
// ("failure" or "expired").
func (m *Metrics) RecordAuthRejection(ctx context.Context, result string) {
	if m.authRejectionsTotal == nil {
		return
	}
	m.authRejectionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordToolInvocation records an MCP tool invocation.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordWebhookEvent records a received webhook. The event type label is
// cardinality-bounded via NormalizeEventType.
func (m *Metrics) RecordWebhookEvent(ctx context.Context, eventType string, duration time.Duration) {
	if m.webhookEventsTotal == nil {
		return
	}
	m.webhookEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrEventType, NormalizeEventType(eventType)),
	))
}

// RecordTunnelTransition records a tunnel state transition.
func (m *Metrics) RecordTunnelTransition(ctx context.Context, state string) {
	if m.tunnelTransitionsTotal == nil {
		return
	}
	m.tunnelTransitionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrState, state),
	))
}
