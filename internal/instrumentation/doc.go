// Package instrumentation provides OpenTelemetry instrumentation for the
// gateway.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, auth events, Telnyx API calls,
//     tool invocations, webhook events and tunnel state
//   - Distributed tracing for request flows and API calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Server/HTTP metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Telnyx API metrics:
//   - telnyx_api_operations_total: Counter of API operations by service, operation, status
//   - telnyx_api_operation_duration_seconds: Histogram of API operation durations
//
// Auth metrics:
//   - auth_tokens_issued_total: Counter of issued bearer tokens
//   - auth_rejections_total: Counter of rejected requests by result
//
// MCP tool metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//
// Webhook and tunnel metrics:
//   - webhook_events_total: Counter of received webhooks by (bounded) event type
//   - tunnel_state_transitions_total: Counter of tunnel state transitions
//
// # Tracing
//
// Spans are created for:
//   - MCP tool invocations (tool.<name>)
//   - Telnyx API calls (telnyx.<service>.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: telnyx-mcp-gateway)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "telnyx-mcp-gateway",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordHTTPRequest(ctx, "POST", "/mcp", 200, time.Since(start))
//	recorder.RecordTelnyxOperation(ctx, "messaging", "send", "success", time.Since(start))
//	recorder.RecordToolInvocation(ctx, "send_message", "success", time.Since(start))
package instrumentation
