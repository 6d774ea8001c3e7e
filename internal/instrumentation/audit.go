package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
)

// ToolInvocation captures all information about a tool invocation for audit
// logging. This provides an audit trail for every MCP tool call.
type ToolInvocation struct {
	// Tool name
	Tool string

	// Subject is the authenticated token subject (empty on the stdio
	// transport, which has no auth layer).
	Subject string

	// Target information
	ServiceName string // Telnyx service (messaging, call_control, ...)
	Operation   string // Operation type (list, get, send, dial, ...)

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// logAttrs returns slog attributes for the invocation. When includeIdentity
// is false the subject is hashed.
func (ti *ToolInvocation) logAttrs(includeIdentity bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Subject != "" {
		if includeIdentity {
			attrs = append(attrs, slog.String("subject", ti.Subject))
		} else {
			attrs = append(attrs, logging.Subject(ti.Subject))
		}
	}
	if ti.ServiceName != "" {
		attrs = append(attrs, slog.String("service", ti.ServiceName))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithSubject sets the authenticated subject.
func (ti *ToolInvocation) WithSubject(subject string) *ToolInvocation {
	ti.Subject = subject
	return ti
}

// WithService sets the Telnyx service and operation.
func (ti *ToolInvocation) WithService(serviceName, operation string) *ToolInvocation {
	ti.ServiceName = serviceName
	ti.Operation = operation
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
// Returns the same ToolInvocation for method chaining.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger provides structured audit logging for tool invocations and
// auth events.
type AuditLogger struct {
	logger          *slog.Logger
	includeIdentity bool
	enabled         bool
}

// NewAuditLogger creates an AuditLogger with the given slog.Logger. By
// default subjects are hashed before logging.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: true,
	}
}

// NewAuditLoggerWithConfig creates an AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:          logger,
		includeIdentity: config.IncludeIdentity,
		enabled:         config.Enabled,
	}
}

// LogToolInvocation logs a tool invocation using the standard attributes.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if !al.enabled {
		return
	}

	attrs := ti.logAttrs(al.includeIdentity)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}

// LogTokenIssued logs a bearer token issuance.
func (al *AuditLogger) LogTokenIssued(subject string, expiresAt time.Time) {
	if !al.enabled {
		return
	}
	args := []any{slog.Time("expires_at", expiresAt)}
	if al.includeIdentity {
		args = append(args, slog.String("subject", subject))
	} else {
		args = append(args, logging.Subject(subject))
	}
	al.logger.Info("token_issued", args...)
}

// LogAuthRejection logs a rejected request with the rejection reason.
func (al *AuditLogger) LogAuthRejection(reason string) {
	if !al.enabled {
		return
	}
	al.logger.Warn("auth_rejected", slog.String("reason", reason))
}
