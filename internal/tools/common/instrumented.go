package common

import (
	"context"

	"github.com/voxkit/telnyx-mcp-gateway/internal/auth"
	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
)

// Instrument wraps the descriptor's handler with a tracing span and an
// audit record. The span is named after the tool. The audit entry carries
// the authenticated subject when bearer auth put one on the context; the
// audit logger decides whether the subject is logged verbatim or hashed.
// A nil audit logger disables audit logging but keeps the span.
func Instrument(d registry.Descriptor, audit *instrumentation.AuditLogger) registry.Descriptor {
	handler := d.Handler
	name := d.Name
	service := d.Service

	d.Handler = func(ctx context.Context, args map[string]any) (string, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, name)
		defer span.End()

		inv := instrumentation.NewToolInvocation(name).WithSpanContext(ctx)
		if service != "" {
			inv.WithService(service, "")
		}
		if id, ok := auth.IdentityFromContext(ctx); ok {
			inv.WithSubject(id.Subject)
		}

		out, err := handler(ctx, args)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			inv.CompleteWithError(err)
		} else {
			instrumentation.SetSpanSuccess(span)
			inv.CompleteSuccess()
		}
		if audit != nil {
			audit.LogToolInvocation(inv)
		}
		return out, err
	}
	return d
}

// InstrumentAll applies Instrument to every descriptor in the catalog,
// preserving order.
func InstrumentAll(catalog []registry.Descriptor, audit *instrumentation.AuditLogger) []registry.Descriptor {
	out := make([]registry.Descriptor, len(catalog))
	for i, d := range catalog {
		out[i] = Instrument(d, audit)
	}
	return out
}
