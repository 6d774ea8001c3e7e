package registry

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
)

// Recorder receives per-invocation metrics. Implemented by the
// instrumentation package; may be nil when metrics are disabled.
type Recorder interface {
	RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration)
}

// RegisterAll registers every active tool with the MCP server. Tools outside
// the active set are never registered, so the protocol layer rejects them
// exactly as it rejects names that never existed.
func RegisterAll(r *Registry, s *server.MCPServer, rec Recorder) {
	for _, d := range r.Active() {
		s.AddTool(buildTool(d), toolHandler(r, d.Name, rec))
	}
}

// buildTool converts a descriptor into the MCP tool definition, preserving
// the declared parameter order.
func buildTool(d Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}
	for _, p := range d.Params {
		var popts []mcp.PropertyOption
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		if p.Description != "" {
			popts = append(popts, mcp.Description(p.Description))
		}
		switch p.Type {
		case TypeNumber:
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case TypeBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		case TypeObject:
			opts = append(opts, mcp.WithObject(p.Name, popts...))
		case TypeArray:
			opts = append(opts, mcp.WithArray(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(d.Name, opts...)
}

// toolHandler adapts registry dispatch to the MCP handler signature and
// records invocation metrics. Validation failures surface as protocol
// errors; handler failures surface as tool error results.
//
// The protocol layer frames handler-returned errors as internal errors
// (-32603) and names outside the registered set as invalid params (-32602),
// so clients tell the cases apart by code plus stable message prefix:
// "invalid arguments for <tool>:" for validation, "tool '<name>' not found"
// for unknown or filtered names.
func toolHandler(r *Registry, name string, rec Recorder) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := r.Dispatch(ctx, name, request.GetArguments())

		status := logging.StatusSuccess
		if err != nil {
			status = logging.StatusError
		}
		if rec != nil {
			rec.RecordToolInvocation(ctx, name, status, time.Since(start))
		}

		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				return nil, vErr
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}
