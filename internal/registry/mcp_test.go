package registry

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newProtocolServer(t *testing.T, filter Filter) *server.MCPServer {
	t.Helper()

	catalog := []Descriptor{
		{
			Name:        "tool_a",
			Description: "first tool",
			Params: []Param{
				{Name: "x", Type: TypeString, Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return "a:" + args["x"].(string), nil
			},
		},
		{
			Name:        "tool_b",
			Description: "second tool",
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return "b", nil
			},
		},
	}

	reg, err := New(catalog, filter)
	require.NoError(t, err)

	s := server.NewMCPServer("gateway-test", "0.0.1",
		server.WithToolCapabilities(true))
	RegisterAll(reg, s, nil)
	return s
}

func handle(t *testing.T, s *server.MCPServer, raw string) rpcEnvelope {
	t.Helper()

	msg := s.HandleMessage(context.Background(), json.RawMessage(raw))
	buf, err := json.Marshal(msg)
	require.NoError(t, err)

	var env rpcEnvelope
	require.NoError(t, json.Unmarshal(buf, &env))
	return env
}

func TestProtocol_ValidationFailureIsInternalError(t *testing.T) {
	s := newProtocolServer(t, Filter{})

	env := handle(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"tool_a","arguments":{}}}`)

	require.NotNil(t, env.Error)
	assert.Equal(t, mcp.INTERNAL_ERROR, env.Error.Code)
	assert.True(t, strings.HasPrefix(env.Error.Message, "invalid arguments for tool_a:"),
		"message = %q, want the validation prefix", env.Error.Message)
	assert.Contains(t, env.Error.Message, `"x"`)
}

func TestProtocol_UnknownToolIsInvalidParams(t *testing.T) {
	s := newProtocolServer(t, Filter{})

	env := handle(t, s,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"nope","arguments":{}}}`)

	require.NotNil(t, env.Error)
	assert.Equal(t, mcp.INVALID_PARAMS, env.Error.Code)
	assert.Contains(t, env.Error.Message, "not found")
}

func TestProtocol_FilteredToolMatchesUnknownShape(t *testing.T) {
	filtered := newProtocolServer(t, Filter{Exclude: []string{"tool_b"}})
	plain := newProtocolServer(t, Filter{})

	filteredEnv := handle(t, filtered,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"tool_b","arguments":{}}}`)
	unknownEnv := handle(t, plain,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"tool_b_gone","arguments":{}}}`)

	require.NotNil(t, filteredEnv.Error)
	require.NotNil(t, unknownEnv.Error)
	assert.Equal(t, unknownEnv.Error.Code, filteredEnv.Error.Code)

	// The error shapes differ only in the tool name they echo.
	normalize := func(msg, name string) string {
		return strings.ReplaceAll(msg, name, "NAME")
	}
	assert.Equal(t,
		normalize(unknownEnv.Error.Message, "tool_b_gone"),
		normalize(filteredEnv.Error.Message, "tool_b"))
}

func TestProtocol_HandlerErrorIsToolResult(t *testing.T) {
	catalog := []Descriptor{
		{
			Name:        "flaky",
			Description: "always fails",
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return "", assert.AnError
			},
		},
	}
	reg, err := New(catalog, Filter{})
	require.NoError(t, err)

	s := server.NewMCPServer("gateway-test", "0.0.1",
		server.WithToolCapabilities(true))
	RegisterAll(reg, s, nil)

	env := handle(t, s,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"flaky","arguments":{}}}`)

	// Domain failures come back as tool error results, not protocol errors.
	require.Nil(t, env.Error)

	var result struct {
		IsError bool `json:"isError"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	assert.True(t, result.IsError)
	require.NotEmpty(t, result.Content)
	assert.Equal(t, assert.AnError.Error(), result.Content[0].Text)
}
