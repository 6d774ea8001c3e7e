// Package server wires the gateway's HTTP surface together.
//
// # Key Components
//
// ServerContext holds the shared dependencies of a running gateway: the
// resolved configuration, the Telnyx client, the tool registry, the webhook
// buffer, the tunnel manager and the instrumentation provider. Shutdown
// cancels the serve context and stops the tunnel.
//
// GatewayHTTPServer assembles the public endpoints:
//   - /mcp and /mcp/stream: the MCP protocol endpoint behind bearer
//     authentication (buffered JSON or SSE, negotiated per request)
//   - /auth/url, /auth/callback and the /.well-known discovery documents
//   - POST /webhooks/telnyx: the unauthenticated webhook receiver
//   - /health, /healthz, /readyz
//
// MetricsServer exposes Prometheus metrics on a dedicated port so
// operational metrics never share a listener with gateway traffic.
//
// # Security
//
// The gateway refuses to serve a non-loopback base URL over plain HTTP;
// bearer tokens must not transit plaintext links. The webhook receiver is
// deliberately unauthenticated and acknowledges every delivery, but its
// payloads only ever land in a bounded in-memory buffer.
package server
