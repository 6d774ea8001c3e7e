// Package resources provides MCP resources for exposing gateway state.
// Resources are read-only data sources that MCP clients can fetch, such as
// the tunnel status and the recent webhook event history.
package resources
