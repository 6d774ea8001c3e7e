// Package registry owns the gateway's tool catalog.
//
// The full catalog is assembled once at startup from the internal/tools
// packages, narrowed by the configured include/exclude filter, and then
// frozen. Only the active subset is registered with the MCP server, so a
// tool removed by the filter is indistinguishable from one that never
// existed. Dispatch validates arguments against the descriptor's parameter
// schema before the handler runs.
package registry
