// Package telnyx provides a thin client for the Telnyx REST API v2.
//
// The client covers the subset of the API surfaced as MCP tools: messaging,
// phone numbers, call control, connections and integration secrets. All
// methods take a context and return typed results decoded from the standard
// Telnyx response envelope.
//
// Errors returned by the API are decoded from the Telnyx error envelope and
// wrapped in *APIError so callers can surface the human-readable detail.
package telnyx
