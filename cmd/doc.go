// Package cmd implements the command-line interface for telnyx-mcp-gateway.
//
// Commands:
//   - serve: start the MCP gateway (stdio or streamable HTTP transport)
//   - version: display version information
//
// The serve command is the default when no subcommand is specified.
package cmd
