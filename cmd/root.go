package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the telnyx-mcp-gateway binary.
var rootCmd = &cobra.Command{
	Use:   "telnyx-mcp-gateway",
	Short: "MCP gateway for the Telnyx API",
	Long: `telnyx-mcp-gateway exposes Telnyx operations (messaging, phone numbers,
call control, connections, integration secrets) as MCP tools for AI
assistants.

It can run as:
  - A stdio MCP server for desktop clients (default)
  - A streamable HTTP MCP server with OAuth-derived bearer authentication`,
	SilenceUsage: true,
}

// version is set by main from the build-time variable.
var version = "dev"

// SetVersion sets the version reported by the root command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "telnyx-mcp-gateway version %s\n" .Version}}`)

	// Run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
