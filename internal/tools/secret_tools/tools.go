// Package secret_tools exposes Telnyx integration secret management as
// MCP tools. Secret material is write-only: list and create results never
// echo the stored value.
package secret_tools

import (
	"context"
	"fmt"

	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/telnyx"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/common"
)

// Descriptors returns the integration secret tool catalog entries.
func Descriptors(client *telnyx.Client) []registry.Descriptor {
	return []registry.Descriptor{
		{
			Name:        "create_integration_secret",
			Description: "Store an integration secret. Use type bearer with value, or type basic with username and password.",
			Service:     instrumentation.ServiceSecrets,
			Params: []registry.Param{
				{Name: "identifier", Type: registry.TypeString, Description: "Unique name for the secret", Required: true},
				{Name: "type", Type: registry.TypeString, Description: "bearer or basic", Required: true},
				{Name: "value", Type: registry.TypeString, Description: "Token value for bearer secrets"},
				{Name: "username", Type: registry.TypeString, Description: "Username for basic secrets"},
				{Name: "password", Type: registry.TypeString, Description: "Password for basic secrets"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				params := telnyx.CreateSecretParams{
					Identifier: common.String(args, "identifier"),
					Type:       common.String(args, "type"),
					Value:      common.String(args, "value"),
					Username:   common.String(args, "username"),
					Password:   common.String(args, "password"),
				}
				switch params.Type {
				case "bearer":
					if params.Value == "" {
						return "", fmt.Errorf("bearer secrets require value")
					}
				case "basic":
					if params.Username == "" || params.Password == "" {
						return "", fmt.Errorf("basic secrets require username and password")
					}
				default:
					return "", fmt.Errorf("unknown secret type %q", params.Type)
				}
				secret, err := client.CreateSecret(ctx, params)
				if err != nil {
					return "", err
				}
				body, err := common.FormatJSON(secret)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Integration secret created:\n%s", body), nil
			},
		},
		{
			Name:        "list_integration_secrets",
			Description: "List stored integration secrets. Secret values are never returned.",
			Service:     instrumentation.ServiceSecrets,
			Params: []registry.Param{
				{Name: "page_size", Type: registry.TypeNumber, Description: "Results per page (default 20)"},
				{Name: "page_number", Type: registry.TypeNumber, Description: "Page to fetch"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				secrets, err := client.ListSecrets(ctx,
					common.Int(args, "page_size", 0),
					common.Int(args, "page_number", 0))
				if err != nil {
					return "", err
				}
				return common.FormatList("integration secrets", secrets)
			},
		},
		{
			Name:        "delete_integration_secret",
			Description: "Delete an integration secret by its ID.",
			Service:     instrumentation.ServiceSecrets,
			Params: []registry.Param{
				{Name: "id", Type: registry.TypeString, Description: "Integration secret ID", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				id := common.String(args, "id")
				if err := client.DeleteSecret(ctx, id); err != nil {
					return "", err
				}
				return fmt.Sprintf("Integration secret %s deleted.", id), nil
			},
		},
	}
}
