// Package number_tools exposes Telnyx phone number inventory and search
// operations as MCP tools.
package number_tools

import (
	"context"

	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/registry"
	"github.com/voxkit/telnyx-mcp-gateway/internal/telnyx"
	"github.com/voxkit/telnyx-mcp-gateway/internal/tools/common"
)

// Descriptors returns the phone number tool catalog entries.
func Descriptors(client *telnyx.Client) []registry.Descriptor {
	return []registry.Descriptor{
		{
			Name:        "list_phone_numbers",
			Description: "List phone numbers owned by the account, optionally filtered by status or number substring.",
			Service:     instrumentation.ServiceNumbers,
			Params: []registry.Param{
				{Name: "page_size", Type: registry.TypeNumber, Description: "Results per page (default 20)"},
				{Name: "page_number", Type: registry.TypeNumber, Description: "Page to fetch"},
				{Name: "status", Type: registry.TypeString, Description: "Filter by status, e.g. active or pending"},
				{Name: "number_filter", Type: registry.TypeString, Description: "Filter by number substring"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				numbers, err := client.ListPhoneNumbers(ctx, telnyx.ListPhoneNumbersParams{
					PageSize:     common.Int(args, "page_size", 0),
					PageNumber:   common.Int(args, "page_number", 0),
					Status:       common.String(args, "status"),
					NumberFilter: common.String(args, "number_filter"),
				})
				if err != nil {
					return "", err
				}
				return common.FormatList("phone numbers", numbers)
			},
		},
		{
			Name:        "get_phone_number",
			Description: "Fetch a phone number's full configuration by its ID.",
			Service:     instrumentation.ServiceNumbers,
			Params: []registry.Param{
				{Name: "id", Type: registry.TypeString, Description: "Phone number ID", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				number, err := client.GetPhoneNumber(ctx, common.String(args, "id"))
				if err != nil {
					return "", err
				}
				return common.FormatJSON(number)
			},
		},
		{
			Name:        "list_available_phone_numbers",
			Description: "Search numbers available for purchase by country, locality and number type.",
			Service:     instrumentation.ServiceNumbers,
			Params: []registry.Param{
				{Name: "country_code", Type: registry.TypeString, Description: "Two-letter country code, e.g. US", Required: true},
				{Name: "locality", Type: registry.TypeString, Description: "City or locality to search in"},
				{Name: "number_type", Type: registry.TypeString, Description: "local, toll_free or mobile"},
				{Name: "limit", Type: registry.TypeNumber, Description: "Maximum results to return"},
			},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				numbers, err := client.ListAvailablePhoneNumbers(ctx, telnyx.ListAvailablePhoneNumbersParams{
					CountryCode: common.String(args, "country_code"),
					Locality:    common.String(args, "locality"),
					NumberType:  common.String(args, "number_type"),
					Limit:       common.Int(args, "limit", 0),
				})
				if err != nil {
					return "", err
				}
				return common.FormatList("available phone numbers", numbers)
			},
		},
	}
}
