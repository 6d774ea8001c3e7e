package telnyx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// ListPhoneNumbersParams filter the owned phone number listing.
type ListPhoneNumbersParams struct {
	PageSize     int
	PageNumber   int
	Status       string
	NumberFilter string
}

// ListPhoneNumbers returns phone numbers owned by the account. The raw API
// objects are returned so tool output keeps every field.
func (c *Client) ListPhoneNumbers(ctx context.Context, params ListPhoneNumbersParams) ([]json.RawMessage, error) {
	q := url.Values{}
	if params.PageSize > 0 {
		q.Set("page[size]", strconv.Itoa(params.PageSize))
	}
	if params.PageNumber > 0 {
		q.Set("page[number]", strconv.Itoa(params.PageNumber))
	}
	if params.Status != "" {
		q.Set("filter[status]", params.Status)
	}
	if params.NumberFilter != "" {
		q.Set("filter[phone_number][contains]", params.NumberFilter)
	}
	var env listEnvelope
	if err := c.do(ctx, "phone_numbers.list", http.MethodGet, "/phone_numbers", q, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetPhoneNumber retrieves a single owned phone number by ID.
func (c *Client) GetPhoneNumber(ctx context.Context, id string) (json.RawMessage, error) {
	var env objectEnvelope
	if err := c.do(ctx, "phone_numbers.get", http.MethodGet, "/phone_numbers/"+id, nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListAvailablePhoneNumbersParams filter the available-number search.
type ListAvailablePhoneNumbersParams struct {
	CountryCode string
	Locality    string
	NumberType  string
	Limit       int
}

// ListAvailablePhoneNumbers searches numbers available for purchase.
func (c *Client) ListAvailablePhoneNumbers(ctx context.Context, params ListAvailablePhoneNumbersParams) ([]json.RawMessage, error) {
	q := url.Values{}
	if params.CountryCode != "" {
		q.Set("filter[country_code]", params.CountryCode)
	}
	if params.Locality != "" {
		q.Set("filter[locality]", params.Locality)
	}
	if params.NumberType != "" {
		q.Set("filter[phone_number_type]", params.NumberType)
	}
	if params.Limit > 0 {
		q.Set("filter[limit]", strconv.Itoa(params.Limit))
	}
	var env listEnvelope
	if err := c.do(ctx, "available_phone_numbers.list", http.MethodGet, "/available_phone_numbers", q, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// listEnvelope is the standard Telnyx collection response shape.
type listEnvelope struct {
	Data []json.RawMessage `json:"data"`
	Meta json.RawMessage   `json:"meta,omitempty"`
}

// objectEnvelope is the standard Telnyx single-object response shape.
type objectEnvelope struct {
	Data json.RawMessage `json:"data"`
}
