package record

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// HTTPClient is the transport used by Client. Params of Get are serialized to
// the query string; params of the other verbs to a JSON body. The decoded
// response body is written to result when it is non-nil.
//
// transport.Client is the production implementation.
type HTTPClient interface {
	Get(ctx context.Context, path string, params, result any) error
	Post(ctx context.Context, path string, params, result any) error
	Put(ctx context.Context, path string, params, result any) error
	Delete(ctx context.Context, path string, params, result any) error
}

// ClientConfig holds optional settings for Client.
type ClientConfig struct {
	// GuestSpaceID routes requests to /k/guest/{id}/v1 when positive.
	GuestSpaceID int

	// Logger (optional)
	Logger hclog.Logger
}

// Client exposes the kintone record API. It keeps no state besides its
// transport and is safe for concurrent use when the transport is.
type Client struct {
	http         HTTPClient
	guestSpaceID int
	logger       hclog.Logger
}

// NewClient creates a record client on top of the given transport.
func NewClient(httpClient HTTPClient, cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	return &Client{
		http:         httpClient,
		guestSpaceID: cfg.GuestSpaceID,
		logger:       cfg.Logger.Named("record"),
	}
}

// path builds the API path for an endpoint such as "record.json".
func (c *Client) path(endpoint string) string {
	if c.guestSpaceID > 0 {
		return fmt.Sprintf("/k/guest/%d/v1/%s", c.guestSpaceID, endpoint)
	}
	return "/k/v1/" + endpoint
}
