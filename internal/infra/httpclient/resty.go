// Package httpclient wraps the shared outbound HTTP client.
package httpclient

import (
	"context"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is the outbound HTTP surface adapters depend on.
type Client interface {
	Get(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (*resty.Response, error)
}

// RestyClient is a pooled, concurrency-safe client. Create one per process and Close it on
// shutdown.
type RestyClient struct {
	cli *resty.Client
}

var _ Client = (*RestyClient)(nil)

// NewRestyClient builds a client whose requests are bounded by timeout. Retries stay off.
func NewRestyClient(timeout time.Duration) *RestyClient {
	cli := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "crypto-actus-bot/1.0")
	return &RestyClient{cli: cli}
}

func (c *RestyClient) Get(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (*resty.Response, error) {
	return c.cli.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetHeaders(headers).
		Get(rawURL)
}

// Close releases idle pooled connections.
func (c *RestyClient) Close() {
	c.cli.GetClient().CloseIdleConnections()
}
