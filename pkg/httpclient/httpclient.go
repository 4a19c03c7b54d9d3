package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is the subset of an HTTP response the pipeline consumes.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(name string) string
}

// Client issues GET requests with optional per-request headers. The context
// carries cancellation and the per-attempt deadline.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

const defaultUserAgent = "feedfold/1.0 (+https://github.com/feedfold/feedfold)"

type restyClient struct {
	client *resty.Client
}

// NewRestyClient builds a Client with the given overall request timeout.
// Feed hosts occasionally misbehave on redirects and compression; resty's
// defaults handle both without extra wiring.
func NewRestyClient(timeout time.Duration) Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", defaultUserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &restyClient{client: rc}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := c.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return &restyResponse{resp: resp}, nil
}

type restyResponse struct {
	resp *resty.Response
}

func (r *restyResponse) Body() []byte { return r.resp.Body() }

func (r *restyResponse) StatusCode() int { return r.resp.StatusCode() }

func (r *restyResponse) Header(name string) string { return r.resp.Header().Get(name) }
