package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response exposes the parts of an HTTP response the gateways consume.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client is a minimal HTTP client surface so gateway packages can be
// tested without a network.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	PostJSON(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
}

// restyClient implements Client using resty.
type restyClient struct {
	client *resty.Client
}

// NewRestyClient builds a resty-backed client with the given per-request
// timeout. An empty proxyURL disables the outbound proxy.
func NewRestyClient(timeout time.Duration, proxyURL string) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	if proxyURL != "" {
		c.SetProxy(proxyURL)
	}
	return &restyClient{client: c}
}

func (r *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp: resp}, nil
}

func (r *restyClient) PostJSON(ctx context.Context, url string, headers map[string]string, body any) (Response, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp: resp}, nil
}

// restyResponse adapts *resty.Response to the Response interface.
type restyResponse struct {
	resp *resty.Response
}

func (r restyResponse) StatusCode() int {
	if r.resp == nil {
		return http.StatusInternalServerError
	}
	return r.resp.StatusCode()
}

func (r restyResponse) Body() []byte {
	if r.resp == nil {
		return nil
	}
	return r.resp.Body()
}
