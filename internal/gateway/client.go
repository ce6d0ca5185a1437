package gateway

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shareit/internal/dto"
)

// forwardedHeaders are copied from the caller to the server.
var forwardedHeaders = []string{"Content-Type", "Accept", dto.UserIDHeader, "X-Request-Id"}

// ServerClient forwards gateway requests to the backend server.
type ServerClient struct {
	base *url.URL
	http *http.Client
}

func NewServerClient(serverURL string, timeout time.Duration) (*ServerClient, error) {
	base, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url must be absolute: %q", serverURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ServerClient{
		base: base,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxConnsPerHost:     100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Forward replays the request against the server with the same method, path and query.
// The caller closes the response body.
func (c *ServerClient) Forward(ctx context.Context, in *http.Request, body []byte) (*http.Response, error) {
	target := *c.base
	target.Path = c.base.Path + in.URL.Path
	target.RawQuery = in.URL.RawQuery

	req, err := http.NewRequestWithContext(ctx, in.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build forward request: %w", err)
	}
	for _, h := range forwardedHeaders {
		if v := in.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forward %s %s: %w", in.Method, in.URL.Path, err)
	}
	return resp, nil
}
