// Package hass invokes Home Assistant services over its REST API.
package hass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 15 * time.Second

var ErrNotConfigured = errors.New("home assistant url is not configured")

type Client struct {
	baseURL string
	token   string
	http    *resty.Client
}

var _ ports.ServiceCaller = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    resty.New().SetTimeout(defaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call posts data to /api/services/<namespace>/<action>. Non-2xx answers are
// returned as errors carrying the response body, which is where Home
// Assistant reports unsupported TTS languages.
func (c *Client) Call(ctx context.Context, namespace, action string, data map[string]any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(data)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}

	resp, err := req.Post(fmt.Sprintf("%s/api/services/%s/%s", c.baseURL, namespace, action))
	if err != nil {
		return fmt.Errorf("call %s.%s: %w", namespace, action, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("call %s.%s: status %d: %s", namespace, action, resp.StatusCode(), resp.String())
	}

	return nil
}
