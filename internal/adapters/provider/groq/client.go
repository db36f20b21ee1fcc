// Package groq talks to Groq's OpenAI-compatible chat completions API.
package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ahamitd/notifyai/internal/adapters/provider/quota"
	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	defaultTimeout = 30 * time.Second
	temperature    = 0.7
	maxTokens      = 500
)

type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *resty.Client
	now     func() time.Time
}

var _ ports.Provider = (*Client)(nil)

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func New(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   strings.TrimSpace(model),
		baseURL: DefaultBaseURL,
		http:    resty.New().SetTimeout(defaultTimeout),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == "" {
		c.model = domain.DefaultGroqModel
	}

	return c
}

func (c *Client) ID() domain.ProviderID {
	return domain.ProviderGroq
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID      string `json:"id"`
		OwnedBy string `json:"owned_by"`
		Active  *bool  `json:"active"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate never forwards images; Completion.ImageDropped tells the caller
// one was discarded.
func (c *Client) Generate(ctx context.Context, prompt ports.Prompt) (ports.Completion, error) {
	temp := temperature
	body := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: &temp,
		MaxTokens:   maxTokens,
	}

	resp, err := c.chat(ctx, body)
	if err != nil {
		return ports.Completion{}, fmt.Errorf("groq chat request: %w", err)
	}
	if !resp.IsSuccess() {
		return ports.Completion{}, &domain.ProviderError{Provider: domain.ProviderGroq, Status: resp.StatusCode(), Body: resp.String()}
	}

	var decoded chatResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return ports.Completion{}, &domain.MalformedResponseError{Provider: domain.ProviderGroq, Reason: err.Error()}
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == nil {
		return ports.Completion{}, &domain.MalformedResponseError{
			Provider: domain.ProviderGroq,
			Reason:   "missing choices[0].message.content",
		}
	}

	return ports.Completion{
		Text:         *decoded.Choices[0].Message.Content,
		Model:        c.model,
		ImageDropped: len(prompt.Image) > 0,
		Quota:        quota.FromHeaders(resp.Header(), string(domain.ProviderGroq), c.now()),
	}, nil
}

// ListModels returns the active models visible to the key. Groq does not
// publish per-model request limits in this listing.
func (c *Client) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		Get(c.baseURL + "/models")
	if err != nil {
		return nil, fmt.Errorf("groq list models request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &domain.ProviderError{Provider: domain.ProviderGroq, Status: resp.StatusCode(), Body: resp.String()}
	}

	var decoded modelsResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, &domain.MalformedResponseError{Provider: domain.ProviderGroq, Reason: err.Error()}
	}

	models := make([]domain.ModelInfo, 0, len(decoded.Data))
	for _, m := range decoded.Data {
		if m.Active != nil && !*m.Active {
			continue
		}
		models = append(models, domain.ModelInfo{Name: m.ID, DisplayName: m.ID})
	}

	return models, nil
}

func (c *Client) ValidateModel(ctx context.Context, model string) error {
	resp, err := c.chat(ctx, chatRequest{
		Model:     strings.TrimSpace(model),
		Messages:  []message{{Role: "user", Content: "hi"}},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("groq validate model request: %w", err)
	}
	if resp.IsSuccess() {
		return nil
	}

	body := resp.String()
	var decoded errorResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err == nil && decoded.Error.Message != "" {
		body = decoded.Error.Message
	}

	return &domain.ProviderError{Provider: domain.ProviderGroq, Status: resp.StatusCode(), Body: body}
}

func (c *Client) chat(ctx context.Context, body chatRequest) (*resty.Response, error) {
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.baseURL + "/chat/completions")
}
