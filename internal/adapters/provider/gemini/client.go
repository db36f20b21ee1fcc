// Package gemini talks to the Google Generative Language REST API.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
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
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	defaultTimeout = 30 * time.Second
	temperature    = 0.7
	imageMIMEType  = "image/jpeg"
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
		model:   normalizeModel(model),
		baseURL: DefaultBaseURL,
		http:    resty.New().SetTimeout(defaultTimeout),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == "" {
		c.model = domain.DefaultGeminiModel
	}

	return c
}

func (c *Client) ID() domain.ProviderID {
	return domain.ProviderGemini
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type modelsResponse struct {
	Models []struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
		RateLimits  struct {
			RequestsPerMinute int `json:"requestsPerMinute"`
			RequestsPerDay    int `json:"requestsPerDay"`
		} `json:"rateLimits"`
	} `json:"models"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate calls generateContent with the configured model. A 404 for a model
// other than the default fast model is retried once against the default.
func (c *Client) Generate(ctx context.Context, prompt ports.Prompt) (ports.Completion, error) {
	completion, err := c.generate(ctx, c.model, prompt)
	if err == nil {
		return completion, nil
	}

	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) && providerErr.ModelNotFound() && c.model != domain.DefaultGeminiModel {
		return c.generate(ctx, domain.DefaultGeminiModel, prompt)
	}

	return ports.Completion{}, err
}

func (c *Client) generate(ctx context.Context, model string, prompt ports.Prompt) (ports.Completion, error) {
	parts := []part{{Text: prompt.User}}
	if len(prompt.Image) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: imageMIMEType,
			Data:     base64.StdEncoding.EncodeToString(prompt.Image),
		}})
	}

	temp := temperature
	body := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: prompt.System}}},
		Contents:          []content{{Parts: parts}},
		GenerationConfig:  generationConfig{Temperature: &temp},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.generateURL(model))
	if err != nil {
		return ports.Completion{}, fmt.Errorf("gemini generate request: %w", err)
	}
	if !resp.IsSuccess() {
		return ports.Completion{}, &domain.ProviderError{
			Provider: domain.ProviderGemini,
			Status:   resp.StatusCode(),
			Body:     resp.String(),
		}
	}

	var decoded generateResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return ports.Completion{}, &domain.MalformedResponseError{Provider: domain.ProviderGemini, Reason: err.Error()}
	}
	if len(decoded.Candidates) == 0 ||
		len(decoded.Candidates[0].Content.Parts) == 0 ||
		decoded.Candidates[0].Content.Parts[0].Text == nil {
		return ports.Completion{}, &domain.MalformedResponseError{
			Provider: domain.ProviderGemini,
			Reason:   "missing candidates[0].content.parts[0].text",
		}
	}

	return ports.Completion{
		Text:  *decoded.Candidates[0].Content.Parts[0].Text,
		Model: model,
		Quota: quota.FromHeaders(resp.Header(), string(domain.ProviderGemini), c.now()),
	}, nil
}

// ListModels returns the gemini text models visible to the key together with
// their published rate limits. Vision and embedding models are skipped.
func (c *Client) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		Get(c.baseURL + "/models")
	if err != nil {
		return nil, fmt.Errorf("gemini list models request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &domain.ProviderError{Provider: domain.ProviderGemini, Status: resp.StatusCode(), Body: resp.String()}
	}

	var decoded modelsResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, &domain.MalformedResponseError{Provider: domain.ProviderGemini, Reason: err.Error()}
	}

	models := make([]domain.ModelInfo, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		name := normalizeModel(m.Name)
		if !strings.Contains(name, "gemini") || strings.Contains(name, "vision") || strings.Contains(name, "embedding") {
			continue
		}
		models = append(models, domain.ModelInfo{
			Name:        name,
			DisplayName: m.DisplayName,
			Limits: domain.ModelLimits{
				RPM: m.RateLimits.RequestsPerMinute,
				RPD: m.RateLimits.RequestsPerDay,
			},
		})
	}

	return models, nil
}

// ValidateModel spends a one-token generation to confirm the model is usable
// with this key.
func (c *Client) ValidateModel(ctx context.Context, model string) error {
	body := generateRequest{
		Contents:         []content{{Parts: []part{{Text: "hi"}}}},
		GenerationConfig: generationConfig{MaxOutputTokens: 1},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.generateURL(normalizeModel(model)))
	if err != nil {
		return fmt.Errorf("gemini validate model request: %w", err)
	}
	if resp.IsSuccess() {
		return nil
	}

	message := resp.String()
	var decoded errorResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err == nil && decoded.Error.Message != "" {
		message = decoded.Error.Message
	}

	return &domain.ProviderError{Provider: domain.ProviderGemini, Status: resp.StatusCode(), Body: message}
}

func (c *Client) generateURL(model string) string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
}

func normalizeModel(model string) string {
	return strings.TrimPrefix(strings.TrimSpace(model), "models/")
}
