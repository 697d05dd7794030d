// Package imagegen talks to an OpenAI-compatible image generation endpoint.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lectio/internal/services"
	"lectio/internal/services/httpretry"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/images/generations"
	defaultModel   = "dall-e-3"
	defaultSize    = "1024x1024"
	defaultTimeout = 90 * time.Second
)

// Config describes how to reach the image provider.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    string
	Timeout time.Duration
}

// Client generates images from prompts.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      httpretry.Policy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy httpretry.Policy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// NewClient constructs an image generation client.
func NewClient(cfg Config, opts ...Option) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if strings.TrimSpace(cfg.Size) == "" {
		cfg.Size = defaultSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      httpretry.DefaultPolicy(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

type generateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type generateResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate returns the encoded image bytes produced for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("imagegen client unavailable")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "imagegen", "generate", "api key not configured", nil)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, services.Wrap(services.ErrGenerationFailure, "imagegen", "generate", "empty prompt", nil)
	}
	payload, err := json.Marshal(generateRequest{
		Model:          c.cfg.Model,
		Prompt:         prompt,
		Size:           c.cfg.Size,
		N:              1,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var image []byte
	err = c.retry.Do(ctx, "image generate", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err := httpretry.CheckResponse("image generate", resp, services.ErrGenerationFailure)
		if err != nil {
			return err
		}
		image, err = decodeImage(body)
		return err
	})
	if err == nil || errors.Is(err, services.ErrGenerationFailure) || errors.Is(err, context.Canceled) {
		return image, err
	}
	return nil, services.Wrap(services.ErrGenerationFailure, "imagegen", "generate", "request failed", err)
}

func decodeImage(body []byte) ([]byte, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, services.Wrap(services.ErrGenerationFailure, "imagegen", "decode", "unparseable response", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, services.Wrap(services.ErrGenerationFailure, "imagegen", "decode", parsed.Error.Message, nil)
	}
	if len(parsed.Data) == 0 || strings.TrimSpace(parsed.Data[0].B64JSON) == "" {
		return nil, services.Wrap(services.ErrGenerationFailure, "imagegen", "decode", "response carried no image", nil)
	}
	data, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, services.Wrap(services.ErrGenerationFailure, "imagegen", "decode", "invalid base64 image", err)
	}
	return data, nil
}
