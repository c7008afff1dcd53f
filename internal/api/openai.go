package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/constants"
	"kvk-ranker/internal/scoring"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

type OpenAIClient struct {
	baseURL     string
	model       string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Reset     string `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:   cfg.OpenAIModel,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *OpenAIClient) Provider() string { return config.ProviderOpenAI }

func (c *OpenAIClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *OpenAIClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := resp.Header.Peek("X-Ratelimit-Limit-Requests"); len(limit) > 0 {
		if val, err := fasthttp.ParseUint(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := resp.Header.Peek("X-Ratelimit-Remaining-Requests"); len(remaining) > 0 {
		if val, err := fasthttp.ParseUint(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset-Requests")); reset != "" {
		c.rateLimit.Reset = reset
	}
	c.rateLimit.UpdatedAt = time.Now()
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Extract posts the screenshot as a data URL to the chat completions endpoint.
func (c *OpenAIClient) Extract(ctx context.Context, apiKey string, img Image) ([]byte, error) {
	if apiKey == "" {
		return nil, scoring.ErrMissingCredential
	}

	dataURL := "data:" + img.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{{Type: "image_url", ImageURL: &imageURL{URL: dataURL}}}},
		},
		Temperature:    0,
		MaxTokens:      constants.ExtractMaxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	return doRequest(ctx, c, c.baseURL+"/v1/chat/completions", apiKey, body)
}

func doRequest(ctx context.Context, client *OpenAIClient, url, apiKey string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.SetBody(body)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = client.client.DoDeadline(req, resp, deadline)
	} else {
		err = client.client.Do(req, resp)
	}
	if err != nil {
		return nil, &scoring.TransportError{Message: "network failure while contacting the extraction service", Err: err}
	}

	client.updateRateLimit(resp)

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		message := string(fasthttp.StatusMessage(status))
		var apiErr errorResponse
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return nil, &scoring.TransportError{Status: status, Message: message}
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &scoring.MalformedPayloadError{Reason: "extraction service returned an unreadable envelope", Err: err}
	}
	if len(result.Choices) == 0 {
		return nil, &scoring.MalformedPayloadError{Reason: "extraction service returned no choices"}
	}

	return []byte(result.Choices[0].Message.Content), nil
}
