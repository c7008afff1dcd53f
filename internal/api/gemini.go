package api

import (
	"context"
	"errors"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/scoring"
	"sync"

	"google.golang.org/genai"
)

// GeminiClient extracts through the Gemini API. Clients are cached per key
// since the key can change at runtime when the user saves a new one.
type GeminiClient struct {
	model string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewGeminiClient(cfg *config.Config) *GeminiClient {
	return &GeminiClient{
		model:   cfg.GeminiModel,
		clients: make(map[string]*genai.Client),
	}
}

func (c *GeminiClient) Provider() string { return config.ProviderGemini }

func (c *GeminiClient) clientFor(ctx context.Context, apiKey string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[apiKey]; ok {
		return client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &scoring.TransportError{Message: "failed to create Gemini client", Err: err}
	}
	c.clients[apiKey] = client
	return client, nil
}

func (c *GeminiClient) Extract(ctx context.Context, apiKey string, img Image) ([]byte, error) {
	if apiKey == "" {
		return nil, scoring.ErrMissingCredential
	}

	client, err := c.clientFor(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, img.ContentType()),
		}, genai.RoleUser),
	}

	result, err := client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &scoring.TransportError{Status: apiErr.Code, Message: apiErr.Message, Err: err}
		}
		return nil, &scoring.TransportError{Message: "network failure while contacting the extraction service", Err: err}
	}

	text := result.Text()
	if text == "" {
		return nil, &scoring.MalformedPayloadError{Reason: "extraction service returned no content"}
	}
	return []byte(text), nil
}
