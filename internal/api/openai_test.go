package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/scoring"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient(&config.Config{OpenAIBaseURL: srv.URL + "/", OpenAIModel: "gpt-4o"})
}

func TestOpenAIExtract_Success(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("X-Ratelimit-Limit-Requests", "500")
		w.Header().Set("X-Ratelimit-Remaining-Requests", "499")
		w.Header().Set("X-Ratelimit-Reset-Requests", "120ms")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"{\"values\":[1,2,3,4,5,6,7,8]}"}}]}`)
	})

	content, err := client.Extract(context.Background(), "sk-test", Image{Data: pngHeader})
	require.NoError(t, err)
	assert.JSONEq(t, `{"values":[1,2,3,4,5,6,7,8]}`, string(content))

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)

	parts, ok := got.Messages[1].Content.([]any)
	require.True(t, ok)
	require.Len(t, parts, 1)
	url := parts[0].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)

	rl := client.GetRateLimitInfo()
	assert.Equal(t, 500, rl.Limit)
	assert.Equal(t, 499, rl.Remaining)
	assert.Equal(t, "120ms", rl.Reset)
}

func TestOpenAIExtract_ServiceErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	})

	_, err := client.Extract(context.Background(), "sk-bad", Image{Data: pngHeader})
	require.Error(t, err)

	var tErr *scoring.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, http.StatusUnauthorized, tErr.Status)
	assert.Equal(t, "Incorrect API key provided", tErr.Message)
}

func TestOpenAIExtract_StatusWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Extract(context.Background(), "sk-test", Image{Data: pngHeader})

	var tErr *scoring.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, http.StatusInternalServerError, tErr.Status)
	assert.Equal(t, "Internal Server Error", tErr.Message)
}

func TestOpenAIExtract_MalformedEnvelope(t *testing.T) {
	for _, body := range []string{`not json`, `{"choices":[]}`} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})

		_, err := client.Extract(context.Background(), "sk-test", Image{Data: pngHeader})
		assert.Equal(t, scoring.KindMalformedPayload, scoring.KindOf(err), body)
	}
}

func TestOpenAIExtract_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewOpenAIClient(&config.Config{OpenAIBaseURL: url})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.Extract(ctx, "sk-test", Image{Data: pngHeader})

	var tErr *scoring.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Zero(t, tErr.Status)
	assert.NotNil(t, tErr.Err)
}

func TestOpenAIExtract_MissingKey(t *testing.T) {
	client := NewOpenAIClient(&config.Config{OpenAIBaseURL: "http://127.0.0.1:1"})

	_, err := client.Extract(context.Background(), "", Image{Data: pngHeader})
	assert.ErrorIs(t, err, scoring.ErrMissingCredential)
	assert.Equal(t, scoring.KindConfiguration, scoring.KindOf(err))
}

func TestGeminiExtract_MissingKey(t *testing.T) {
	client := NewGeminiClient(&config.Config{GeminiModel: "gemini-2.0-flash"})

	_, err := client.Extract(context.Background(), "", Image{Data: pngHeader})
	assert.ErrorIs(t, err, scoring.ErrMissingCredential)
	assert.Equal(t, config.ProviderGemini, client.Provider())
}

func TestImageContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", Image{MIMEType: "image/jpeg", Data: pngHeader}.ContentType())
	assert.Equal(t, "image/png", Image{Data: pngHeader}.ContentType())
}
