package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient("secret-key", "gemini-2.5-flash", srv.URL, GenerationOptions{Temperature: 0, MaxOutputTokens: 2}, timeout)
}

func TestGeminiRequestShape(t *testing.T) {
	var gotPath, gotKey, gotType string
	var gotBody map[string]any

	client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Yes"}]}}]}`))
	}, time.Second)

	text, err := client.Generate(context.Background(), "same place?")
	require.NoError(t, err)
	assert.Equal(t, "Yes", text)

	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "application/json", gotType)

	contents := gotBody["contents"].([]any)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "same place?", parts[0].(map[string]any)["text"])

	genCfg := gotBody["generationConfig"].(map[string]any)
	assert.Equal(t, float64(0), genCfg["temperature"])
	assert.Equal(t, float64(2), genCfg["maxOutputTokens"])
}

func TestGeminiMissingFieldsYieldEmptyText(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{}]}`,
		`{"candidates":[{"content":{}}]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
		`{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`,
	}
	for _, body := range bodies {
		body := body
		t.Run(body, func(t *testing.T) {
			client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}, time.Second)

			text, err := client.Generate(context.Background(), "p")
			assert.NoError(t, err)
			assert.Equal(t, "", text)
		})
	}
}

func TestGeminiMalformedBody(t *testing.T) {
	for _, body := range []string{"", "not json", `{"candidates":`} {
		client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}, time.Second)

		_, err := client.Generate(context.Background(), "p")
		assert.Error(t, err, "body %q", body)
	}
}

func TestGeminiHTTPError(t *testing.T) {
	client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}, time.Second)

	_, err := client.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGeminiTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := client.Generate(context.Background(), "p")
	assert.Error(t, err)
}
