package gemini

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance-tracker/internal/apperrors"
	"finance-tracker/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(upstreamURL string) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(&config.Config{
		GeminiURL:    upstreamURL,
		GeminiModel:  "gemini-1.5-flash",
		GeminiAPIKey: "test-key",
	}, logger)
}

func TestGenerateAdvice(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		gotPrompt = req.Contents[0].Parts[0].Text

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "Save more."}},
				}},
			},
		})
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)
	advice, err := client.GenerateAdvice(5000, 2000, 1000)
	require.NoError(t, err)
	assert.Equal(t, "Save more.", advice)

	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t,
		"Give me advice on finance in three sentences. I have an income of 5000, an expense of 2000, and savings of 1000 in under 5 sentences.",
		gotPrompt)
}

func TestGenerateAdviceUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)
	_, err := client.GenerateAdvice(1, 2, 3)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestGenerateAdviceNoCandidates(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)
	_, err := client.GenerateAdvice(1, 2, 3)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestGenerateAdviceUnreachableUpstream(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.GenerateAdvice(1, 2, 3)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
