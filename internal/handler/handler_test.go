package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finance-tracker/internal/config"
	"finance-tracker/internal/pubsub"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdvisor struct {
	advice string
	err    error
	calls  int
}

func (f *fakeAdvisor) GenerateAdvice(investment, expense, saving float64) (string, error) {
	f.calls++
	return f.advice, f.err
}

func newTestHandler(t *testing.T, advisor Advisor) *Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := service.NewService(repository.NewMemoryStores(), pubsub.NewBus(), nil, logger, &config.Config{})
	return NewHandler(svc, advisor, logger)
}

func TestGenerateAdvice(t *testing.T) {
	advisor := &fakeAdvisor{advice: "Spend less than you earn."}
	h := newTestHandler(t, advisor)

	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"investment": 5000, "expense": 2000, "saving": 1000}`))
	rec := httptest.NewRecorder()
	h.GenerateAdvice(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Spend less than you earn.", body["aiResponse"])
	assert.Equal(t, 1, advisor.calls)
}

func TestGenerateAdviceRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"zero investment", `{"investment": 0, "expense": 2000, "saving": 1000}`},
		{"zero expense", `{"investment": 5000, "expense": 0, "saving": 1000}`},
		{"missing saving", `{"investment": 5000, "expense": 2000}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			advisor := &fakeAdvisor{}
			h := newTestHandler(t, advisor)

			req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.GenerateAdvice(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "investment, expense, and saving are required", body["error"])
			assert.Zero(t, advisor.calls, "rejected requests must not reach the upstream")
		})
	}
}

func TestGenerateAdviceRejectsBadJSON(t *testing.T) {
	advisor := &fakeAdvisor{}
	h := newTestHandler(t, advisor)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.GenerateAdvice(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, advisor.calls)
}

func TestGenerateAdviceUpstreamFailure(t *testing.T) {
	advisor := &fakeAdvisor{err: errors.New("upstream down")}
	h := newTestHandler(t, advisor)

	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"investment": 1, "expense": 1, "saving": 1}`))
	rec := httptest.NewRecorder()
	h.GenerateAdvice(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to generate AI response", body["error"])
}

func TestEcho(t *testing.T) {
	h := newTestHandler(t, &fakeAdvisor{})

	req := httptest.NewRequest(http.MethodPost, "/api/endpoint",
		strings.NewReader(`{"input": "hello"}`))
	rec := httptest.NewRecorder()
	h.Echo(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Input received", body["message"])
	assert.Equal(t, "hello", body["input"])
}

func TestSPAFallsBackToIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	h := newTestHandler(t, &fakeAdvisor{})
	spa := h.SPA(dir)

	rec := httptest.NewRecorder()
	spa.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = httptest.NewRecorder()
	spa.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app", "client routes fall back to the entry document")
}
