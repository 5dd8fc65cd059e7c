package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"finance-tracker/internal/service"

	"github.com/sirupsen/logrus"
)

// Advisor produces financial advice from three category aggregates.
type Advisor interface {
	GenerateAdvice(investment, expense, saving float64) (string, error)
}

// Handler serves the HTTP side-channel next to the GraphQL API.
type Handler struct {
	svc     *service.Service
	advisor Advisor
	log     *logrus.Logger
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service, advisor Advisor, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, advisor: advisor, log: log}
}

type generateRequest struct {
	Investment float64 `json:"investment"`
	Expense    float64 `json:"expense"`
	Saving     float64 `json:"saving"`
}

// GenerateAdvice handles POST /api/generate. All three aggregates must be
// present and non-zero; otherwise the request is rejected before any
// upstream call.
func (h *Handler) GenerateAdvice(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Investment == 0 || req.Expense == 0 || req.Saving == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "investment, expense, and saving are required",
		})
		return
	}

	advice, err := h.advisor.GenerateAdvice(req.Investment, req.Expense, req.Saving)
	if err != nil {
		h.log.Errorf("Failed to generate advice: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to generate AI response",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"aiResponse": advice})
}

// Echo handles POST /api/endpoint, a demonstration endpoint that reflects
// its input back.
func (h *Handler) Echo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Input interface{} `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.log.Infof("Received input: %v", body.Input)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Input received",
		"input":   body.Input,
	})
}

// SPA serves the client application's static assets, falling back to the
// entry document for unmatched paths (single-page-app routing).
func (h *Handler) SPA(staticDir string) http.Handler {
	fileServer := http.FileServer(http.Dir(staticDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
