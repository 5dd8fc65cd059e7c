package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"finance-tracker/internal/apperrors"
	"finance-tracker/internal/config"

	"github.com/sirupsen/logrus"
)

// Client handles integration with the Gemini generative language API
type Client struct {
	url    string
	model  string
	apiKey string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new Gemini client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url:    cfg.GeminiURL,
		model:  cfg.GeminiModel,
		apiKey: cfg.GeminiAPIKey,
		// No explicit timeout: a slow upstream blocks only its own request.
		client: &http.Client{},
		log:    log,
	}
}

// buildPrompt creates the advice prompt embedding the three aggregates
func (c *Client) buildPrompt(investment, expense, saving float64) string {
	return fmt.Sprintf(
		"Give me advice on finance in three sentences. I have an income of %v, an expense of %v, and savings of %v in under 5 sentences.",
		investment, expense, saving,
	)
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// sendRequest posts the prompt to the generateContent endpoint
func (c *Client) sendRequest(prompt string) ([]byte, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %v", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.url, c.model, c.apiKey)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("Gemini response: %s", string(body))
	return body, nil
}

// parseResponse extracts the text of the first candidate
func (c *Client) parseResponse(rawBody []byte) (string, error) {
	var parsed generateResponse
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %v", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateAdvice forwards the three aggregates to the model and returns its
// text response unmodified. A single best-effort round trip: no caching, no
// retry, no rate limiting.
func (c *Client) GenerateAdvice(investment, expense, saving float64) (string, error) {
	prompt := c.buildPrompt(investment, expense, saving)
	body, err := c.sendRequest(prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}

	text, err := c.parseResponse(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}

	c.log.Infof("Generated advice (%d bytes)", len(text))
	return text, nil
}
