// Package nlp is the client contract for the external text classification
// service. Classification is best-effort enrichment: callers treat
// ErrUnavailable as a signal to fall back, never as a request failure.
package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// ErrUnavailable covers transport errors, timeouts and non-2xx responses.
var ErrUnavailable = errors.New("classification service unavailable")

// Result is the classifier output for one text.
type Result struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Keywords   []string `json:"matched_keywords"`
}

// Classifier classifies free-form ticket text.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Result, error)
}

// Client is the HTTP implementation of Classifier.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a classifier client with a bounded timeout.
func NewClient(cfg config.NLPConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

// Classify posts the text to the classifier and returns its verdict.
// No retries: the caller's fallback path is cheaper than blocking a submitter.
func (c *Client) Classify(ctx context.Context, text string) (*Result, error) {
	payload, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	c.logger.Debug("classified text",
		zap.String("category", result.Category),
		zap.Float64("confidence", result.Confidence))
	return &result, nil
}
