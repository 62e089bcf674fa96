// Package analyzer talks to the text-analysis microservice that
// classifies grievance descriptions and flags spam.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Shresth17/SahayAI/internal/config"
)

type Client struct {
	base string
	http *http.Client
	log  zerolog.Logger
}

func NewClient(cfg config.AnalyzerConfig, log zerolog.Logger) *Client {
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type Analysis struct {
	Category           string
	CategoryConfidence float64
	IsSpam             bool
	SpamConfidence     float64
}

type analyzeResponse struct {
	GrievanceCategory  string   `json:"grievance_category"`
	IsSpam             bool     `json:"is_spam"`
	CategoryConfidence *float64 `json:"category_confidence"`
	SpamConfidence     *float64 `json:"spam_confidence"`
}

type classifyResponse struct {
	GrievanceCategory string   `json:"grievance_category"`
	ConfidenceScore   *float64 `json:"confidence_score"`
}

type spamResponse struct {
	IsSpam          bool     `json:"is_spam"`
	ConfidenceScore *float64 `json:"confidence_score"`
}

// Analyze runs classification and spam detection in one round trip.
func (c *Client) Analyze(ctx context.Context, description string) (Analysis, error) {
	var resp analyzeResponse
	if err := c.post(ctx, "/analyze", description, &resp); err != nil {
		return Analysis{}, err
	}
	return Analysis{
		Category:           resp.GrievanceCategory,
		CategoryConfidence: deref(resp.CategoryConfidence),
		IsSpam:             resp.IsSpam,
		SpamConfidence:     deref(resp.SpamConfidence),
	}, nil
}

func (c *Client) Classify(ctx context.Context, description string) (string, float64, error) {
	var resp classifyResponse
	if err := c.post(ctx, "/classify", description, &resp); err != nil {
		return "", 0, err
	}
	return resp.GrievanceCategory, deref(resp.ConfidenceScore), nil
}

func (c *Client) DetectSpam(ctx context.Context, description string) (bool, float64, error) {
	var resp spamResponse
	if err := c.post(ctx, "/spam-detect", description, &resp); err != nil {
		return false, 0, err
	}
	return resp.IsSpam, deref(resp.ConfidenceScore), nil
}

func (c *Client) post(ctx context.Context, path string, description string, out interface{}) error {
	body, err := json.Marshal(map[string]string{"description": description})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("analyzer %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Bytes("body", payload).
			Msg("analyzer returned non-200")
		return fmt.Errorf("analyzer %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
