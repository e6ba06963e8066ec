// internal/generation/client.go
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"outreach-engine/internal/common/config"
	apperrors "outreach-engine/internal/common/errors"
	"outreach-engine/internal/common/httpclient"
	"outreach-engine/internal/common/logger"
	"outreach-engine/internal/models"
)

// Client calls the external draft generation service. One outbound POST
// per request, a single JSON response, bounded by the caller's context;
// non-2xx responses, transport errors and unusable bodies are all treated
// uniformly as failure.
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	client     *httpclient.Client
	logger     logger.Logger
}

func NewClient(cfg config.GenerationConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		// No transport timeout: the per-call context bounds the request.
		client: httpclient.NewClient(0),
		logger: log.WithFields(map[string]interface{}{"component": "generation"}),
	}
}

type draftRequest struct {
	Prospect prospectAttrs `json:"prospect"`
	Offering offeringAttrs `json:"offering"`
}

type prospectAttrs struct {
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Budget      string `json:"budget"`
	CompanySize string `json:"company_size"`
	Needs       string `json:"needs,omitempty"`
}

type offeringAttrs struct {
	Name     string   `json:"name"`
	Sector   string   `json:"sector"`
	Price    int      `json:"price"`
	Features []string `json:"features"`
}

type draftResponse struct {
	DraftContent string `json:"draft_content"`
}

// GenerateDraft asks the generation service for a personalized outreach
// draft. A context deadline maps to GenerationTimeoutError; every other
// failure maps to GenerationServiceError.
func (c *Client) GenerateDraft(ctx context.Context, p *models.Prospect, o *models.Offering) (string, error) {
	body, err := json.Marshal(draftRequest{
		Prospect: prospectAttrs{
			Name:        p.Name,
			Sector:      string(p.Sector),
			Budget:      string(p.EstimatedBudget),
			CompanySize: string(p.CompanySize),
			Needs:       p.Needs,
		},
		Offering: offeringAttrs{
			Name:     o.Name,
			Sector:   string(o.Sector),
			Price:    o.Price,
			Features: o.Features,
		},
	})
	if err != nil {
		return "", apperrors.NewGenerationServiceError(err)
	}

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", apperrors.NewGenerationTimeoutError(ctx.Err().Error())
			}
		}

		draft, err := c.post(ctx, body)
		if err == nil {
			return draft, nil
		}
		if ctx.Err() != nil {
			return "", apperrors.NewGenerationTimeoutError(ctx.Err().Error())
		}
		lastErr = err

		c.logger.Warn("generation attempt failed", map[string]interface{}{
			"prospectId": p.ID,
			"attempt":    attempt + 1,
			"error":      err.Error(),
		})
	}

	return "", apperrors.NewGenerationServiceError(lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/outreach/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var out draftResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.DraftContent == "" {
		return "", fmt.Errorf("response missing draft_content")
	}
	return out.DraftContent, nil
}
