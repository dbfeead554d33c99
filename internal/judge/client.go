// internal/judge/client.go

// Package judge calls the optional non-deterministic remote judge used by the
// external similarity stage. Every failure mode surfaces as an error so the
// caller runs the deterministic fallback; a judge problem is never an
// approval.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "review-pipeline/internal/common/errors"
	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		// No client-level timeout; the per-call context carries the deadline.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "remote-judge"}),
	}
}

type request struct {
	Application *models.Application  `json:"application"`
	Corpus      []models.CorpusEntry `json:"corpus"`
}

// Response is the judge's verdict on an application against the corpus.
type Response struct {
	IsSimilar        bool                `json:"isSimilar"`
	SimilarityScore  float64             `json:"similarityScore"`
	MostSimilarEntry *models.CorpusEntry `json:"mostSimilarEntry,omitempty"`
	Recommendation   string              `json:"recommendation"`
	Feedback         string              `json:"feedback"`
	Suggestions      []string            `json:"suggestions,omitempty"`
}

// Evaluate submits the application and corpus for judgment. The call carries
// its own deadline on top of ctx.
func (c *Client) Evaluate(ctx context.Context, app *models.Application, corpus []models.CorpusEntry) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, err := json.Marshal(request{Application: app, Corpus: corpus})
	if err != nil {
		return nil, apperrors.NewJudgeCallFailedError(err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewJudgeTimeoutError(ctx.Err().Error())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/judge/similarity", bytes.NewReader(body))
		if err != nil {
			return nil, apperrors.NewJudgeCallFailedError(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, apperrors.NewJudgeTimeoutError(ctx.Err().Error())
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewJudgeTimeoutError(lastErr.Error())
		}
		return nil, apperrors.NewJudgeCallFailedError(lastErr)
	}
	if resp == nil {
		return nil, apperrors.NewJudgeCallFailedError(fmt.Errorf("no successful response after retries"))
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.NewJudgeMalformedError(fmt.Sprintf("decode error: %v", err))
	}

	if out.Recommendation != string(models.DecisionApprove) && out.Recommendation != string(models.DecisionReject) {
		return nil, apperrors.NewJudgeMalformedError(fmt.Sprintf("unknown recommendation %q", out.Recommendation))
	}
	if out.SimilarityScore < 0 || out.SimilarityScore > 1 {
		return nil, apperrors.NewJudgeMalformedError(fmt.Sprintf("similarity score %f out of range", out.SimilarityScore))
	}

	c.logger.Info("judge verdict received", map[string]interface{}{
		"applicationId":  app.ID,
		"isSimilar":      out.IsSimilar,
		"score":          out.SimilarityScore,
		"recommendation": out.Recommendation,
	})
	return &out, nil
}
