// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// Backend ranks candidate meshes for a match query. Implementations are
// stateless transformations; the Claude backend is the production one and
// tests supply fakes.
type Backend interface {
	Name() string
	Rank(ctx context.Context, q types.MatchQuery) ([]types.MeshMatch, error)
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// backoffBase controls the base duration for rate-limit backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

const defaultTimeout = 8 * time.Second

// Claude ranks meshes through the Claude Messages API.
type Claude struct {
	Model      string
	APIKey     string
	MaxRetries int
	Client     *http.Client
}

// NewClaude builds the backend from configuration, applying the timeout
// and retry defaults.
func NewClaude(cfg types.AIConfig) *Claude {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 2
	}
	return &Claude{
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		MaxRetries: retries,
		Client:     &http.Client{Timeout: timeout},
	}
}

func (c *Claude) Name() string { return "claude" }

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Rank sends the ranking prompt and parses the answer. Transport, auth,
// and rate-limit-exhaustion failures wrap types.ErrAIUnavailable; an
// answer with no usable line wraps types.ErrAIInconclusive. Both are
// recoverable by the engine.
func (c *Claude) Rank(ctx context.Context, q types.MatchQuery) ([]types.MeshMatch, error) {
	prompt, err := renderRankingPrompt(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrAIUnavailable, err)
	}

	answer, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	matches := parseRankedLines(answer, q.CandidateMeshes)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no answer line named a candidate mesh", types.ErrAIInconclusive)
	}
	return matches, nil
}

// complete performs the Messages API call with exponential backoff on
// HTTP 429, bounded by the retry budget.
func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:     c.Model,
		MaxTokens: 2048,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", types.ErrAIUnavailable, err)
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", types.ErrAIUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("%w: creating request: %v", types.ErrAIUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.APIKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		client := c.Client
		if client == nil {
			client = http.DefaultClient
		}

		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrAIUnavailable, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.MaxRetries {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			continue
		}

		answer, err := decodeAnswer(resp)
		resp.Body.Close()
		return answer, err
	}
}

func decodeAnswer(resp *http.Response) (string, error) {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: API returned %d: %s", types.ErrAIUnavailable, resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", types.ErrAIUnavailable, err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text content in response", types.ErrAIUnavailable)
}
