package stefanai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/pillars"
	"github.com/shimms/shimms-backend/internal/pkg/httpx"
)

// Client is the Stefan analysis collaborator: templated prompt + assessment
// answers in, free-text analysis and structured recommendations out. Any
// failure means "analysis unavailable" to callers, never a hard error in the
// completion flow.
type Client interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error)
}

type AnalyzeRequest struct {
	Kind      pillars.Key
	FirstName string
	Answers   map[string]float64
	Scores    map[string]float64
	Context   string
}

type Recommendation struct {
	Title   string `json:"title"`
	Details string `json:"details"`
}

type AnalyzeResult struct {
	Analysis        string           `json:"analysis"`
	Recommendations []Recommendation `json:"recommendations"`
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func New(log *logger.Logger) (Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeoutSec := 60
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 2
	if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &client{
		log:        log.With("client", "StefanAIClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type aiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *aiHTTPError) Error() string {
	return fmt.Sprintf("stefan ai http %d: %s", e.StatusCode, e.Body)
}

func (e *aiHTTPError) HTTPStatusCode() int { return e.StatusCode }

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat any           `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	system := pillars.PromptTemplate(req.Kind)
	if system == "" {
		return nil, fmt.Errorf("no prompt template for kind %q", req.Kind)
	}

	userPayload := map[string]any{
		"first_name": req.FirstName,
		"answers":    req.Answers,
		"scores":     req.Scores,
	}
	if req.Context != "" {
		userPayload["context"] = req.Context
	}
	userJSON, err := json.Marshal(userPayload)
	if err != nil {
		return nil, err
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system + "\nRespond as JSON with fields \"analysis\" (string) and \"recommendations\" (array of {title, details})."},
			{Role: "user", Content: string(userJSON)},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			sleep := httpx.JitterSleep(time.Duration(attempt) * time.Second)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sleep):
			}
		}
		result, err := c.doAnalyze(ctx, payload)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !httpx.IsRetryableError(err) {
			return nil, err
		}
		c.log.Warn("Stefan analysis call failed, retrying", "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (c *client) doAnalyze(ctx context.Context, payload []byte) (*AnalyzeResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &aiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	var result AnalyzeResult
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("decode analysis payload: %w", err)
	}
	if strings.TrimSpace(result.Analysis) == "" {
		return nil, fmt.Errorf("analysis missing from response")
	}
	return &result, nil
}
