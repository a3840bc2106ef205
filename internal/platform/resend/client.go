package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/pkg/httpx"
)

// Client sends transactional email through the Resend HTTP API. Callers are
// expected to treat sends as fire-and-forget: log errors, never surface them
// to the end user.
type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func ConfigFromEnv() Config {
	timeoutSec := 30
	if v := strings.TrimSpace(os.Getenv("RESEND_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := time.ParseDuration(v + "s"); err == nil && parsed > 0 {
			timeoutSec = int(parsed.Seconds())
		}
	}
	return Config{
		APIKey:           strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		BaseURL:          strings.TrimSpace(os.Getenv("RESEND_BASE_URL")),
		DefaultFromEmail: strings.TrimSpace(os.Getenv("RESEND_FROM_EMAIL")),
		DefaultFromName:  strings.TrimSpace(os.Getenv("RESEND_FROM_NAME")),
		Timeout:          time.Duration(timeoutSec) * time.Second,
		MaxRetries:       4,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing RESEND_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.resend.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 4
	}
	return &client{
		log:        log.With("client", "ResendClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

type SendEmailRequest struct {
	FromEmail string
	FromName  string
	To        []string
	Subject   string
	Text      string
	HTML      string
}

type SendEmailResult struct {
	MessageID string
}

type wireRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

type wireResponse struct {
	ID string `json:"id"`
}

type resendHTTPError struct {
	StatusCode int
	Body       string
}

func (e *resendHTTPError) Error() string {
	return fmt.Sprintf("resend http %d: %s", e.StatusCode, e.Body)
}

func (e *resendHTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("resend client unavailable")
	}
	fromEmail := strings.TrimSpace(req.FromEmail)
	fromName := strings.TrimSpace(req.FromName)
	if fromEmail == "" {
		fromEmail = c.cfg.DefaultFromEmail
		if fromName == "" {
			fromName = c.cfg.DefaultFromName
		}
	}
	if fromEmail == "" {
		return nil, fmt.Errorf("resend: FromEmail required (or set RESEND_FROM_EMAIL)")
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("resend: To required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return nil, fmt.Errorf("resend: Subject required")
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.HTML) == "" {
		return nil, fmt.Errorf("resend: Text or HTML content required")
	}

	from := fromEmail
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromEmail)
	}
	wire := wireRequest{
		From:    from,
		To:      req.To,
		Subject: strings.TrimSpace(req.Subject),
		Text:    req.Text,
		HTML:    req.HTML,
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			sleep := httpx.JitterSleep(time.Duration(attempt) * 500 * time.Millisecond)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sleep):
			}
		}
		result, err := c.doSend(ctx, payload)
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
		c.log.Warn("Resend send failed, retrying", "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (c *client) doSend(ctx context.Context, payload []byte) (*SendEmailResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &resendHTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out wireResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("resend: decode response: %w", err)
	}
	return &SendEmailResult{MessageID: out.ID}, nil
}
