// Package glpi is the REST client for the helpdesk API. Sessions are
// per-pipeline-run values: each run acquires its own session token and
// releases it when the run ends, so concurrent runs never share credentials.
package glpi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/config"
	"github.com/spec-kit/ticket-report-service/internal/domain"
)

// Client holds connection settings for the GLPI REST API. It carries no
// session state; see Session.
type Client struct {
	cfg    config.GLPIConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient constructs the API client.
func NewClient(cfg config.GLPIConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Session is a time-bounded authorization token scoped to one pipeline run.
type Session struct {
	client  *Client
	token   string
	release sync.Once
}

// Acquire opens a new API session.
func (c *Client) Acquire(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/initSession", nil)
	if err != nil {
		return nil, fmt.Errorf("creating init request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("App-Token", c.cfg.AppToken)
	if c.cfg.UserToken != "" {
		req.Header.Set("Authorization", "user_token "+c.cfg.UserToken)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("initializing session: %w", err)
	}

	var parsed struct {
		SessionToken string `json:"session_token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing session response: %w", err)
	}
	if parsed.SessionToken == "" {
		return nil, fmt.Errorf("init response carried no session token")
	}

	return &Session{client: c, token: parsed.SessionToken}, nil
}

// Fetch retrieves one ticket by id. An absent ticket returns (nil, nil);
// only transport or protocol problems are errors.
func (s *Session) Fetch(ctx context.Context, ticketID int) (*domain.Ticket, error) {
	url := fmt.Sprintf("%s/Ticket/%d", s.client.cfg.URL, ticketID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating ticket request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching ticket %d: %w", ticketID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading ticket response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching ticket %d: HTTP %d: %s", ticketID, resp.StatusCode, body)
	}

	var parsed struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Content string `json:"content"`
		Status  int    `json:"status"`
		Date    string `json:"date"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing ticket response: %w", err)
	}
	if parsed.ID == 0 {
		return nil, nil
	}

	return &domain.Ticket{
		ID:        parsed.ID,
		Name:      parsed.Name,
		Content:   parsed.Content,
		Status:    domain.TicketStatus(parsed.Status),
		CreatedAt: parsed.Date,
	}, nil
}

// Release kills the session. It is idempotent: repeated calls issue at most
// one kill request, and failures are logged rather than surfaced because
// release runs on every terminal path of a pipeline run.
func (s *Session) Release(ctx context.Context) {
	s.release.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.cfg.URL+"/killSession", nil)
		if err != nil {
			s.client.logger.Warn("building session release request", zap.Error(err))
			return
		}
		s.setHeaders(req)

		if _, err := s.client.do(req); err != nil {
			s.client.logger.Warn("releasing session", zap.Error(err))
		}
	})
}

func (s *Session) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("App-Token", s.client.cfg.AppToken)
	req.Header.Set("Session-Token", s.token)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
