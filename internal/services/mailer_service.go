package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string
}

type SendResult struct {
	MessageID string `json:"id"`
}

// Mailer delivers a single transactional e-mail.
type Mailer interface {
	Send(ctx context.Context, msg Email) (SendResult, error)
}

type MailerConfig struct {
	// Email API base, e.g. https://api.resend.com
	BaseURL  string
	APIKey   string
	From     string
	FromName string

	Client *http.Client
	Logger *slog.Logger
}

// MailerService talks to a JSON e-mail delivery API (POST {base}/emails).
type MailerService struct {
	baseURL    *url.URL
	apiKey     string
	from       string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewMailerService(cfg MailerConfig) (*MailerService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" ||
		strings.TrimSpace(cfg.From) == "" ||
		strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("mailer: api_key/from/base_url are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	from := strings.TrimSpace(cfg.From)
	if name := strings.TrimSpace(cfg.FromName); name != "" {
		from = fmt.Sprintf("%s <%s>", name, from)
	}

	s := &MailerService{
		baseURL:    u,
		apiKey:     cfg.APIKey,
		from:       from,
		httpClient: client,
		logger:     logger,
	}
	logger.Info("mailer initialized", "baseURL", safeURL(u), "from", from)
	return s, nil
}

type emailTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sendEmailRequest struct {
	From    string     `json:"from"`
	To      []string   `json:"to"`
	Subject string     `json:"subject"`
	HTML    string     `json:"html,omitempty"`
	Text    string     `json:"text,omitempty"`
	Tags    []emailTag `json:"tags,omitempty"`
}

func (s *MailerService) Send(ctx context.Context, msg Email) (SendResult, error) {
	logger := s.logger.With("op", "Send")
	if len(msg.To) == 0 {
		return SendResult{}, fmt.Errorf("mailer: no recipients")
	}

	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/emails")

	reqBody := sendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	for k, v := range msg.Tags {
		reqBody.Tags = append(reqBody.Tags, emailTag{Name: k, Value: v})
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return SendResult{}, fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("email request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	logger.Debug("email api raw", "status", resp.Status, "body", trim(string(b), 500))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SendResult{}, &MailerError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}

	var out SendResult
	if len(bytes.TrimSpace(b)) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			return SendResult{}, fmt.Errorf("decode email response: %w", err)
		}
	}
	logger.Info("email sent", "to", strings.Join(msg.To, ","), "subject", msg.Subject, "id", out.MessageID)
	return out, nil
}

// LogMailer writes e-mails to the log instead of sending them. Used when no
// delivery API is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, msg Email) (SendResult, error) {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(msg.To) == 0 {
		return SendResult{}, fmt.Errorf("mailer: no recipients")
	}
	id := fmt.Sprintf("msg_log_%d", time.Now().UnixNano())
	logger.Info("email not delivered (log mailer)", "id", id, "to", strings.Join(msg.To, ","), "subject", msg.Subject)
	return SendResult{MessageID: id}, nil
}

type MailerError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *MailerError) Error() string {
	if e == nil {
		return "<nil>"
	}
	bt := strings.TrimSpace(e.Body)
	if bt == "" {
		return fmt.Sprintf("mailer error: %s", e.Status)
	}
	return fmt.Sprintf("mailer error: %s: %s", e.Status, trim(bt, 500))
}

func trim(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

func safeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.User = nil
	return c.String()
}
