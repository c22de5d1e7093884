package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the single configured automation webhook. It is stateless:
// every call is one POST with no retries, and ordering guarantees belong to
// the caller.
type Client struct {
	URL       string
	AuthToken string
	HTTP      *http.Client
}

func NewClient(url, authToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		URL:       strings.TrimSpace(url),
		AuthToken: authToken,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

type chatPayload struct {
	Action    string `json:"action"`
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Email     string `json:"email,omitempty"`
	Timestamp string `json:"timestamp"`
}

type logEmailPayload struct {
	Action    string `json:"action"`
	Email     string `json:"email"`
	SessionID string `json:"sessionId"`
	Timestamp string `json:"timestamp"`
}

// Configured reports whether a webhook URL is set. Callers can refuse work
// up front instead of learning about the missing URL from a failed call.
func (c *Client) Configured() bool {
	return c.URL != ""
}

// Send forwards one user message and returns the normalized reply text.
func (c *Client) Send(ctx context.Context, message, sessionID, email string) (string, error) {
	if c.URL == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	body, status, err := c.post(ctx, chatPayload{
		Action:    "chat",
		Message:   message,
		SessionID: sessionID,
		Email:     email,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", &Error{Kind: KindUnreachable, Detail: err.Error()}
	}
	if status < 200 || status >= 300 {
		return "", &Error{Kind: KindRemoteRejected, Detail: statusDetail(status, body)}
	}

	reply, err := Normalize(body)
	if err != nil {
		return "", &Error{Kind: KindMalformedReply, Detail: err.Error()}
	}
	return reply, nil
}

// LogEmail records an email capture with the automation endpoint. A 2xx answer
// is the only success; the remote's own error message, when present, is kept
// in the returned Error's Detail so the capture form can show it.
func (c *Client) LogEmail(ctx context.Context, email, sessionID string) error {
	if c.URL == "" {
		return ErrNotConfigured
	}

	body, status, err := c.post(ctx, logEmailPayload{
		Action:    "log-email",
		Email:     email,
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return &Error{Kind: KindUnreachable, Detail: err.Error()}
	}
	if status < 200 || status >= 300 {
		return &Error{Kind: KindRemoteRejected, Detail: statusDetail(status, body)}
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload any) ([]byte, int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(b))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AuthToken != "" {
		req.Header.Set("auth", c.AuthToken)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// statusDetail prefers the remote's own error text over the bare status code.
func statusDetail(status int, body []byte) string {
	var decoded struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil {
		if decoded.Error != "" {
			return decoded.Error
		}
		if decoded.Message != "" {
			return decoded.Message
		}
	}
	return fmt.Sprintf("status %d", status)
}
