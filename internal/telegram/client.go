// Package telegram is the outbound notification sink: a thin Bot API client
// with a bounded per-call timeout and no retries.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Client calls the Telegram Bot API. The token travels per call so one
// client serves every rule regardless of per-rule token overrides.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient() *Client {
	return &Client{
		// One slow sink call must not stall a whole dispatch cycle.
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Send delivers one text message to one chat. The raw API response body is
// returned so the dispatch log can keep it verbatim.
func (c *Client) Send(ctx context.Context, token, chatID, text string) (json.RawMessage, error) {
	body, _ := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, url.PathEscape(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram sendMessage: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read telegram response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("telegram response status %d: %s", resp.StatusCode, string(raw))
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram error: %s", parsed.Description)
	}
	return raw, nil
}

// GetMe validates a bot token against the API. Rule creation calls this so a
// rule with a dead token is rejected up front.
func (c *Client) GetMe(ctx context.Context, token string) error {
	endpoint := fmt.Sprintf("%s/bot%s/getMe", c.baseURL, url.PathEscape(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read telegram response: %w", err)
	}
	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("telegram response status %d: %s", resp.StatusCode, string(raw))
	}
	if !parsed.OK {
		return fmt.Errorf("telegram rejected token: %s", parsed.Description)
	}
	return nil
}
