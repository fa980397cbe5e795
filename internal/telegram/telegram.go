// Package telegram posts digest messages through the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

const defaultTimeout = 20 * time.Second

// parseMode is the markup dialect every digest message is sent with.
const parseMode = "MarkdownV2"

// Ack is the provider's acknowledgement body, kept verbatim. The rest of the
// system treats it as opaque; the run only logs it.
type Ack json.RawMessage

func (a Ack) String() string {
	return string(a)
}

// Client posts to the Bot API on behalf of one bot. The API wants the token
// in the request path, not in a header; the chat id is fixed per client.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
}

// NewClient builds a Telegram client. A nil httpClient gets the default
// request timeout; an empty baseURL gets the production endpoint.
func NewClient(httpClient *http.Client, token, chatID, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		client:  httpClient,
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		chatID:  strings.TrimSpace(chatID),
	}
}

// SendMessage posts text to the configured chat as MarkdownV2 with link
// previews disabled, as one form-encoded request. The response body comes
// back verbatim for logging; no field of it is interpreted here.
func (c *Client) SendMessage(ctx context.Context, text string) (Ack, error) {
	if c.chatID == "" {
		return nil, fmt.Errorf("chat id is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message is required")
	}

	form := url.Values{
		"chat_id":                  {c.chatID},
		"text":                     {text},
		"parse_mode":               {parseMode},
		"disable_web_page_preview": {"true"},
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("telegram send failed: status %d (%s)", resp.StatusCode, compactBody(body))
	}

	ack, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("read telegram response: %w", err)
	}
	return Ack(ack), nil
}

func compactBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "no output"
	}
	const maxLen = 280
	if len(trimmed) <= maxLen {
		return trimmed
	}
	return trimmed[:maxLen] + "..."
}
