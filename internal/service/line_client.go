package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const linePushURL = "https://api.line.me/v2/bot/message/push"

// LineClient sends push messages to the LINE Messaging API.
type LineClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewLineClient(channelAccessToken string) *LineClient {
	return &LineClient{
		baseURL: linePushURL,
		token:   channelAccessToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second, // a hung provider must not stall the run
		},
	}
}

// Enabled reports whether a channel access token is configured.
func (c *LineClient) Enabled() bool {
	return c.token != ""
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

// Push sends title and body as a single text message to the given LINE
// user. Unconfigured token is a silent no-op.
func (c *LineClient) Push(ctx context.Context, to, title, body string) error {
	if !c.Enabled() {
		return nil
	}

	payload := linePushRequest{
		To: to,
		Messages: []lineMessage{
			{Type: "text", Text: fmt.Sprintf("🔔 %s\n\n%s", title, body)},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("LINE push error %d: %s", resp.StatusCode, string(text))
	}
	return nil
}
