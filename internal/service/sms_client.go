package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ssonotify/internal/config"
)

// SMSClient posts messages to a generic HTTP SMS provider. The provider
// is entirely optional: without api_url and api_key the channel is
// disabled and Send is a silent no-op, which lets staging run without an
// SMS contract.
type SMSClient struct {
	apiURL     string
	apiKey     string
	senderID   string
	httpClient *http.Client
}

func NewSMSClient(cfg config.SMSConfig) *SMSClient {
	return &SMSClient{
		apiURL:   cfg.APIURL,
		apiKey:   cfg.APIKey,
		senderID: cfg.SenderID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether the provider is configured.
func (c *SMSClient) Enabled() bool {
	return c.apiURL != "" && c.apiKey != ""
}

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

// Send delivers one SMS to an E.164 phone number.
func (c *SMSClient) Send(ctx context.Context, phone, message string) error {
	if !c.Enabled() {
		return nil
	}

	b, err := json.Marshal(smsRequest{To: phone, From: c.senderID, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SMS provider error %d: %s", resp.StatusCode, string(text))
	}
	return nil
}
