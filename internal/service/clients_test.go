package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssonotify/internal/config"
)

func TestLinePushSendsBearerAndPayload(t *testing.T) {
	var got linePushRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewLineClient("line-token")
	c.baseURL = srv.URL

	err := c.Push(context.Background(), "U-m1", "หัวข้อ", "เนื้อหา")
	require.NoError(t, err)

	assert.Equal(t, "Bearer line-token", auth)
	assert.Equal(t, "U-m1", got.To)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "text", got.Messages[0].Type)
	assert.Equal(t, "🔔 หัวข้อ\n\nเนื้อหา", got.Messages[0].Text)
}

func TestLinePushNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer srv.Close()

	c := NewLineClient("line-token")
	c.baseURL = srv.URL

	err := c.Push(context.Background(), "U-m1", "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestLinePushDisabledIsNoop(t *testing.T) {
	c := NewLineClient("")
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Push(context.Background(), "U-m1", "t", "b"))
}

func TestSMSSendPostsProviderRequest(t *testing.T) {
	var got smsRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewSMSClient(config.SMSConfig{APIURL: srv.URL, APIKey: "sms-key", SenderID: "SSO"})
	require.True(t, c.Enabled())

	err := c.Send(context.Background(), "+66800000001", "หัวข้อ: เนื้อหา")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sms-key", auth)
	assert.Equal(t, smsRequest{To: "+66800000001", From: "SSO", Message: "หัวข้อ: เนื้อหา"}, got)
}

func TestSMSSendProviderErrorCapturesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid destination"))
	}))
	defer srv.Close()

	c := NewSMSClient(config.SMSConfig{APIURL: srv.URL, APIKey: "k", SenderID: "SSO"})

	err := c.Send(context.Background(), "bad", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid destination")
}

func TestSMSUnconfiguredIsNoop(t *testing.T) {
	c := NewSMSClient(config.SMSConfig{SenderID: "SSO"})
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Send(context.Background(), "+66800000001", "m"))
}
