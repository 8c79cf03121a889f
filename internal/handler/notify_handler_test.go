package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ssonotify/internal/model"
)

type fakeDispatcher struct {
	cand      model.Candidate
	skipDedup bool
	outcome   model.Outcome
	calls     int
}

func (f *fakeDispatcher) Dispatch(_ context.Context, cand model.Candidate, skipDedup bool) model.Outcome {
	f.calls++
	f.cand = cand
	f.skipDedup = skipDedup
	return f.outcome
}

func newNotifyRouter(d *fakeDispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/admin/notifications/send", NewNotifyHandler(d, zap.NewNop()).Send)
	return r
}

func postJSON(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/notifications/send", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminSendBypassesDedup(t *testing.T) {
	d := &fakeDispatcher{outcome: model.Outcome{
		MemberID: "m1",
		Success:  true,
		Channels: []model.Channel{model.ChannelInApp},
	}}
	r := newNotifyRouter(d)

	w := postJSON(r, `{
		"member_id": "m1",
		"type": "system",
		"title": "ประกาศ",
		"body": "ระบบปิดปรับปรุง 22:00-23:00"
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, d.calls)
	assert.True(t, d.skipDedup, "admin sends must bypass the dedup guard")
	assert.Equal(t, "m1", d.cand.MemberID)
	assert.Equal(t, model.CategorySystem, d.cand.Category)
	assert.Equal(t, []model.Channel{model.ChannelInApp}, d.cand.Channels, "in-app is the default channel")
}

func TestAdminSendExplicitChannels(t *testing.T) {
	d := &fakeDispatcher{outcome: model.Outcome{Success: true}}
	r := newNotifyRouter(d)

	w := postJSON(r, `{
		"member_id": "m1",
		"type": "benefit_reminder",
		"title": "t",
		"body": "b",
		"channels": ["push", "line", "sms"],
		"line_user_id": "U-m1",
		"phone": "+66800000001"
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		[]model.Channel{model.ChannelInApp, model.ChannelLine, model.ChannelSMS},
		d.cand.Channels)
	assert.Equal(t, "U-m1", d.cand.LineUserID)
	assert.Equal(t, "+66800000001", d.cand.Phone)
}

func TestAdminSendValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing member_id", `{"type":"system","title":"t","body":"b"}`},
		{"missing title", `{"member_id":"m1","type":"system","body":"b"}`},
		{"unknown type", `{"member_id":"m1","type":"spam","title":"t","body":"b"}`},
		{"unknown channel", `{"member_id":"m1","type":"system","title":"t","body":"b","channels":["fax"]}`},
		{"not json", `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDispatcher{}
			w := postJSON(newNotifyRouter(d), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, d.calls)
		})
	}
}

func TestAdminSendFailureIs502(t *testing.T) {
	d := &fakeDispatcher{outcome: model.Outcome{
		MemberID: "m1",
		Success:  false,
		Channels: []model.Channel{},
		Error:    "push: insert failed",
	}}
	r := newNotifyRouter(d)

	w := postJSON(r, `{"member_id":"m1","type":"system","title":"t","body":"b"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "insert failed")
}
