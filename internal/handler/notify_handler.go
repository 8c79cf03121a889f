package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ssonotify/internal/model"
)

type singleDispatcher interface {
	Dispatch(ctx context.Context, cand model.Candidate, skipDedup bool) model.Outcome
}

// NotifyHandler lets an admin send one notification directly. Admin
// sends are explicitly user-initiated, so they bypass the dedup guard.
type NotifyHandler struct {
	dispatcher singleDispatcher
	logger     *zap.Logger
}

func NewNotifyHandler(dispatcher singleDispatcher, logger *zap.Logger) *NotifyHandler {
	return &NotifyHandler{dispatcher: dispatcher, logger: logger}
}

type sendRequest struct {
	MemberID   string   `json:"member_id" binding:"required"`
	Type       string   `json:"type" binding:"required"`
	Title      string   `json:"title" binding:"required"`
	Body       string   `json:"body" binding:"required"`
	Channels   []string `json:"channels"`
	LineUserID string   `json:"line_user_id"`
	Phone      string   `json:"phone"`
}

var validCategories = map[model.Category]bool{
	model.CategoryBenefitReminder:   true,
	model.CategoryPaymentStatus:     true,
	model.CategorySection40Outreach: true,
	model.CategorySystem:            true,
}

var validChannels = map[model.Channel]bool{
	model.ChannelInApp: true,
	model.ChannelLine:  true,
	model.ChannelSMS:   true,
}

func (h *NotifyHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := model.Category(req.Type)
	if !validCategories[category] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type: " + req.Type})
		return
	}

	// In-app only unless the admin asks for more.
	channels := []model.Channel{model.ChannelInApp}
	if len(req.Channels) > 0 {
		channels = channels[:0]
		for _, raw := range req.Channels {
			ch := model.Channel(raw)
			if !validChannels[ch] {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel: " + raw})
				return
			}
			channels = append(channels, ch)
		}
	}

	h.logger.Info("Admin notification send",
		zap.String("admin", c.GetString("admin_id")),
		zap.String("member_id", req.MemberID),
		zap.String("type", req.Type),
	)

	outcome := h.dispatcher.Dispatch(c.Request.Context(), model.Candidate{
		MemberID:   req.MemberID,
		Category:   category,
		Title:      req.Title,
		Body:       req.Body,
		Channels:   channels,
		LineUserID: req.LineUserID,
		Phone:      req.Phone,
	}, true)

	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, outcome)
}
