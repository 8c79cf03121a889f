package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ssonotify/internal/model"
)

// PredictRunner executes one full prediction run.
type PredictRunner interface {
	Run(ctx context.Context) (model.Summary, error)
}

// PredictHandler exposes the prediction engine to the external scheduler.
type PredictHandler struct {
	runner     PredictRunner
	cronSecret string
	production bool
	logger     *zap.Logger
}

func NewPredictHandler(runner PredictRunner, cronSecret string, production bool, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{
		runner:     runner,
		cronSecret: cronSecret,
		production: production,
		logger:     logger,
	}
}

// Trigger handles the scheduled POST trigger. An unset secret rejects
// every request: the entrypoint fails closed.
func (h *PredictHandler) Trigger(c *gin.Context) {
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.run(c)
}

// TriggerManual is the GET variant for manual runs, disabled in
// production.
func (h *PredictHandler) TriggerManual(c *gin.Context) {
	if h.production {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.run(c)
}

func (h *PredictHandler) authorized(c *gin.Context) bool {
	if h.cronSecret == "" {
		h.logger.Error("CRON_SECRET not configured, rejecting trigger")
		return false
	}
	return c.GetHeader("Authorization") == "Bearer "+h.cronSecret
}

func (h *PredictHandler) run(c *gin.Context) {
	h.logger.Info("Prediction run triggered",
		zap.String("client_ip", c.ClientIP()),
		zap.String("method", c.Request.Method),
	)

	summary, err := h.runner.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("Prediction run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"total":       summary.Total,
		"sent":        summary.Sent,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"breakdown":   summary.Breakdown,
		"duration_ms": summary.DurationMS,
	})
}
