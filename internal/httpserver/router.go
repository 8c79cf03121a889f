package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ssonotify/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	predictHandler *handler.PredictHandler,
	notifyHandler *handler.NotifyHandler,
	jwtSecret string,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Scheduler trigger (bearer cron secret, checked in the handler)
	r.POST("/api/notifications/predict", predictHandler.Trigger)
	r.GET("/api/notifications/predict", predictHandler.TriggerManual)

	// Admin surface
	admin := r.Group("/api/admin")
	admin.Use(AdminAuthMiddleware(jwtSecret))
	{
		admin.POST("/notifications/send", notifyHandler.Send)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(":" + port)
}
