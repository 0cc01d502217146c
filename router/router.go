package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/controllers"
	"github.com/gem-enterprise/gemhub/middlewares"
)

func InitRouter(ctl *controllers.Controller, logger *zap.Logger, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(logger))

	allowedOrigins := make([]string, 0, len(origins))
	for _, o := range origins {
		if o != "" {
			allowedOrigins = append(allowedOrigins, o)
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	allowCreds := true
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		allowCreds = false
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: allowCreds,
		MaxAge:           12 * time.Hour,
	}))

	// Public health endpoint for liveness/readiness checks
	r.GET("/api/health", controllers.Health)

	// Bot API webhooks, one path per bot credential
	r.POST("/webhook/:credential", ctl.BotWebhook)

	r.GET("/feed.xml", ctl.GetFeedXML)

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/register", middlewares.RegistrationGate(), controllers.Register)
	}

	api := r.Group("/api")
	{
		api.GET("/news", ctl.GetNews)
		api.POST("/assistant/chat", ctl.Chat)
	}

	admin := r.Group("/api/admin")
	admin.Use(middlewares.AuthMiddleware())
	{
		content := admin.Group("/content")
		{
			content.GET("/pending", ctl.GetPending)
			content.GET("/approved", ctl.GetApproved)
			content.GET("/export", ctl.ExportContent)
			content.GET("/stats", ctl.GetContentStats)
			content.POST("/:id/approve", ctl.ApproveContent)
			content.POST("/:id/reject", ctl.RejectContent)
			content.POST("/:id/posted", ctl.MarkPosted)
			content.POST("/:id/customize", ctl.CustomizeContent)
			content.POST("/:id/schedule", ctl.ScheduleContent)
		}

		workflow := admin.Group("/workflow")
		{
			workflow.POST("/run", ctl.RunWorkflow)
			workflow.POST("/drain", ctl.DrainQueue)
			workflow.POST("/announce", ctl.Announce)
			workflow.GET("/posts", ctl.GetPosts)
		}

		admin.GET("/feeds", ctl.GetFeeds)
		admin.POST("/feeds", ctl.AddFeed)
		admin.PUT("/feeds/:name/enabled", ctl.SetFeedEnabled)
		admin.GET("/submissions", ctl.GetSubmissions)
		admin.GET("/bots/stats", ctl.GetBotStats)
	}

	return r
}
