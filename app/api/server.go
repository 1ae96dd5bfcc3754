package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidqueue/app/auth"
	"vidqueue/app/bot"
	"vidqueue/app/database"
)

const (
	initDataHeader   = "X-Telegram-Init-Data"
	contextUserIDKey = "user_id"
)

// NewServer creates the HTTP server with all routes configured: the
// Telegram webhook, the health endpoint and the authenticated Mini App API.
func NewServer(handler *Handler, webhookHandler *bot.Handler, userRepo database.UserRepository, botToken string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for the Mini App frontend
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+initDataHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.POST("/webhook", webhookHandler.HandleWebhook)
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	api.Use(authMiddleware(userRepo, botToken))
	{
		api.GET("/videos", handler.ListVideos)
		api.PATCH("/videos/:id", handler.ToggleWatched)
		api.DELETE("/videos/:id", handler.DeleteVideo)
		api.GET("/progress/:id", handler.GetProgress)
		api.POST("/progress", handler.SaveProgress)
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})

	return r
}

// authMiddleware verifies the Mini App's signed init data on every call and
// resolves the calling user. A missing or invalid payload is a hard reject.
func authMiddleware(userRepo database.UserRepository, botToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		initData := c.GetHeader(initDataHeader)
		if initData == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing init data"})
			c.Abort()
			return
		}

		user, err := auth.Verify(initData, botToken)
		if err != nil {
			slog.Warn("Init data verification failed", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid init data"})
			c.Abort()
			return
		}

		if err := userRepo.UpsertUser(database.User{
			ID:        user.ID,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		}); err != nil {
			slog.Error("Failed to upsert user", "user_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, user.ID)
		c.Next()
	}
}
