package routes

import (
	"net/http"

	"eventbeta/internal/call"
	"eventbeta/internal/chat"
	"eventbeta/internal/config"
	"eventbeta/internal/handlers"
	"eventbeta/internal/middleware"
	"eventbeta/internal/models"
	"eventbeta/internal/store"
	"eventbeta/internal/websocket"
	"eventbeta/pkg/database"

	"github.com/gin-gonic/gin"
)

// Dependencies carries the wired collections and hub the routes are built
// on.
type Dependencies struct {
	Config   *config.Config
	Hub      *websocket.Hub
	Messages store.Collection[models.ChatMessage]
	Events   store.Collection[models.EventRecord]
	Sessions store.Collection[models.CallSession]
}

// SetupRoutes wires services, handlers and middleware onto the router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	gate := chat.NewStatusGate(deps.Events)
	chatService := chat.NewService(deps.Messages, gate, cfg.Chat.MaxContentRunes)
	uploader := chat.NewUploader(chatService, cfg.Chat.MaxImageBytes)
	coordinator := call.NewCoordinator(deps.Sessions, gate)

	chatHandler := handlers.NewChatHandler(chatService, uploader)
	callHandler := handlers.NewCallHandler(coordinator, cfg.Call)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, gate, cfg.Server.WebSocket)

	// Global middleware
	router.Use(middleware.CORS(cfg.Server.CORS))
	router.Use(middleware.Logger())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		db := database.HealthCheck()
		status := "ok"
		code := http.StatusOK
		if db["status"] != "connected" {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":   status,
			"version":  cfg.App.Version,
			"database": db,
		})
	})

	// WebSocket connection; anonymous viewers get a guest identity
	router.GET("/ws/events/:event_id", middleware.OptionalAuth(cfg.Security.JWT.Secret), wsHandler.Connect)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(cfg.Security.JWT.Secret))
	{
		events := v1.Group("/events/:event_id")
		{
			events.POST("/messages", chatHandler.SendMessage)
			events.POST("/messages/image", chatHandler.SendImage)
			events.PUT("/messages/:message_id", chatHandler.EditMessage)
			events.DELETE("/messages/:message_id", chatHandler.DeleteMessage)
			events.POST("/messages/:message_id/flag", chatHandler.FlagMessage)

			events.GET("/call", callHandler.GetCall)
			events.POST("/call/start", callHandler.StartCall)
			events.POST("/call/join", callHandler.JoinCall)
			events.POST("/call/end", callHandler.EndCall)
		}
	}
}
