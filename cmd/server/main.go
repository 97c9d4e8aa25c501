package main

import (
	"log"
	"net/http"

	"eventbeta/internal/call"
	"eventbeta/internal/chat"
	"eventbeta/internal/config"
	"eventbeta/internal/models"
	"eventbeta/internal/routes"
	"eventbeta/internal/store"
	"eventbeta/internal/websocket"
	"eventbeta/pkg/database"
	"eventbeta/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger.Init()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := database.InitMongoDB(cfg.Database.Mongo); err != nil {
		logger.Fatal("Failed to connect to MongoDB: " + err.Error())
	}
	defer database.Disconnect()

	// Store collections; snapshots are ordered by creation time
	messages := store.NewMongoCollection[models.ChatMessage](
		database.GetCollection(chat.MessagesCollection), "timestamp")
	events := store.NewMongoCollection[models.EventRecord](
		database.GetCollection(chat.EventsCollection), "_id")
	sessions := store.NewMongoCollection[models.CallSession](
		database.GetCollection(call.SessionsCollection), "started_at")

	// WebSocket hub plus the relay that feeds it store pushes
	hub := websocket.NewHub()
	gate := chat.NewStatusGate(events)
	coordinator := call.NewCoordinator(sessions, gate)
	relay := websocket.NewRelay(hub, messages, coordinator)
	defer relay.Close()
	go hub.Run()

	// Initialize Gin router
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Setup routes
	routes.SetupRoutes(router, routes.Dependencies{
		Config:   cfg,
		Hub:      hub,
		Messages: messages,
		Events:   events,
		Sessions: sessions,
	})

	srv := &http.Server{
		Addr:         cfg.Server.HTTP.Host + ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	logger.Info("Server starting on port: " + cfg.App.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to start server: " + err.Error())
	}
}
