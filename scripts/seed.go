// Seed tool for local development: connects to MongoDB, ensures the
// collections exist and inserts a published demo event with a small starter
// transcript so the chat endpoints have something to serve.
//
// Usage: go run scripts/seed.go
package main

import (
	"context"
	"log"
	"time"

	"eventbeta/internal/call"
	"eventbeta/internal/chat"
	"eventbeta/internal/config"
	"eventbeta/internal/models"
	"eventbeta/internal/utils"
	"eventbeta/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
)

const demoEventID = "demo-event"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if err := database.InitMongoDB(cfg.Database.Mongo); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer database.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedEvent(ctx)
	seedMessages(ctx)

	token, err := utils.GenerateUserJWT(cfg.Security.JWT.Secret,
		"demo-user", "Demo User", "attendee", cfg.Security.JWT.TTL)
	if err != nil {
		log.Fatalf("Failed to generate demo token: %v", err)
	}
	log.Printf("Demo viewer token: %s", token)

	log.Println("Seed completed")
}

func seedEvent(ctx context.Context) {
	events := database.GetCollection(chat.EventsCollection)

	count, err := events.CountDocuments(ctx, bson.M{"_id": demoEventID})
	if err != nil {
		log.Fatalf("Failed to check demo event: %v", err)
	}
	if count > 0 {
		log.Println("Demo event already exists, skipping")
		return
	}

	_, err = events.InsertOne(ctx, models.EventRecord{
		ID:     demoEventID,
		Status: models.EventStatusPublished,
	})
	if err != nil {
		log.Fatalf("Failed to insert demo event: %v", err)
	}
	log.Printf("Inserted published event %q (call room %q)",
		demoEventID, call.RoomName("eventbeta", demoEventID))
}

func seedMessages(ctx context.Context) {
	messages := database.GetCollection(chat.MessagesCollection)

	count, err := messages.CountDocuments(ctx, bson.M{"event_id": demoEventID})
	if err != nil {
		log.Fatalf("Failed to check demo messages: %v", err)
	}
	if count > 0 {
		log.Println("Demo transcript already exists, skipping")
		return
	}

	starter := []string{
		"Welcome to the demo event chat!",
		"Messages here sync live to every connected viewer.",
	}
	for i, content := range starter {
		msg := models.NewTextMessage(demoEventID, "seed-bot", "Seed Bot", "organizer", content)
		msg.ID = uuid.NewString()
		msg.Timestamp = msg.Timestamp.Add(time.Duration(i) * time.Second)

		doc := bson.M{
			"_id":         msg.ID,
			"event_id":    msg.EventID,
			"sender_uid":  msg.SenderUID,
			"sender_name": msg.SenderName,
			"sender_role": msg.SenderRole,
			"content":     msg.Content,
			"timestamp":   msg.Timestamp,
			"edited":      msg.Edited,
			"flagged":     msg.Flagged,
		}
		if _, err := messages.InsertOne(ctx, doc); err != nil {
			log.Fatalf("Failed to insert demo message: %v", err)
		}
	}
	log.Printf("Inserted %d starter messages for %q", len(starter), demoEventID)
}
