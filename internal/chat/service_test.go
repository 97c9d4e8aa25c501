package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"eventbeta/internal/models"
	"eventbeta/internal/store"
)

type stubGate struct {
	active bool
	err    error
}

func (g *stubGate) RoomActive(ctx context.Context, eventID string) (bool, error) {
	return g.active, g.err
}

func newTestService(t *testing.T, active bool) (*Service, *store.MemoryCollection[models.ChatMessage]) {
	t.Helper()
	messages := store.NewMemoryCollection[models.ChatMessage]()
	svc := NewService(messages, &stubGate{active: active}, 500)
	return svc, messages
}

func mustSend(t *testing.T, svc *Service, eventID, uid, content string) *models.ChatMessage {
	t.Helper()
	msg, err := svc.Send(context.Background(), SendInput{
		EventID:    eventID,
		SenderUID:  uid,
		SenderName: "Sender",
		SenderRole: "participant",
		Content:    content,
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	return msg
}

func TestSendValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      SendInput
		active  bool
		wantErr error
	}{
		{
			name:    "empty content",
			in:      SendInput{EventID: "ev1", SenderUID: "u1"},
			active:  true,
			wantErr: ErrEmptyMessage,
		},
		{
			name:    "whitespace only content",
			in:      SendInput{EventID: "ev1", SenderUID: "u1", Content: "   \n\t "},
			active:  true,
			wantErr: ErrEmptyMessage,
		},
		{
			name:    "content over rune limit",
			in:      SendInput{EventID: "ev1", SenderUID: "u1", Content: strings.Repeat("é", 501)},
			active:  true,
			wantErr: ErrContentTooLong,
		},
		{
			name:    "room inactive",
			in:      SendInput{EventID: "ev1", SenderUID: "u1", Content: "hello"},
			active:  false,
			wantErr: ErrRoomInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, messages := newTestService(t, tt.active)
			_, err := svc.Send(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Send() error = %v, want %v", err, tt.wantErr)
			}

			var count int
			sub, _ := messages.Subscribe(context.Background(), store.Filter{}, func(docs []models.ChatMessage) {
				count = len(docs)
			})
			defer sub.Unsubscribe()
			if count != 0 {
				t.Fatalf("rejected send reached the store: %d documents", count)
			}
		})
	}
}

func TestSendRejectsTextAndImageTogether(t *testing.T) {
	svc, _ := newTestService(t, true)
	_, err := svc.Send(context.Background(), SendInput{
		EventID:   "ev1",
		SenderUID: "u1",
		Content:   "hello",
		Image:     "data:image/png;base64,aGk=",
	})
	if err == nil {
		t.Fatal("Send() accepted a message with both text and an image")
	}
}

func TestSendExactlyAtRuneLimit(t *testing.T) {
	svc, _ := newTestService(t, true)
	msg := mustSend(t, svc, "ev1", "u1", strings.Repeat("é", 500))
	if msg.ID == "" {
		t.Fatal("Send() returned a message without an id")
	}
}

func TestSendTrimsContent(t *testing.T) {
	svc, _ := newTestService(t, true)
	msg := mustSend(t, svc, "ev1", "u1", "  hello  ")
	if msg.Content != "hello" {
		t.Fatalf("Content = %q, want %q", msg.Content, "hello")
	}
	if msg.IsImage() {
		t.Fatal("text message reported as image")
	}
}

func TestSendStoreFailureSurfaced(t *testing.T) {
	messages := store.NewMemoryCollection[models.ChatMessage]()
	messages.FailWrites = true
	svc := NewService(messages, &stubGate{active: true}, 500)

	_, err := svc.Send(context.Background(), SendInput{
		EventID: "ev1", SenderUID: "u1", Content: "hello",
	})
	if err == nil {
		t.Fatal("Send() did not surface the store failure")
	}
}

func TestEditAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		wantErr error
	}{
		{name: "sender may edit", caller: "u1", wantErr: nil},
		{name: "other user rejected", caller: "u2", wantErr: ErrNotSender},
		{name: "anonymous rejected", caller: "", wantErr: ErrNotSender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, true)
			msg := mustSend(t, svc, "ev1", "u1", "original")

			edited, err := svc.Edit(context.Background(), msg.ID, tt.caller, "revised")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Edit() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				stored, getErr := svc.Get(context.Background(), msg.ID)
				if getErr != nil {
					t.Fatalf("Get() error = %v", getErr)
				}
				if stored.Content != "original" || stored.Edited {
					t.Fatalf("rejected edit mutated the message: %+v", stored)
				}
				return
			}
			if edited.Content != "revised" || !edited.Edited || edited.EditedAt == nil {
				t.Fatalf("Edit() result = %+v, want revised content with edit marker", edited)
			}
		})
	}
}

func TestEditImageMessageRejected(t *testing.T) {
	svc, _ := newTestService(t, true)
	msg, err := svc.Send(context.Background(), SendInput{
		EventID: "ev1", SenderUID: "u1", Image: "data:image/png;base64,aGk=",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	_, err = svc.Edit(context.Background(), msg.ID, "u1", "caption")
	if !errors.Is(err, ErrImageMessage) {
		t.Fatalf("Edit() error = %v, want %v", err, ErrImageMessage)
	}
}

func TestEditMissingMessage(t *testing.T) {
	svc, _ := newTestService(t, true)
	_, err := svc.Edit(context.Background(), "nope", "u1", "revised")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Edit() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		wantErr error
	}{
		{name: "sender may delete", caller: "u1", wantErr: nil},
		{name: "other user rejected", caller: "u2", wantErr: ErrNotSender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, true)
			msg := mustSend(t, svc, "ev1", "u1", "to delete")

			err := svc.Delete(context.Background(), msg.ID, tt.caller)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Delete() error = %v, want %v", err, tt.wantErr)
			}

			_, getErr := svc.Get(context.Background(), msg.ID)
			if tt.wantErr == nil {
				if !errors.Is(getErr, ErrNotFound) {
					t.Fatalf("deleted message still present, Get() error = %v", getErr)
				}
			} else if getErr != nil {
				t.Fatalf("rejected delete removed the message: %v", getErr)
			}
		})
	}
}

func TestFlag(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		wantErr error
	}{
		{name: "other user may flag", caller: "u2", wantErr: nil},
		{name: "sender cannot flag own", caller: "u1", wantErr: ErrOwnMessage},
		{name: "anonymous rejected", caller: "", wantErr: ErrNotSender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, true)
			msg := mustSend(t, svc, "ev1", "u1", "questionable")

			err := svc.Flag(context.Background(), msg.ID, tt.caller)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Flag() error = %v, want %v", err, tt.wantErr)
			}

			stored, getErr := svc.Get(context.Background(), msg.ID)
			if getErr != nil {
				t.Fatalf("Get() error = %v", getErr)
			}
			if got, want := stored.Flagged, tt.wantErr == nil; got != want {
				t.Fatalf("Flagged = %v, want %v", got, want)
			}
		})
	}
}

func TestFlagIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, true)
	msg := mustSend(t, svc, "ev1", "u1", "questionable")

	for i := 0; i < 2; i++ {
		if err := svc.Flag(context.Background(), msg.ID, "u2"); err != nil {
			t.Fatalf("Flag() attempt %d error = %v", i+1, err)
		}
	}
	stored, err := svc.Get(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !stored.Flagged {
		t.Fatal("message not flagged after repeated flags")
	}
}

func TestStatusGate(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{name: "published is active", status: models.EventStatusPublished, want: true},
		{name: "draft is inactive", status: models.EventStatusDraft, want: false},
		{name: "pending approval is inactive", status: models.EventStatusPending, want: false},
		{name: "finished is inactive", status: models.EventStatusFinished, want: false},
		{name: "rejected is inactive", status: models.EventStatusRejected, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := store.NewMemoryCollection[models.EventRecord]()
			if err := events.Create(context.Background(), "ev1", models.EventRecord{ID: "ev1", Status: tt.status}); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			gate := NewStatusGate(events)
			active, err := gate.RoomActive(context.Background(), "ev1")
			if err != nil {
				t.Fatalf("RoomActive() error = %v", err)
			}
			if active != tt.want {
				t.Fatalf("RoomActive() = %v, want %v", active, tt.want)
			}
		})
	}
}

func TestStatusGateMissingEvent(t *testing.T) {
	gate := NewStatusGate(store.NewMemoryCollection[models.EventRecord]())
	active, err := gate.RoomActive(context.Background(), "missing")
	if err != nil {
		t.Fatalf("RoomActive() error = %v", err)
	}
	if active {
		t.Fatal("RoomActive() = true for a missing event")
	}
}
