package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"eventbeta/internal/models"
	"eventbeta/pkg/logger"
)

var (
	// ErrNotImage rejects attachments whose MIME type is not image/*.
	ErrNotImage = errors.New("chat: attachment is not an image")

	// ErrImageTooLarge rejects attachments over the configured byte limit.
	ErrImageTooLarge = errors.New("chat: image exceeds the size limit")

	// ErrUploadInProgress rejects a second attachment while the sender's
	// previous one is still being processed.
	ErrUploadInProgress = errors.New("chat: an upload is already in progress")
)

// Uploader is the attachment pipeline: it validates raw image bytes, encodes
// them as a data URI and sends the result as an image message. The pipeline
// is non-reentrant per sender; a sender's second attachment is rejected until
// the first completes.
type Uploader struct {
	sender   *Service
	maxBytes int64

	mu   sync.Mutex
	busy map[string]bool
}

// NewUploader creates an attachment pipeline in front of svc.
func NewUploader(svc *Service, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &Uploader{
		sender:   svc,
		busy:     make(map[string]bool),
		maxBytes: maxBytes,
	}
}

// UploadInput carries a raw attachment plus the sender identity snapshot.
type UploadInput struct {
	EventID     string
	SenderUID   string
	SenderName  string
	SenderRole  string
	ContentType string
	Data        []byte
}

// Upload validates, encodes and sends an image attachment. Validation runs
// before the busy flag is set, so an oversized or non-image file never blocks
// a follow-up attempt. On failure nothing reaches the transcript.
func (u *Uploader) Upload(ctx context.Context, in UploadInput) (*models.ChatMessage, error) {
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, ErrNotImage
	}
	if int64(len(in.Data)) > u.maxBytes {
		return nil, ErrImageTooLarge
	}
	if len(in.Data) == 0 {
		return nil, ErrEmptyMessage
	}

	if !u.acquire(in.SenderUID) {
		return nil, ErrUploadInProgress
	}
	defer u.release(in.SenderUID)

	dataURI := fmt.Sprintf("data:%s;base64,%s",
		in.ContentType, base64.StdEncoding.EncodeToString(in.Data))

	msg, err := u.sender.Send(ctx, SendInput{
		EventID:    in.EventID,
		SenderUID:  in.SenderUID,
		SenderName: in.SenderName,
		SenderRole: in.SenderRole,
		Image:      dataURI,
	})
	if err != nil {
		return nil, err
	}

	logger.LogChatEvent("image_uploaded", in.EventID, in.SenderUID, map[string]interface{}{
		"message_id":   msg.ID,
		"content_type": in.ContentType,
		"size_bytes":   len(in.Data),
	})
	return msg, nil
}

// Busy reports whether the sender has an upload in flight.
func (u *Uploader) Busy(senderUID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.busy[senderUID]
}

func (u *Uploader) acquire(senderUID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.busy[senderUID] {
		return false
	}
	u.busy[senderUID] = true
	return true
}

func (u *Uploader) release(senderUID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.busy, senderUID)
}
