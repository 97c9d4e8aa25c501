package chat

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
)

func newTestUploader(t *testing.T) *Uploader {
	t.Helper()
	svc, _ := newTestService(t, true)
	return NewUploader(svc, 5*1024*1024)
}

func uploadInput(contentType string, size int) UploadInput {
	return UploadInput{
		EventID:     "ev1",
		SenderUID:   "u1",
		SenderName:  "Sender",
		SenderRole:  "participant",
		ContentType: contentType,
		Data:        bytes.Repeat([]byte{0xAB}, size),
	}
}

func TestUploadValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      UploadInput
		wantErr error
	}{
		{
			name:    "pdf rejected",
			in:      uploadInput("application/pdf", 1024),
			wantErr: ErrNotImage,
		},
		{
			name:    "text rejected",
			in:      uploadInput("text/plain", 16),
			wantErr: ErrNotImage,
		},
		{
			name:    "six MiB jpeg rejected",
			in:      uploadInput("image/jpeg", 6*1024*1024),
			wantErr: ErrImageTooLarge,
		},
		{
			name:    "one byte over the limit rejected",
			in:      uploadInput("image/png", 5*1024*1024+1),
			wantErr: ErrImageTooLarge,
		},
		{
			name:    "empty payload rejected",
			in:      uploadInput("image/png", 0),
			wantErr: ErrEmptyMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUploader(t)
			_, err := u.Upload(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if u.Busy("u1") {
				t.Fatal("rejected upload left the sender busy")
			}
		})
	}
}

func TestUploadProducesDataURI(t *testing.T) {
	u := newTestUploader(t)
	in := uploadInput("image/png", 2*1024*1024)

	msg, err := u.Upload(context.Background(), in)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !msg.IsImage() {
		t.Fatal("uploaded message is not an image message")
	}
	if msg.Content != "" {
		t.Fatalf("image message carries text content %q", msg.Content)
	}

	wantPrefix := "data:image/png;base64,"
	if !strings.HasPrefix(msg.Image, wantPrefix) {
		t.Fatalf("Image = %q..., want prefix %q", msg.Image[:32], wantPrefix)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(msg.Image, wantPrefix))
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	if !bytes.Equal(decoded, in.Data) {
		t.Fatal("decoded payload does not round-trip the original bytes")
	}
}

func TestUploadExactlyAtLimit(t *testing.T) {
	u := newTestUploader(t)
	if _, err := u.Upload(context.Background(), uploadInput("image/jpeg", 5*1024*1024)); err != nil {
		t.Fatalf("Upload() at the limit error = %v", err)
	}
}

func TestUploadBusyPerSender(t *testing.T) {
	u := newTestUploader(t)

	if !u.acquire("u1") {
		t.Fatal("acquire() failed on an idle sender")
	}

	_, err := u.Upload(context.Background(), uploadInput("image/png", 16))
	if !errors.Is(err, ErrUploadInProgress) {
		t.Fatalf("Upload() while busy error = %v, want %v", err, ErrUploadInProgress)
	}

	// A different sender is not blocked.
	other := uploadInput("image/png", 16)
	other.SenderUID = "u2"
	if _, err := u.Upload(context.Background(), other); err != nil {
		t.Fatalf("Upload() for idle sender error = %v", err)
	}

	u.release("u1")
	if _, err := u.Upload(context.Background(), uploadInput("image/png", 16)); err != nil {
		t.Fatalf("Upload() after release error = %v", err)
	}
}

func TestUploadFailureClearsBusy(t *testing.T) {
	svc, messages := newTestService(t, true)
	messages.FailWrites = true
	u := NewUploader(svc, 5*1024*1024)

	_, err := u.Upload(context.Background(), uploadInput("image/png", 16))
	if err == nil {
		t.Fatal("Upload() did not surface the store failure")
	}
	if u.Busy("u1") {
		t.Fatal("failed upload left the sender busy")
	}
}

func TestUploadConcurrentSameSender(t *testing.T) {
	u := newTestUploader(t)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := u.Upload(context.Background(), uploadInput("image/png", 16))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, busy int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrUploadInProgress):
			busy++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok == 0 {
		t.Fatal("no upload succeeded")
	}
	if ok+busy != attempts {
		t.Fatalf("ok=%d busy=%d, want %d total", ok, busy, attempts)
	}
}
