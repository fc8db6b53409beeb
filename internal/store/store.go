package store

import (
	"context"
	"errors"
	"time"
)

// Status tracks where a video sits in its lifecycle. A record is created
// as processing and is overwritten exactly once with a terminal status.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var (
	// ErrNotFound is returned by Get when no sidecar exists for the id.
	ErrNotFound = errors.New("video not found")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// VideoRecord is the metadata sidecar persisted next to a video blob.
// Description doubles as status detail: a script preview once completed,
// an error message on failure.
type VideoRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Likes       int       `json:"likes"`
	Shares      int       `json:"shares"`
}

// Store persists video blobs and their metadata sidecars. Record writes
// are full overwrites keyed by id; there are no partial updates.
type Store interface {
	PutRecord(ctx context.Context, rec VideoRecord) error
	GetRecord(ctx context.Context, id string) (VideoRecord, error)
	ListRecords(ctx context.Context) ([]VideoRecord, error)
	UploadVideo(ctx context.Context, id, localPath string) (string, error)
	Delete(ctx context.Context, id string) error
	VideoURL(id string) string
}
