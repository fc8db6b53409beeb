package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	videoPrefix    = "videos/"
	metadataPrefix = "metadata/"
)

// GCSStore keeps video blobs and metadata sidecars in a public GCS bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) videoKey(id string) string    { return videoPrefix + id + ".mp4" }
func (s *GCSStore) metadataKey(id string) string { return metadataPrefix + id + ".json" }

func (s *GCSStore) VideoURL(id string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, s.videoKey(id))
}

func (s *GCSStore) PutRecord(ctx context.Context, rec VideoRecord) error {
	obj := s.client.Bucket(s.bucket).Object(s.metadataKey(rec.ID))

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	w.PredefinedACL = "publicRead"

	if err := json.NewEncoder(w).Encode(rec); err != nil {
		_ = w.Close()
		return fmt.Errorf("encode metadata for %s: %w", rec.ID, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write metadata for %s: %w", rec.ID, err)
	}

	return nil
}

func (s *GCSStore) GetRecord(ctx context.Context, id string) (VideoRecord, error) {
	obj := s.client.Bucket(s.bucket).Object(s.metadataKey(id))

	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return VideoRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return VideoRecord{}, fmt.Errorf("%w: read metadata for %s: %v", ErrUnavailable, id, err)
	}
	defer func() { _ = r.Close() }()

	var rec VideoRecord
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return VideoRecord{}, fmt.Errorf("decode metadata for %s: %w", id, err)
	}
	rec.ID = id

	return rec, nil
}

// ListRecords returns every metadata sidecar, newest first.
func (s *GCSStore) ListRecords(ctx context.Context) ([]VideoRecord, error) {
	bkt := s.client.Bucket(s.bucket)
	query := &storage.Query{Prefix: metadataPrefix}

	var records []VideoRecord
	it := bkt.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list metadata: %v", ErrUnavailable, err)
		}
		if !strings.HasSuffix(attrs.Name, ".json") {
			continue
		}

		id := strings.TrimSuffix(strings.TrimPrefix(attrs.Name, metadataPrefix), ".json")
		rec, err := s.GetRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (s *GCSStore) UploadVideo(ctx context.Context, id, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = f.Close() }()

	obj := s.client.Bucket(s.bucket).Object(s.videoKey(id))
	w := obj.NewWriter(ctx)
	w.ContentType = "video/mp4"
	w.PredefinedACL = "publicRead"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload video %s: %w", id, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload video %s: %w", id, err)
	}

	return s.VideoURL(id), nil
}

// Delete removes the blob and sidecar for id. Deleting an id that does
// not exist is not an error.
func (s *GCSStore) Delete(ctx context.Context, id string) error {
	bkt := s.client.Bucket(s.bucket)

	for _, key := range []string{s.videoKey(id), s.metadataKey(id)} {
		err := bkt.Object(key).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	return nil
}
