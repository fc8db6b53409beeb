package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for tests and credential-less local
// runs. Video bytes are held in memory; URLs are synthetic.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]VideoRecord
	blobs   map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]VideoRecord),
		blobs:   make(map[string][]byte),
	}
}

func (s *MemoryStore) VideoURL(id string) string {
	return fmt.Sprintf("memory://videos/%s.mp4", id)
}

func (s *MemoryStore) PutRecord(ctx context.Context, rec VideoRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) GetRecord(ctx context.Context, id string) (VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return VideoRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

func (s *MemoryStore) ListRecords(ctx context.Context) ([]VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]VideoRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (s *MemoryStore) UploadVideo(ctx context.Context, id, localPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read video file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = data

	return s.VideoURL(id), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	delete(s.blobs, id)
	return nil
}

// HasBlob reports whether video bytes were uploaded for id.
func (s *MemoryStore) HasBlob(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[id]
	return ok
}
