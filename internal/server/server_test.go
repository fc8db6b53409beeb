package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"sportsreels/internal/reel"
	"sportsreels/internal/store"
	"sportsreels/pkg/tasks"
)

type fakeEnqueuer struct {
	enqueued []*asynq.Task
	err      error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.enqueued = append(f.enqueued, task)
	return &asynq.TaskInfo{}, nil
}

type realStarter struct {
	records store.Store
}

func (s *realStarter) Begin(ctx context.Context, id string, req reel.Request) (store.VideoRecord, error) {
	if err := req.Validate(); err != nil {
		return store.VideoRecord{}, err
	}
	now := time.Now().UTC()
	rec := store.VideoRecord{
		ID:        id,
		Title:     req.SubjectName + " - " + req.Category + " History",
		Status:    store.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return rec, s.records.PutRecord(ctx, rec)
}

func newTestServer(records store.Store, enqueuer *fakeEnqueuer) *Server {
	s := New(&realStarter{records: records}, enqueuer, records)
	s.newID = func(subject string) string { return "test-id" }
	return s
}

func TestGenerateAccepted(t *testing.T) {
	records := store.NewMemoryStore()
	enqueuer := &fakeEnqueuer{}
	srv := newTestServer(records, enqueuer)

	body := `{"subjectName":"Michael Jordan","category":"Basketball"}`
	req := httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", w.Code, w.Body.String())
	}

	var rec store.VideoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rec.ID != "test-id" {
		t.Errorf("id = %q", rec.ID)
	}
	if rec.Status != store.StatusProcessing {
		t.Errorf("status = %q, want processing", rec.Status)
	}

	if len(enqueuer.enqueued) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(enqueuer.enqueued))
	}
	task := enqueuer.enqueued[0]
	if task.Type() != tasks.TypeGenerateVideo {
		t.Errorf("task type = %q", task.Type())
	}
	var payload tasks.GenerateVideoPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.VideoID != "test-id" || payload.SubjectName != "Michael Jordan" {
		t.Errorf("payload = %+v", payload)
	}

	if _, err := records.GetRecord(context.Background(), "test-id"); err != nil {
		t.Errorf("processing record missing: %v", err)
	}
}

func TestGenerateRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing subject", `{"category":"Basketball"}`},
		{"missing category", `{"subjectName":"Michael Jordan"}`},
		{"malformed json", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enqueuer := &fakeEnqueuer{}
			srv := newTestServer(store.NewMemoryStore(), enqueuer)

			req := httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if len(enqueuer.enqueued) != 0 {
				t.Errorf("task enqueued for invalid request")
			}
		})
	}
}

func TestGenerateEnqueueFailureDiscardsRecord(t *testing.T) {
	records := store.NewMemoryStore()
	enqueuer := &fakeEnqueuer{err: errors.New("redis down")}
	srv := newTestServer(records, enqueuer)

	body := `{"subjectName":"Serena Williams","category":"Tennis"}`
	req := httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	// No task will ever run, so the processing record must not linger.
	if _, err := records.GetRecord(context.Background(), "test-id"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("orphaned record still present: %v", err)
	}
}

func TestListReturnsRecordsNewestFirst(t *testing.T) {
	records := store.NewMemoryStore()
	older := store.VideoRecord{ID: "a", CreatedAt: time.Now().Add(-time.Hour)}
	newer := store.VideoRecord{ID: "b", CreatedAt: time.Now()}
	_ = records.PutRecord(context.Background(), older)
	_ = records.PutRecord(context.Background(), newer)

	srv := newTestServer(records, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []store.VideoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("records = %+v, want newest first", got)
	}
}

type unavailableStore struct {
	*store.MemoryStore
}

func (s *unavailableStore) ListRecords(context.Context) ([]store.VideoRecord, error) {
	return nil, store.ErrUnavailable
}

func TestListFallsBackToSampleData(t *testing.T) {
	srv := newTestServer(&unavailableStore{store.NewMemoryStore()}, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with sample data", w.Code)
	}
	var got []store.VideoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(store.SampleRecords()) {
		t.Errorf("got %d sample records", len(got))
	}
}

func TestGetVideo(t *testing.T) {
	records := store.NewMemoryStore()
	_ = records.PutRecord(context.Background(), store.VideoRecord{
		ID:     "mj-1",
		Status: store.StatusCompleted,
		URL:    "https://videos/mj-1.mp4",
	})
	srv := newTestServer(records, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodGet, "/api/videos/mj-1", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var rec store.VideoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.URL != "https://videos/mj-1.mp4" {
		t.Errorf("url = %q", rec.URL)
	}
}

func TestGetVideoNotFound(t *testing.T) {
	srv := newTestServer(store.NewMemoryStore(), &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodGet, "/api/videos/nope", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteVideoIdempotent(t *testing.T) {
	records := store.NewMemoryStore()
	_ = records.PutRecord(context.Background(), store.VideoRecord{ID: "mj-1"})
	srv := newTestServer(records, &fakeEnqueuer{})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/videos/mj-1", nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("delete %d: status = %d, want 204", i, w.Code)
		}
	}

	if _, err := records.GetRecord(context.Background(), "mj-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("record still present after delete: %v", err)
	}
}
