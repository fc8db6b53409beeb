package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func plainFetcher() *Fetcher {
	return newFetcherWithClient(http.DefaultClient)
}

func TestDownloadWritesFile(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("image bytes"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "scratch", "image_0.jpg")
	if err := plainFetcher().Download(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("Download() error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("file content = %q, want %q", data, "image bytes")
	}
	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Errorf("User-Agent = %q, want a browser agent", gotUA)
	}
}

func TestDownloadNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "image.jpg")
	err := plainFetcher().Download(context.Background(), server.URL, dest)

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("Download() error = %v, want *DownloadError", err)
	}
	if dlErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", dlErr.Status)
	}
	if dlErr.URL != server.URL {
		t.Errorf("URL = %q, want %q", dlErr.URL, server.URL)
	}

	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("destination file exists after failed download")
	}
}

func TestWaitReadyImmediateSuccess(t *testing.T) {
	var probes int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&probes, 1)
		if r.Method != http.MethodHead {
			t.Errorf("probe method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := plainFetcher().WaitReady(context.Background(), server.URL, 10, time.Millisecond)
	if err != nil {
		t.Fatalf("WaitReady() error: %v", err)
	}
	if got := atomic.LoadInt32(&probes); got != 1 {
		t.Errorf("probes = %d, want 1", got)
	}
}

func TestWaitReadyEventualSuccess(t *testing.T) {
	var probes int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&probes, 1) < 4 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := plainFetcher().WaitReady(context.Background(), server.URL, 10, time.Millisecond)
	if err != nil {
		t.Fatalf("WaitReady() error: %v", err)
	}
	if got := atomic.LoadInt32(&probes); got != 4 {
		t.Errorf("probes = %d, want 4", got)
	}
}

func TestWaitReadyExhaustsBudget(t *testing.T) {
	var probes int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&probes, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := plainFetcher().WaitReady(context.Background(), server.URL, 10, time.Millisecond)
	if !errors.Is(err, ErrArtifactNotReady) {
		t.Fatalf("WaitReady() error = %v, want ErrArtifactNotReady", err)
	}
	if got := atomic.LoadInt32(&probes); got != 10 {
		t.Errorf("probes = %d, want exactly 10", got)
	}
}

func TestWaitReadyCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := plainFetcher().WaitReady(ctx, server.URL, 100, 50*time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WaitReady() error = %v, want context.Canceled", err)
	}
}

func TestDownloadLocalFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.wav")
	if err := os.WriteFile(src, []byte("audio bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "scratch", "audio.wav")
	f := NewFetcher()
	if err := f.Download(context.Background(), "file://"+src, dest); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "audio bytes" {
		t.Errorf("copied content = %q", got)
	}
}

func TestWaitReadyLocalFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ready.wav")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher()
	if err := f.WaitReady(context.Background(), "file://"+src, 3, time.Millisecond); err != nil {
		t.Errorf("WaitReady() error = %v", err)
	}

	missing := "file://" + filepath.Join(dir, "missing.wav")
	if err := f.WaitReady(context.Background(), missing, 3, time.Millisecond); !errors.Is(err, ErrArtifactNotReady) {
		t.Errorf("WaitReady() error = %v, want ErrArtifactNotReady", err)
	}
}
