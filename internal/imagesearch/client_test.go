package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("test-api-key", Filters{})
	c.baseURL = serverURL
	// Plain client keeps failure tests from sitting in retry backoff.
	c.httpClient = http.DefaultClient
	return c
}

func serveResults(t *testing.T, results []imageResult, assert func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if assert != nil {
			assert(r)
		}
		if err := json.NewEncoder(w).Encode(searchResponse{ImagesResults: results}); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
}

func TestSearchImageSetsQueryParams(t *testing.T) {
	server := serveResults(t, []imageResult{
		{Original: "https://example.com/big.jpg", Width: 1600, Height: 900},
	}, func(r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("engine"); got != "google_images" {
			t.Errorf("engine = %q, want google_images", got)
		}
		if got := q.Get("q"); got != "Lionel Messi football high quality" {
			t.Errorf("q = %q", got)
		}
		if got := q.Get("api_key"); got != "test-api-key" {
			t.Errorf("api_key = %q", got)
		}
		if got := q.Get("safe"); got != "active" {
			t.Errorf("safe = %q, want active", got)
		}
	})
	defer server.Close()

	client := newTestClient(server.URL)

	url, err := client.SearchImage(context.Background(), "Lionel Messi football high quality")
	if err != nil {
		t.Fatalf("SearchImage() error = %v", err)
	}
	if url != "https://example.com/big.jpg" {
		t.Errorf("url = %q", url)
	}
}

func TestSearchImageFiltersSmallAndWideResults(t *testing.T) {
	server := serveResults(t, []imageResult{
		{Original: "https://example.com/small.jpg", Width: 400, Height: 300},
		{Original: "https://example.com/banner.jpg", Width: 3000, Height: 400},
		{Original: "https://example.com/good.jpg", Width: 1200, Height: 800},
	}, nil)
	defer server.Close()

	client := newTestClient(server.URL)

	url, err := client.SearchImage(context.Background(), "query")
	if err != nil {
		t.Fatalf("SearchImage() error = %v", err)
	}
	if url != "https://example.com/good.jpg" {
		t.Errorf("url = %q, want the only result passing filters", url)
	}
}

func TestSearchImageFallsBackToFirstResult(t *testing.T) {
	server := serveResults(t, []imageResult{
		{Original: "https://example.com/tiny1.jpg", Width: 100, Height: 100},
		{Original: "https://example.com/tiny2.jpg", Width: 100, Height: 100},
	}, nil)
	defer server.Close()

	client := newTestClient(server.URL)

	url, err := client.SearchImage(context.Background(), "query")
	if err != nil {
		t.Fatalf("SearchImage() error = %v", err)
	}
	if url != "https://example.com/tiny1.jpg" {
		t.Errorf("url = %q, want first result when nothing passes filters", url)
	}
}

func TestSearchImageEmptyResults(t *testing.T) {
	server := serveResults(t, nil, nil)
	defer server.Close()

	client := newTestClient(server.URL)

	url, err := client.SearchImage(context.Background(), "query")
	if err != nil {
		t.Fatalf("SearchImage() error = %v", err)
	}
	if url != "" {
		t.Errorf("url = %q, want empty for no results", url)
	}
}

func TestSearchImageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.SearchImage(context.Background(), "query"); err == nil {
		t.Fatal("SearchImage() expected error on non-200 response")
	}
}

func TestSearchImagePicksWithinFirstFiltered(t *testing.T) {
	var results []imageResult
	for i := 0; i < 10; i++ {
		results = append(results, imageResult{
			Original: fmt.Sprintf("https://example.com/%d.jpg", i),
			Width:    1200,
			Height:   800,
		})
	}
	server := serveResults(t, results, nil)
	defer server.Close()

	client := newTestClient(server.URL)

	for i := 0; i < 20; i++ {
		url, err := client.SearchImage(context.Background(), "query")
		if err != nil {
			t.Fatalf("SearchImage() error = %v", err)
		}
		switch url {
		case "https://example.com/0.jpg",
			"https://example.com/1.jpg",
			"https://example.com/2.jpg",
			"https://example.com/3.jpg",
			"https://example.com/4.jpg":
		default:
			t.Fatalf("url = %q, want one of the first %d filtered results", url, pickPool)
		}
	}
}
