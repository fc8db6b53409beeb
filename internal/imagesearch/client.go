package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"sportsreels/pkg/httputil"
)

const (
	defaultBaseURL = "https://serpapi.com/search"
	defaultTimeout = 15 * time.Second
	// Results beyond the first few rarely match the moment being
	// illustrated; pick randomly among them for variety.
	pickPool = 5
)

// Filters constrain which search results are usable as video frames.
type Filters struct {
	MinWidth  int
	MinHeight int
	MaxAspect float64
}

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	apiKey     string
	httpClient doer
	baseURL    string
	filters    Filters
}

type searchResponse struct {
	ImagesResults []imageResult `json:"images_results"`
}

type imageResult struct {
	Original string `json:"original"`
	Width    int    `json:"original_width"`
	Height   int    `json:"original_height"`
}

func NewClient(apiKey string, filters Filters) *Client {
	if filters.MinWidth == 0 {
		filters.MinWidth = 800
	}
	if filters.MinHeight == 0 {
		filters.MinHeight = 600
	}
	if filters.MaxAspect == 0 {
		filters.MaxAspect = 2.0
	}

	base := &http.Client{Timeout: defaultTimeout}
	return &Client{
		apiKey:     apiKey,
		httpClient: httputil.NewRetryClient(base, httputil.DefaultRetryConfig()),
		baseURL:    defaultBaseURL,
		filters:    filters,
	}
}

// SearchImage returns one image URL for the query, or "" when nothing
// usable was found.
func (c *Client) SearchImage(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("engine", "google_images")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("safe", "active")
	params.Set("ijn", "0")
	params.Set("tbm", "isch")
	params.Set("tbs", "isz:l")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("search api error: %s, body: %s", resp.Status, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return c.pick(searchResp.ImagesResults), nil
}

func (c *Client) pick(results []imageResult) string {
	if len(results) == 0 {
		return ""
	}

	var filtered []imageResult
	for _, r := range results {
		if r.Width < c.filters.MinWidth || r.Height < c.filters.MinHeight {
			continue
		}
		if r.Height > 0 && float64(r.Width)/float64(r.Height) > c.filters.MaxAspect {
			continue
		}
		filtered = append(filtered, r)
	}

	if len(filtered) == 0 {
		return results[0].Original
	}

	pool := len(filtered)
	if pool > pickPool {
		pool = pickPool
	}
	return filtered[rand.Intn(pool)].Original
}
