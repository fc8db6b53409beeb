package imagesearch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Searcher finds one image URL for a query. An empty result with a nil
// error means no usable image was found.
type Searcher interface {
	SearchImage(ctx context.Context, query string) (string, error)
}

// Sourcer turns key moments into a fixed-size set of image URLs.
// Failed or empty searches are backfilled with placeholder images so a
// video can always be assembled.
type Sourcer struct {
	searcher Searcher
	count    int
}

func NewSourcer(searcher Searcher, count int) *Sourcer {
	if count <= 0 {
		count = 5
	}
	return &Sourcer{searcher: searcher, count: count}
}

// SourceImages returns exactly the configured number of image URLs, one
// per moment, in moment order. It never fails; unusable slots get a
// placeholder URL instead.
func (s *Sourcer) SourceImages(ctx context.Context, subject, sport string, moments []string) []string {
	urls := make([]string, 0, s.count)

	for i := 0; i < s.count; i++ {
		moment := ""
		if i < len(moments) {
			moment = moments[i]
		}

		query := fmt.Sprintf("%s %s %s high quality", subject, sport, moment)
		if moment == "" {
			query = fmt.Sprintf("%s %s high quality", subject, sport)
		}

		imageURL := ""
		if moment != "" {
			var err error
			imageURL, err = s.searcher.SearchImage(ctx, query)
			if err != nil {
				slog.Warn("image search failed, using placeholder",
					"moment", moment, "error", err)
				imageURL = ""
			}
		}

		if imageURL == "" {
			imageURL = placeholderURL(query)
		}
		urls = append(urls, imageURL)
	}

	return urls
}

func placeholderURL(query string) string {
	return fmt.Sprintf("https://placehold.co/1080x604.jpg?text=%s", url.QueryEscape(query))
}
