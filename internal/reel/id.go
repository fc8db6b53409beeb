package reel

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// NewID derives a video identifier from the subject name plus the
// current time in milliseconds, so concurrent requests for the same
// subject get distinct ids.
func NewID(subject string, now time.Time) string {
	return fmt.Sprintf("%s-%d", slug(subject), now.UnixMilli())
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "video"
	}
	return s
}
