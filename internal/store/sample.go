package store

import "time"

// SampleRecords is the canned dataset served on the list path when the
// store is unreachable, so the feed stays usable while the backend is down.
func SampleRecords() []VideoRecord {
	return []VideoRecord{
		{
			ID:          "lionel-messi-1234567892",
			Title:       "Lionel Messi - Soccer History",
			Description: "Lionel Messi, often considered the greatest soccer player of all time, has mesmerized fans with his incredible dribbling skills and goal-scoring ability...",
			URL:         "https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
			Status:      StatusCompleted,
			CreatedAt:   time.Date(2025, 4, 3, 9, 15, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2025, 4, 3, 9, 18, 0, 0, time.UTC),
			Likes:       1876,
			Shares:      642,
		},
		{
			ID:          "serena-williams-1234567891",
			Title:       "Serena Williams - Tennis History",
			Description: "Serena Williams, one of the greatest tennis players of all time, dominated the sport with her powerful serve and athletic prowess...",
			URL:         "https://storage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
			Status:      StatusCompleted,
			CreatedAt:   time.Date(2025, 4, 2, 14, 30, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2025, 4, 2, 14, 33, 0, 0, time.UTC),
			Likes:       982,
			Shares:      315,
		},
		{
			ID:          "michael-jordan-1234567890",
			Title:       "Michael Jordan - Basketball History",
			Description: "Michael Jordan, widely regarded as the greatest basketball player of all time, transformed the NBA with his extraordinary skills and competitive drive...",
			URL:         "https://storage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
			Status:      StatusCompleted,
			CreatedAt:   time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2025, 4, 1, 12, 4, 0, 0, time.UTC),
			Likes:       1245,
			Shares:      423,
		},
	}
}
