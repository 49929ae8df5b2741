package models

import (
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Rating    int
	CreatedAt time.Time
}

// ReviewSummary is a review joined with its author's name.
type ReviewSummary struct {
	Review
	AuthorFirstName string
	AuthorLastName  string
}

func (r ReviewSummary) Author() string {
	return strings.TrimSpace(r.AuthorFirstName + " " + r.AuthorLastName)
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

type RatingStats struct {
	Count        int         `json:"count"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

// NewRatingStats builds stats from per-rating counts. Ratings outside the
// valid range are ignored.
func NewRatingStats(counts map[int]int) RatingStats {
	stats := RatingStats{Distribution: make(map[int]int, MaxRating)}
	sum := 0
	for rating := MinRating; rating <= MaxRating; rating++ {
		n := counts[rating]
		stats.Distribution[rating] = n
		stats.Count += n
		sum += n * rating
	}
	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
	}
	return stats
}
