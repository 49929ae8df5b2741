package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"reviewhub/internal/models"
)

type ReviewLister interface {
	ListAll(ctx context.Context) ([]models.ReviewSummary, error)
}

type ObjectWriter interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

type ExportService struct {
	reviews ReviewLister
	store   ObjectWriter
	log     zerolog.Logger
	now     func() time.Time
}

func NewExportService(reviews ReviewLister, store ObjectWriter, log zerolog.Logger) *ExportService {
	return &ExportService{
		reviews: reviews,
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

type exportRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// Export writes a JSON snapshot of every review and returns its object key.
func (s *ExportService) Export(ctx context.Context) (string, error) {
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("list reviews: %w", err)
	}

	records := make([]exportRecord, 0, len(reviews))
	for _, r := range reviews {
		records = append(records, exportRecord{
			ID:        r.ID,
			UserID:    r.UserID,
			Author:    r.Author(),
			Title:     r.Title,
			Content:   r.Content,
			Rating:    r.Rating,
			CreatedAt: r.CreatedAt,
		})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/reviews-%s.json", s.now().UTC().Format("20060102T150405Z"))
	if err := s.store.Put(ctx, key, payload, "application/json"); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	s.log.Info().Str("key", key).Int("reviews", len(records)).Msg("review export written")
	return key, nil
}
