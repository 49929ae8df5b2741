package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"reviewhub/internal/events"
	"reviewhub/internal/ids"
	"reviewhub/internal/models"
)

type ReviewStore interface {
	Create(ctx context.Context, review models.Review) (models.Review, error)
	ListAll(ctx context.Context) ([]models.ReviewSummary, error)
	ListByUser(ctx context.Context, userID string) ([]models.ReviewSummary, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

type ReviewService struct {
	reviews ReviewStore
	stats   StatsInvalidator
	events  EventPublisher
	log     zerolog.Logger
}

func NewReviewService(reviews ReviewStore, stats StatsInvalidator, publisher EventPublisher, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		stats:   stats,
		events:  publisher,
		log:     log,
	}
}

// CreateReviewInput.UserID must come from a verified token, never from the
// request body.
type CreateReviewInput struct {
	UserID  string `validate:"required" label:"author"`
	Title   string `validate:"required"`
	Content string `validate:"required"`
	Rating  int    `validate:"gte=1,lte=5"`
}

func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (models.Review, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	if err := checkInput(input); err != nil {
		return models.Review{}, err
	}

	review := models.Review{
		ID:      ids.New(),
		UserID:  input.UserID,
		Title:   input.Title,
		Content: input.Content,
		Rating:  input.Rating,
	}

	created, err := s.reviews.Create(ctx, review)
	if err != nil {
		return models.Review{}, fmt.Errorf("create review: %w", err)
	}

	s.afterCreate(ctx, created)
	return created, nil
}

// afterCreate runs best-effort side effects; the review is already stored.
func (s *ReviewService) afterCreate(ctx context.Context, review models.Review) {
	if s.stats != nil {
		if err := s.stats.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("invalidate review stats failed")
		}
	}

	if s.events != nil {
		err := s.events.Publish(ctx, events.Event{
			Type:     events.TypeReviewCreated,
			ReviewID: review.ID,
			UserID:   review.UserID,
			Rating:   review.Rating,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("review_id", review.ID).Msg("publish review event failed")
		}
	}
}

func (s *ReviewService) List(ctx context.Context) ([]models.ReviewSummary, error) {
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]models.ReviewSummary, error) {
	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return reviews, nil
}
