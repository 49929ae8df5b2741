package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/events"
	"reviewhub/internal/models"
)

type mockReviewStore struct {
	mock.Mock
}

func (m *mockReviewStore) Create(ctx context.Context, review models.Review) (models.Review, error) {
	args := m.Called(ctx, review)
	if fn, ok := args.Get(0).(func(context.Context, models.Review) models.Review); ok {
		return fn(ctx, review), args.Error(1)
	}
	return args.Get(0).(models.Review), args.Error(1)
}

func (m *mockReviewStore) ListAll(ctx context.Context) ([]models.ReviewSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewSummary), args.Error(1)
}

func (m *mockReviewStore) ListByUser(ctx context.Context, userID string) ([]models.ReviewSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewSummary), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func stampCreated(review models.Review) models.Review {
	review.CreatedAt = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	return review
}

func TestCreateReview_Success(t *testing.T) {
	store := new(mockReviewStore)
	stats := new(mockInvalidator)
	pub := new(mockPublisher)
	svc := NewReviewService(store, stats, pub, zerolog.Nop())

	store.On("Create", mock.Anything, mock.MatchedBy(func(r models.Review) bool {
		return r.ID != "" && r.UserID == "user-ann" && r.Title == "Great" && r.Content == "Nice place" && r.Rating == 5
	})).Return(func(_ context.Context, r models.Review) models.Review {
		return stampCreated(r)
	}, nil)
	stats.On("Invalidate", mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.TypeReviewCreated && e.UserID == "user-ann" && e.Rating == 5
	})).Return(nil)

	review, err := svc.Create(context.Background(), CreateReviewInput{
		UserID:  "user-ann",
		Title:   " Great ",
		Content: "Nice place",
		Rating:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, "user-ann", review.UserID)
	assert.False(t, review.CreatedAt.IsZero())

	store.AssertExpectations(t)
	stats.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCreateReview_SideEffectFailuresAreIgnored(t *testing.T) {
	store := new(mockReviewStore)
	stats := new(mockInvalidator)
	pub := new(mockPublisher)
	svc := NewReviewService(store, stats, pub, zerolog.Nop())

	store.On("Create", mock.Anything, mock.Anything).Return(models.Review{ID: "r1", UserID: "u1", Rating: 3}, nil)
	stats.On("Invalidate", mock.Anything).Return(errors.New("redis down"))
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	_, err := svc.Create(context.Background(), CreateReviewInput{UserID: "u1", Title: "t", Content: "c", Rating: 3})
	assert.NoError(t, err)
}

func TestCreateReview_Validation(t *testing.T) {
	cases := map[string]CreateReviewInput{
		"no author":      {Title: "t", Content: "c", Rating: 3},
		"blank title":    {UserID: "u1", Title: "  ", Content: "c", Rating: 3},
		"blank content":  {UserID: "u1", Title: "t", Content: "", Rating: 3},
		"rating too low": {UserID: "u1", Title: "t", Content: "c", Rating: 0},
		"rating too big": {UserID: "u1", Title: "t", Content: "c", Rating: 6},
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			store := new(mockReviewStore)
			svc := NewReviewService(store, nil, nil, zerolog.Nop())

			_, err := svc.Create(context.Background(), input)
			assert.ErrorIs(t, err, ErrInvalidInput)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateReview_StoreFailure(t *testing.T) {
	store := new(mockReviewStore)
	pub := new(mockPublisher)
	svc := NewReviewService(store, nil, pub, zerolog.Nop())

	store.On("Create", mock.Anything, mock.Anything).Return(models.Review{}, errors.New("fk violation"))

	_, err := svc.Create(context.Background(), CreateReviewInput{UserID: "u1", Title: "t", Content: "c", Rating: 3})
	require.Error(t, err)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestListReviews(t *testing.T) {
	store := new(mockReviewStore)
	svc := NewReviewService(store, nil, nil, zerolog.Nop())

	want := []models.ReviewSummary{
		{Review: models.Review{ID: "r2", Rating: 1}, AuthorFirstName: "Bob"},
		{Review: models.Review{ID: "r1", Rating: 5}, AuthorFirstName: "Ann"},
	}
	store.On("ListAll", mock.Anything).Return(want, nil)
	store.On("ListByUser", mock.Anything, "u1").Return(want[1:], nil)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	mine, err := svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestListReviews_Error(t *testing.T) {
	store := new(mockReviewStore)
	svc := NewReviewService(store, nil, nil, zerolog.Nop())

	store.On("ListAll", mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.List(context.Background())
	assert.Error(t, err)
}
