package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type Type string

const (
	TypeReviewCreated Type = "review.created"
	TypeStatsRebuild  Type = "stats.rebuild"
	TypeReviewsExport Type = "reviews.export"
)

var ErrMissingType = errors.New("event type missing")

// Event is a single entry on the reviews stream. Only Type is required.
type Event struct {
	Type     Type
	ReviewID string
	UserID   string
	Rating   int
}

func (e Event) Values() map[string]any {
	values := map[string]any{"type": string(e.Type)}
	if e.ReviewID != "" {
		values["reviewId"] = e.ReviewID
	}
	if e.UserID != "" {
		values["userId"] = e.UserID
	}
	if e.Rating != 0 {
		values["rating"] = strconv.Itoa(e.Rating)
	}
	return values
}

// Decode parses stream entry values. Redis returns every field as a string.
func Decode(values map[string]any) (Event, error) {
	var e Event
	if t, ok := values["type"].(string); ok {
		e.Type = Type(t)
	}
	if e.Type == "" {
		return Event{}, ErrMissingType
	}
	e.ReviewID, _ = values["reviewId"].(string)
	e.UserID, _ = values["userId"].(string)
	if raw, ok := values["rating"].(string); ok && raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			return Event{}, fmt.Errorf("decode rating %q: %w", raw, err)
		}
		e.Rating = rating
	}
	return e, nil
}

type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		maxLen: 10000,
	}
}

func (p *Publisher) Publish(ctx context.Context, e Event) error {
	if p == nil || p.client == nil {
		return nil
	}
	if e.Type == "" {
		return ErrMissingType
	}
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: e.Values(),
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
