package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"reviewhub/internal/models"
)

const statsCacheKey = "reviews:stats"

type RatingCounter interface {
	RatingCounts(ctx context.Context) (map[int]int, error)
}

// StatsService keeps aggregate rating stats in Redis, computing them from
// the store on a cache miss.
type StatsService struct {
	reviews RatingCounter
	cache   *redis.Client
	ttl     time.Duration
	log     zerolog.Logger
}

func NewStatsService(reviews RatingCounter, cache *redis.Client, ttl time.Duration, log zerolog.Logger) *StatsService {
	return &StatsService{
		reviews: reviews,
		cache:   cache,
		ttl:     ttl,
		log:     log,
	}
}

func (s *StatsService) Get(ctx context.Context) (models.RatingStats, error) {
	raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	switch {
	case err == nil:
		var stats models.RatingStats
		if err := json.Unmarshal(raw, &stats); err == nil {
			return stats, nil
		}
		s.log.Warn().Msg("cached review stats unreadable, rebuilding")
	case !errors.Is(err, redis.Nil):
		s.log.Warn().Err(err).Msg("review stats cache read failed")
	}

	return s.Rebuild(ctx)
}

// Rebuild recomputes the stats and refreshes the cache. A cache write
// failure is logged, not returned.
func (s *StatsService) Rebuild(ctx context.Context) (models.RatingStats, error) {
	counts, err := s.reviews.RatingCounts(ctx)
	if err != nil {
		return models.RatingStats{}, fmt.Errorf("count ratings: %w", err)
	}
	stats := models.NewRatingStats(counts)

	payload, err := json.Marshal(stats)
	if err != nil {
		return models.RatingStats{}, fmt.Errorf("encode stats: %w", err)
	}
	if err := s.cache.Set(ctx, statsCacheKey, payload, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Msg("review stats cache write failed")
	}

	return stats, nil
}

func (s *StatsService) Invalidate(ctx context.Context) error {
	return s.cache.Del(ctx, statsCacheKey).Err()
}
