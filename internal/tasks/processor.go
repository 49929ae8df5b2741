package tasks

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"reviewhub/internal/events"
	"reviewhub/internal/models"
)

type StatsRebuilder interface {
	Rebuild(ctx context.Context) (models.RatingStats, error)
}

type Exporter interface {
	Export(ctx context.Context) (string, error)
}

// Processor dispatches stream events to the worker's jobs.
type Processor struct {
	stats    StatsRebuilder
	exporter Exporter
	logger   zerolog.Logger
}

// NewProcessor accepts a nil exporter; export events are then skipped.
func NewProcessor(stats StatsRebuilder, exporter Exporter, logger zerolog.Logger) *Processor {
	return &Processor{
		stats:    stats,
		exporter: exporter,
		logger:   logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	event, err := events.Decode(msg.Values)
	if err != nil {
		// Undecodable entries would be redelivered forever; ack and drop.
		p.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("malformed event dropped")
		return nil
	}

	switch event.Type {
	case events.TypeReviewCreated, events.TypeStatsRebuild:
		return p.handleStats(ctx, event)
	case events.TypeReviewsExport:
		return p.handleExport(ctx)
	default:
		p.logger.Warn().Str("type", string(event.Type)).Msg("unknown event type")
		return nil
	}
}

func (p *Processor) handleStats(ctx context.Context, event events.Event) error {
	stats, err := p.stats.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild stats: %w", err)
	}
	p.logger.Info().
		Str("trigger", string(event.Type)).
		Str("review_id", event.ReviewID).
		Int("count", stats.Count).
		Float64("average", stats.Average).
		Msg("review stats rebuilt")
	return nil
}

func (p *Processor) handleExport(ctx context.Context) error {
	if p.exporter == nil {
		p.logger.Warn().Msg("export requested but object storage is not configured")
		return nil
	}
	if _, err := p.exporter.Export(ctx); err != nil {
		return fmt.Errorf("export reviews: %w", err)
	}
	return nil
}
