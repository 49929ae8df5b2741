package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"reviewhub/internal/config"
	"reviewhub/internal/events"
)

type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Scheduler enqueues periodic stats rebuilds and review exports for the
// worker. It does no work itself.
type Scheduler struct {
	cron      *cron.Cron
	publisher Publisher
	cfg       config.JobsConfig
	log       zerolog.Logger
}

func NewScheduler(publisher Publisher, cfg config.JobsConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.publisher == nil || !s.cfg.Enabled {
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.StatsSchedule, s.enqueue(events.TypeStatsRebuild)); err != nil {
		return fmt.Errorf("schedule stats rebuild: %w", err)
	}
	if s.cfg.ExportSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.ExportSchedule, s.enqueue(events.TypeReviewsExport)); err != nil {
			return fmt.Errorf("schedule export: %w", err)
		}
	}

	s.cron.Start()
	s.log.Info().
		Str("stats", s.cfg.StatsSchedule).
		Str("export", s.cfg.ExportSchedule).
		Msg("scheduler started")
	return nil
}

// Stop waits up to five seconds for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueue(t events.Type) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, events.Event{Type: t}); err != nil {
			s.log.Error().Err(err).Str("type", string(t)).Msg("enqueue task failed")
		}
	}
}
