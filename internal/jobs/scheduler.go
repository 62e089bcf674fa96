package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Shresth17/SahayAI/internal/config"
	"github.com/Shresth17/SahayAI/internal/models"
)

// StuckLister finds grievances that never left the analyzing state.
type StuckLister interface {
	ListStuck(ctx context.Context, olderThan time.Duration, limit int) ([]models.Grievance, error)
}

// Enqueuer re-publishes work for the analysis worker.
type Enqueuer interface {
	EnqueueAnalysis(ctx context.Context, grievanceID string) error
	EnqueueSweep(ctx context.Context) error
}

// Scheduler periodically re-enqueues stuck grievances and triggers the
// daily attachment sweep.
type Scheduler struct {
	cron       *cron.Cron
	grievances StuckLister
	queue      Enqueuer
	cfg        config.JobsConfig
	log        zerolog.Logger
}

func NewScheduler(grievances StuckLister, queue Enqueuer, cfg config.JobsConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		grievances: grievances,
		queue:      queue,
		cfg:        cfg,
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RescanSpec, s.rescanStuck); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.SweepSpec, s.enqueueSweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for in-flight jobs, bounded by a
// short timeout.
func (s *Scheduler) Stop() {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) rescanStuck() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stuck, err := s.grievances.ListStuck(ctx, s.cfg.StuckCutoff, 100)
	if err != nil {
		s.log.Error().Err(err).Msg("list stuck grievances failed")
		return
	}

	for _, g := range stuck {
		if err := s.queue.EnqueueAnalysis(ctx, g.ID); err != nil {
			s.log.Error().Err(err).Str("grievance_id", g.ID).Msg("re-enqueue failed")
			continue
		}
		s.log.Info().Str("grievance_id", g.ID).Msg("stuck grievance re-enqueued")
	}
}

func (s *Scheduler) enqueueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.queue.EnqueueSweep(ctx); err != nil {
		s.log.Error().Err(err).Msg("enqueue sweep failed")
	}
}
