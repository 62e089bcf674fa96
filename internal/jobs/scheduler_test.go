package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Shresth17/SahayAI/internal/config"
	"github.com/Shresth17/SahayAI/internal/models"
)

type stubLister struct {
	stuck []models.Grievance
}

func (s *stubLister) ListStuck(ctx context.Context, olderThan time.Duration, limit int) ([]models.Grievance, error) {
	return s.stuck, nil
}

type stubEnqueuer struct {
	analyses []string
	sweeps   int
}

func (e *stubEnqueuer) EnqueueAnalysis(ctx context.Context, grievanceID string) error {
	e.analyses = append(e.analyses, grievanceID)
	return nil
}

func (e *stubEnqueuer) EnqueueSweep(ctx context.Context) error {
	e.sweeps++
	return nil
}

func testJobsConfig() config.JobsConfig {
	return config.JobsConfig{
		StuckCutoff: 15 * time.Minute,
		RescanSpec:  "0 */10 * * * *",
		SweepSpec:   "0 0 0 * * *",
	}
}

func TestRescanStuckReenqueues(t *testing.T) {
	lister := &stubLister{stuck: []models.Grievance{{ID: "g1"}, {ID: "g2"}}}
	enq := &stubEnqueuer{}

	s := NewScheduler(lister, enq, testJobsConfig(), zerolog.Nop())
	s.rescanStuck()

	assert.Equal(t, []string{"g1", "g2"}, enq.analyses)
}

func TestRescanStuckNothingToDo(t *testing.T) {
	enq := &stubEnqueuer{}
	s := NewScheduler(&stubLister{}, enq, testJobsConfig(), zerolog.Nop())
	s.rescanStuck()

	assert.Empty(t, enq.analyses)
}

func TestEnqueueSweep(t *testing.T) {
	enq := &stubEnqueuer{}
	s := NewScheduler(&stubLister{}, enq, testJobsConfig(), zerolog.Nop())
	s.enqueueSweep()

	assert.Equal(t, 1, enq.sweeps)
}

func TestSchedulerStartStop(t *testing.T) {
	enq := &stubEnqueuer{}
	s := NewScheduler(&stubLister{}, enq, testJobsConfig(), zerolog.Nop())

	assert.NoError(t, s.Start())
	s.Stop()
}
