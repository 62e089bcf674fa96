package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shresth17/SahayAI/internal/analyzer"
	"github.com/Shresth17/SahayAI/internal/models"
	"github.com/Shresth17/SahayAI/internal/repository"
)

type stubStore struct {
	grievances      map[string]models.Grievance
	applied         map[string]models.GrievanceStatus
	sweepCandidates []models.Grievance
	cleared         []string
}

func newStubStore() *stubStore {
	return &stubStore{
		grievances: make(map[string]models.Grievance),
		applied:    make(map[string]models.GrievanceStatus),
	}
}

func (s *stubStore) GetByID(ctx context.Context, id string) (models.Grievance, error) {
	g, ok := s.grievances[id]
	if !ok {
		return models.Grievance{}, repository.ErrGrievanceNotFound
	}
	return g, nil
}

func (s *stubStore) ApplyAnalysis(ctx context.Context, id string, category string, categoryConfidence float64, spam bool, spamConfidence float64, status models.GrievanceStatus) error {
	g, ok := s.grievances[id]
	if !ok {
		return repository.ErrGrievanceNotFound
	}
	g.Category = category
	g.SpamFlag = spam
	g.Status = status
	s.grievances[id] = g
	s.applied[id] = status
	return nil
}

func (s *stubStore) ListSweepCandidates(ctx context.Context, olderThan time.Duration, limit int) ([]models.Grievance, error) {
	return s.sweepCandidates, nil
}

func (s *stubStore) ClearAttachment(ctx context.Context, id string) error {
	if _, ok := s.grievances[id]; !ok {
		return repository.ErrGrievanceNotFound
	}
	s.cleared = append(s.cleared, id)
	return nil
}

type stubRemover struct {
	removed []string
	err     error
}

func (r *stubRemover) RemoveAttachment(ctx context.Context, key string) error {
	if r.err != nil {
		return r.err
	}
	r.removed = append(r.removed, key)
	return nil
}

type stubAnalyzer struct {
	result analyzer.Analysis
	err    error
	calls  int
}

func (a *stubAnalyzer) Analyze(ctx context.Context, description string) (analyzer.Analysis, error) {
	a.calls++
	return a.result, a.err
}

func analyzeMessage(id string) redis.XMessage {
	return redis.XMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"type":        "analyze",
			"grievanceId": id,
		},
	}
}

func TestHandleAnalyzeAppliesCategory(t *testing.T) {
	store := newStubStore()
	store.grievances["g1"] = models.Grievance{
		ID:          "g1",
		Description: "no water supply",
		Status:      models.GrievanceStatusAnalyzing,
	}
	an := &stubAnalyzer{result: analyzer.Analysis{
		Category:           "Water Supply",
		CategoryConfidence: 0.9,
		IsSpam:             false,
	}}

	p := NewProcessor(zerolog.Nop(), store, an, &stubRemover{})
	require.NoError(t, p.Handle(context.Background(), analyzeMessage("g1")))

	assert.Equal(t, models.GrievanceStatusSubmitted, store.applied["g1"])
	assert.Equal(t, "Water Supply", store.grievances["g1"].Category)
}

func TestHandleAnalyzeSpamRejects(t *testing.T) {
	store := newStubStore()
	store.grievances["g1"] = models.Grievance{
		ID:          "g1",
		Description: "win free money",
		Status:      models.GrievanceStatusAnalyzing,
	}
	an := &stubAnalyzer{result: analyzer.Analysis{IsSpam: true, SpamConfidence: 0.97}}

	p := NewProcessor(zerolog.Nop(), store, an, &stubRemover{})
	require.NoError(t, p.Handle(context.Background(), analyzeMessage("g1")))

	assert.Equal(t, models.GrievanceStatusRejected, store.applied["g1"])
	assert.True(t, store.grievances["g1"].SpamFlag)
}

func TestHandleAnalyzeSkipsAlreadyAnalyzed(t *testing.T) {
	store := newStubStore()
	store.grievances["g1"] = models.Grievance{ID: "g1", Status: models.GrievanceStatusResolved}
	an := &stubAnalyzer{}

	p := NewProcessor(zerolog.Nop(), store, an, &stubRemover{})
	require.NoError(t, p.Handle(context.Background(), analyzeMessage("g1")))

	assert.Zero(t, an.calls)
	assert.Empty(t, store.applied)
}

func TestHandleAnalyzeMissingGrievanceIsNotAnError(t *testing.T) {
	p := NewProcessor(zerolog.Nop(), newStubStore(), &stubAnalyzer{}, &stubRemover{})
	assert.NoError(t, p.Handle(context.Background(), analyzeMessage("gone")))
}

func TestHandleAnalyzeAnalyzerFailureLeavesStateForRetry(t *testing.T) {
	store := newStubStore()
	store.grievances["g1"] = models.Grievance{ID: "g1", Status: models.GrievanceStatusAnalyzing}
	an := &stubAnalyzer{err: errors.New("analyzer down")}

	p := NewProcessor(zerolog.Nop(), store, an, &stubRemover{})
	err := p.Handle(context.Background(), analyzeMessage("g1"))

	assert.Error(t, err)
	assert.Empty(t, store.applied)
	assert.Equal(t, models.GrievanceStatusAnalyzing, store.grievances["g1"].Status)
}

func TestHandleUnknownTypeIgnored(t *testing.T) {
	p := NewProcessor(zerolog.Nop(), newStubStore(), &stubAnalyzer{}, &stubRemover{})
	assert.NoError(t, p.Handle(context.Background(), redis.XMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"type": "mystery"},
	}))
}

func sweepMessage() redis.XMessage {
	return redis.XMessage{
		ID:     "2-0",
		Values: map[string]interface{}{"type": "sweep"},
	}
}

func TestHandleSweepRemovesRejectedSpamAttachments(t *testing.T) {
	store := newStubStore()
	g := models.Grievance{
		ID:            "g1",
		Status:        models.GrievanceStatusRejected,
		SpamFlag:      true,
		AttachmentKey: "grievances/g1/attachment.jpg",
	}
	store.grievances["g1"] = g
	store.sweepCandidates = []models.Grievance{g}
	remover := &stubRemover{}

	p := NewProcessor(zerolog.Nop(), store, &stubAnalyzer{}, remover)
	require.NoError(t, p.Handle(context.Background(), sweepMessage()))

	assert.Equal(t, []string{"grievances/g1/attachment.jpg"}, remover.removed)
	assert.Equal(t, []string{"g1"}, store.cleared)
}

func TestHandleSweepRemovalFailureKeepsReference(t *testing.T) {
	store := newStubStore()
	g := models.Grievance{
		ID:            "g1",
		Status:        models.GrievanceStatusRejected,
		SpamFlag:      true,
		AttachmentKey: "grievances/g1/attachment.jpg",
	}
	store.grievances["g1"] = g
	store.sweepCandidates = []models.Grievance{g}
	remover := &stubRemover{err: errors.New("storage down")}

	p := NewProcessor(zerolog.Nop(), store, &stubAnalyzer{}, remover)
	// The next sweep retries; a single bad object is not a task failure.
	require.NoError(t, p.Handle(context.Background(), sweepMessage()))

	assert.Empty(t, store.cleared)
}

func TestHandleSweepNothingToDo(t *testing.T) {
	store := newStubStore()
	remover := &stubRemover{}

	p := NewProcessor(zerolog.Nop(), store, &stubAnalyzer{}, remover)
	require.NoError(t, p.Handle(context.Background(), sweepMessage()))

	assert.Empty(t, remover.removed)
	assert.Empty(t, store.cleared)
}
