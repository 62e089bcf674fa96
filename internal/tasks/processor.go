package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Shresth17/SahayAI/internal/analyzer"
	"github.com/Shresth17/SahayAI/internal/models"
	"github.com/Shresth17/SahayAI/internal/queue"
	"github.com/Shresth17/SahayAI/internal/repository"
)

// Attachments of rejected spam are kept this long before the sweep
// removes them.
const sweepRetention = 30 * 24 * time.Hour

const sweepBatchSize = 100

// TextAnalyzer is the analyzer surface the processor needs.
type TextAnalyzer interface {
	Analyze(ctx context.Context, description string) (analyzer.Analysis, error)
}

// GrievanceStore is the persistence surface the processor needs.
type GrievanceStore interface {
	GetByID(ctx context.Context, id string) (models.Grievance, error)
	ApplyAnalysis(ctx context.Context, id string, category string, categoryConfidence float64, spam bool, spamConfidence float64, status models.GrievanceStatus) error
	ListSweepCandidates(ctx context.Context, olderThan time.Duration, limit int) ([]models.Grievance, error)
	ClearAttachment(ctx context.Context, id string) error
}

// AttachmentRemover deletes stored attachment objects.
type AttachmentRemover interface {
	RemoveAttachment(ctx context.Context, key string) error
}

// Processor applies analyzer verdicts to queued grievances and runs the
// attachment sweep.
type Processor struct {
	logger      zerolog.Logger
	grievances  GrievanceStore
	analyzer    TextAnalyzer
	attachments AttachmentRemover
}

type TaskPayload struct {
	Type        string `json:"type"`
	GrievanceID string `json:"grievanceId"`
}

func NewProcessor(logger zerolog.Logger, grievances GrievanceStore, textAnalyzer TextAnalyzer, attachments AttachmentRemover) *Processor {
	return &Processor{
		logger:      logger,
		grievances:  grievances,
		analyzer:    textAnalyzer,
		attachments: attachments,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case queue.TaskAnalyze:
		return p.handleAnalyze(ctx, payload)
	case queue.TaskSweep:
		return p.handleSweep(ctx, payload)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleAnalyze(ctx context.Context, payload TaskPayload) error {
	g, err := p.grievances.GetByID(ctx, payload.GrievanceID)
	if err != nil {
		if errors.Is(err, repository.ErrGrievanceNotFound) {
			// Deleted between enqueue and processing; nothing to do.
			p.logger.Warn().Str("grievance_id", payload.GrievanceID).Msg("grievance gone, skipping")
			return nil
		}
		return err
	}

	if g.Status != models.GrievanceStatusAnalyzing {
		p.logger.Debug().
			Str("grievance_id", g.ID).
			Str("status", string(g.Status)).
			Msg("grievance already analyzed, skipping")
		return nil
	}

	result, err := p.analyzer.Analyze(ctx, g.Description)
	if err != nil {
		// Leave the grievance in analyzing; the scheduler re-enqueues it.
		return fmt.Errorf("analyze grievance %s: %w", g.ID, err)
	}

	status := models.GrievanceStatusSubmitted
	if result.IsSpam {
		status = models.GrievanceStatusRejected
	}

	if err := p.grievances.ApplyAnalysis(ctx, g.ID, result.Category, result.CategoryConfidence, result.IsSpam, result.SpamConfidence, status); err != nil {
		return fmt.Errorf("apply analysis %s: %w", g.ID, err)
	}

	p.logger.Info().
		Str("grievance_id", g.ID).
		Str("category", result.Category).
		Bool("spam", result.IsSpam).
		Str("status", string(status)).
		Msg("grievance analyzed")
	return nil
}

// handleSweep removes attachments of spam grievances that were rejected
// long enough ago. A failed removal leaves the row untouched so the next
// sweep retries it.
func (p *Processor) handleSweep(ctx context.Context, payload TaskPayload) error {
	candidates, err := p.grievances.ListSweepCandidates(ctx, sweepRetention, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("list sweep candidates: %w", err)
	}

	removed := 0
	for _, g := range candidates {
		if err := p.attachments.RemoveAttachment(ctx, g.AttachmentKey); err != nil {
			p.logger.Error().Err(err).Str("grievance_id", g.ID).Msg("remove attachment failed")
			continue
		}
		if err := p.grievances.ClearAttachment(ctx, g.ID); err != nil {
			p.logger.Error().Err(err).Str("grievance_id", g.ID).Msg("clear attachment failed")
			continue
		}
		removed++
	}

	p.logger.Info().
		Int("candidates", len(candidates)).
		Int("removed", removed).
		Msg("attachment sweep finished")
	return nil
}
