package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shresth17/SahayAI/internal/config"
	"github.com/Shresth17/SahayAI/internal/ids"
	"github.com/Shresth17/SahayAI/internal/models"
	"github.com/Shresth17/SahayAI/internal/repository"
)

var (
	ErrGrievanceNotFound  = errors.New("grievance not found")
	ErrNotOwner           = errors.New("grievance belongs to another user")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnsupportedContent = errors.New("unsupported attachment type")
)

var allowedAttachmentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// GrievanceStore is the persistence surface GrievanceService needs.
type GrievanceStore interface {
	Create(ctx context.Context, g models.Grievance) error
	GetByID(ctx context.Context, id string) (models.Grievance, error)
	ListByUser(ctx context.Context, userID string) ([]models.Grievance, error)
	List(ctx context.Context, filter repository.ListFilter, limit int, offset int) ([]models.Grievance, error)
	UpdateStatus(ctx context.Context, id string, status models.GrievanceStatus) error
}

// AttachmentStore abstracts the object storage used for attachments.
type AttachmentStore interface {
	Bucket() string
	PutAttachment(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignAttachment(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// TaskQueue hands grievances to the background analyzer.
type TaskQueue interface {
	EnqueueAnalysis(ctx context.Context, grievanceID string) error
}

// SpamDetector gives a quick verdict on a description before the full
// background analysis runs.
type SpamDetector interface {
	DetectSpam(ctx context.Context, description string) (bool, float64, error)
}

type GrievanceService struct {
	grievances GrievanceStore
	store      AttachmentStore
	queue      TaskQueue
	spam       SpamDetector
	cfg        *config.AppConfig
	log        zerolog.Logger
}

func NewGrievanceService(
	grievances GrievanceStore,
	store AttachmentStore,
	queue TaskQueue,
	spam SpamDetector,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *GrievanceService {
	return &GrievanceService{
		grievances: grievances,
		store:      store,
		queue:      queue,
		spam:       spam,
		cfg:        cfg,
		log:        log,
	}
}

type FileInput struct {
	UserID      string
	Title       string
	Description string
	Attachment  multipart.File
	Header      *multipart.FileHeader
}

// File stores a new grievance in the analyzing state and enqueues it for
// classification. A failed enqueue is not fatal: the cron rescan picks
// stuck grievances up again.
func (s *GrievanceService) File(ctx context.Context, input FileInput) (models.Grievance, error) {
	g := models.Grievance{
		ID:          ids.New(),
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Status:      models.GrievanceStatusAnalyzing,
	}

	// Quick spam check, best effort. The worker's full analysis still
	// decides the final status either way.
	if spam, confidence, err := s.spam.DetectSpam(ctx, input.Description); err != nil {
		s.log.Debug().Err(err).Msg("quick spam check unavailable")
	} else if spam {
		g.SpamFlag = true
		g.SpamConfidence = &confidence
	}

	if input.Attachment != nil && input.Header != nil {
		bucket, key, err := s.storeAttachment(ctx, g.ID, input.Attachment, input.Header)
		if err != nil {
			return models.Grievance{}, err
		}
		g.AttachmentBucket = bucket
		g.AttachmentKey = key
	}

	if err := s.grievances.Create(ctx, g); err != nil {
		return models.Grievance{}, err
	}

	if err := s.queue.EnqueueAnalysis(ctx, g.ID); err != nil {
		s.log.Warn().Err(err).Str("grievance_id", g.ID).Msg("enqueue analysis failed")
	}

	return g, nil
}

func (s *GrievanceService) storeAttachment(ctx context.Context, grievanceID string, file multipart.File, header *multipart.FileHeader) (string, string, error) {
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", "", fmt.Errorf("read attachment head: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedAttachmentTypes[contentType]
	if !ok {
		return "", "", ErrUnsupportedContent
	}

	if seeker, ok := file.(io.ReadSeeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return "", "", fmt.Errorf("rewind attachment: %w", err)
		}
	} else {
		return "", "", fmt.Errorf("attachment stream is not seekable")
	}

	key := path.Join("grievances", grievanceID, "attachment"+ext)
	if err := s.store.PutAttachment(ctx, key, file, header.Size, contentType); err != nil {
		return "", "", err
	}
	return s.store.Bucket(), key, nil
}

type GrievanceView struct {
	Grievance     models.Grievance
	AttachmentURL string
}

// Get returns a grievance visible to the requesting user: the owner or
// an admin.
func (s *GrievanceService) Get(ctx context.Context, id string, requesterID string, requesterRole models.UserRole) (GrievanceView, error) {
	g, err := s.grievances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGrievanceNotFound) {
			return GrievanceView{}, ErrGrievanceNotFound
		}
		return GrievanceView{}, err
	}

	if g.UserID != requesterID && requesterRole != models.UserRoleAdmin {
		return GrievanceView{}, ErrNotOwner
	}

	view := GrievanceView{Grievance: g}
	if g.AttachmentKey != "" {
		url, err := s.store.PresignAttachment(ctx, g.AttachmentKey, 15*time.Minute)
		if err != nil {
			s.log.Warn().Err(err).Str("grievance_id", g.ID).Msg("presign attachment failed")
		} else {
			view.AttachmentURL = url
		}
	}
	return view, nil
}

func (s *GrievanceService) ListOwn(ctx context.Context, userID string) ([]models.Grievance, error) {
	return s.grievances.ListByUser(ctx, userID)
}

func (s *GrievanceService) ListAll(ctx context.Context, filter repository.ListFilter, limit int, offset int) ([]models.Grievance, error) {
	return s.grievances.List(ctx, filter, limit, offset)
}

var triageTargets = map[models.GrievanceStatus]struct{}{
	models.GrievanceStatusInProgress: {},
	models.GrievanceStatusResolved:   {},
	models.GrievanceStatusRejected:   {},
}

// Triage moves a grievance to an admin-chosen state. Only forward states
// are allowed; analysis states are owned by the worker.
func (s *GrievanceService) Triage(ctx context.Context, id string, status models.GrievanceStatus) error {
	if _, ok := triageTargets[status]; !ok {
		return ErrInvalidTransition
	}

	if err := s.grievances.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrGrievanceNotFound) {
			return ErrGrievanceNotFound
		}
		return err
	}
	return nil
}
