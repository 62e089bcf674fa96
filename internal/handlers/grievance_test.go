package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shresth17/SahayAI/internal/models"
	"github.com/Shresth17/SahayAI/internal/repository"
	"github.com/Shresth17/SahayAI/internal/security"
)

type memGrievanceStore struct {
	byID map[string]models.Grievance
}

func newMemGrievanceStore() *memGrievanceStore {
	return &memGrievanceStore{byID: make(map[string]models.Grievance)}
}

func (s *memGrievanceStore) Create(ctx context.Context, g models.Grievance) error {
	s.byID[g.ID] = g
	return nil
}

func (s *memGrievanceStore) GetByID(ctx context.Context, id string) (models.Grievance, error) {
	g, ok := s.byID[id]
	if !ok {
		return models.Grievance{}, repository.ErrGrievanceNotFound
	}
	return g, nil
}

func (s *memGrievanceStore) ListByUser(ctx context.Context, userID string) ([]models.Grievance, error) {
	var out []models.Grievance
	for _, g := range s.byID {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memGrievanceStore) List(ctx context.Context, filter repository.ListFilter, limit int, offset int) ([]models.Grievance, error) {
	var out []models.Grievance
	for _, g := range s.byID {
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.Category != "" && g.Category != filter.Category {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *memGrievanceStore) UpdateStatus(ctx context.Context, id string, status models.GrievanceStatus) error {
	g, ok := s.byID[id]
	if !ok {
		return repository.ErrGrievanceNotFound
	}
	g.Status = status
	s.byID[id] = g
	return nil
}

type memAttachmentStore struct{}

func (memAttachmentStore) Bucket() string { return "test-bucket" }

func (memAttachmentStore) PutAttachment(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return nil
}

func (memAttachmentStore) PresignAttachment(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

type memSpamDetector struct{}

func (memSpamDetector) DetectSpam(ctx context.Context, description string) (bool, float64, error) {
	return false, 0, nil
}

type memTaskQueue struct {
	enqueued []string
}

func (q *memTaskQueue) EnqueueAnalysis(ctx context.Context, grievanceID string) error {
	q.enqueued = append(q.enqueued, grievanceID)
	return nil
}

func (e *testEnv) citizenToken(t *testing.T) string {
	t.Helper()
	env := e
	env.signup(t, "citizen@x.com", "pw1234", "Citizen")
	token, _ := env.login(t, "citizen@x.com", "pw1234")
	return token
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := security.IssueSessionToken(testSecret, models.User{
		ID:   "admin-1",
		Name: "Admin",
		Role: models.UserRoleAdmin,
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func TestFileGrievanceRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/grievance", map[string]string{
		"title":       "Water issue",
		"description": "No water supply for three days in our lane.",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFileGrievanceCreated(t *testing.T) {
	env := newTestEnv(t)
	token := env.citizenToken(t)

	rec := env.do(t, http.MethodPost, "/grievance", map[string]string{
		"title":       "Water issue",
		"description": "No water supply for three days in our lane.",
	}, map[string]string{"Cookie": "token=" + token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Grievance struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"grievance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Grievance.ID)
	assert.Equal(t, "analyzing", resp.Grievance.Status)
}

func TestFileGrievanceValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.citizenToken(t)

	rec := env.do(t, http.MethodPost, "/grievance", map[string]string{
		"title":       "Too short",
		"description": "short",
	}, map[string]string{"Cookie": "token=" + token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGrievanceOwnershipAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.citizenToken(t)

	rec := env.do(t, http.MethodPost, "/grievance", map[string]string{
		"title":       "Road damage",
		"description": "Large pothole on the school route, dangerous for children.",
	}, map[string]string{"Cookie": "token=" + token})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Grievance struct {
			ID string `json:"id"`
		} `json:"grievance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodGet, "/grievance/"+created.Grievance.ID, nil, map[string]string{
		"Cookie": "token=" + token,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	otherToken, err := security.IssueSessionToken(testSecret, models.User{ID: "other", Role: models.UserRoleCitizen}, time.Hour)
	require.NoError(t, err)
	rec = env.do(t, http.MethodGet, "/grievance/"+created.Grievance.ID, nil, map[string]string{
		"Cookie": "token=" + otherToken,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/grievance/missing", nil, map[string]string{
		"Cookie": "token=" + token,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	token := env.citizenToken(t)

	rec := env.do(t, http.MethodGet, "/admin/grievances", nil, map[string]string{
		"Cookie": "token=" + token,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/grievances", nil, map[string]string{
		"Cookie": "token=" + adminToken(t),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminTriage(t *testing.T) {
	env := newTestEnv(t)
	citizen := env.citizenToken(t)
	admin := adminToken(t)

	rec := env.do(t, http.MethodPost, "/grievance", map[string]string{
		"title":       "Garbage",
		"description": "Garbage has not been collected for over a week now.",
	}, map[string]string{"Cookie": "token=" + citizen})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Grievance struct {
			ID string `json:"id"`
		} `json:"grievance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodPut, "/admin/grievances/"+created.Grievance.ID+"/status", map[string]string{
		"status": "in_progress",
	}, map[string]string{"Cookie": "token=" + admin})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/admin/grievances/missing/status", map[string]string{
		"status": "resolved",
	}, map[string]string{"Cookie": "token=" + admin})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/admin/grievances/"+created.Grievance.ID+"/status", map[string]string{
		"status": "analyzing",
	}, map[string]string{"Cookie": "token=" + admin})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
