package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shresth17/SahayAI/internal/service"
)

type memStorageHealth struct {
	exists bool
	err    error
}

func (s memStorageHealth) BucketExists(ctx context.Context) (bool, error) {
	return s.exists, s.err
}

func healthEnv(t *testing.T, storage StorageHealth) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	logger := zerolog.Nop()
	auth := service.NewAuthService(newMemUserStore(), cfg, logger)
	grievances := service.NewGrievanceService(newMemGrievanceStore(), memAttachmentStore{}, &memTaskQueue{}, memSpamDetector{}, cfg, logger)

	h := NewHandlerSet(logger, cfg, auth, grievances, storage, nil, nil)
	router := gin.New()
	h.Register(router.Group(""))
	return router
}

func getHealth(t *testing.T, router *gin.Engine) healthResponse {
	t.Helper()
	env := &testEnv{router: router}
	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthProbesStorage(t *testing.T) {
	resp := getHealth(t, healthEnv(t, memStorageHealth{exists: true}))

	assert.Equal(t, "ok", resp.Storage)
	// No pool or redis client wired in this environment.
	assert.Equal(t, "skipped", resp.Database)
	assert.Equal(t, "skipped", resp.Cache)
}

func TestHealthReportsMissingBucket(t *testing.T) {
	resp := getHealth(t, healthEnv(t, memStorageHealth{exists: false}))
	assert.Equal(t, "error", resp.Storage)
}

func TestHealthReportsStorageError(t *testing.T) {
	resp := getHealth(t, healthEnv(t, memStorageHealth{err: errors.New("connection refused")}))
	assert.Equal(t, "error", resp.Storage)
}

func TestHealthSkipsUnwiredStorage(t *testing.T) {
	resp := getHealth(t, healthEnv(t, nil))
	assert.Equal(t, "skipped", resp.Storage)
}
