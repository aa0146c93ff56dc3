package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/dto"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
	appErrors "github.com/JAMAutoLtd/customer-portal-sub001/pkg/errors"
	"github.com/JAMAutoLtd/customer-portal-sub001/pkg/response"
)

type jobReaderMock struct {
	query dto.JobQuery
	job   *models.Job
}

func (m *jobReaderMock) List(ctx context.Context, query dto.JobQuery) ([]models.Job, *models.Pagination, error) {
	m.query = query
	return []models.Job{{ID: "job-1", Status: models.JobStatusQueued}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *jobReaderMock) Get(ctx context.Context, id string) (*models.Job, error) {
	if m.job != nil && m.job.ID == id {
		return m.job, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
}

func TestJobHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &jobReaderMock{}
	handler := &JobHandler{service: mockSvc}

	req, err := http.NewRequest(http.MethodGet, "/jobs?status=queued&technician=tech-1", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "queued", mockSvc.query.Status)
	assert.Equal(t, "tech-1", mockSvc.query.Technician)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestJobHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &JobHandler{service: &jobReaderMock{}}

	req, err := http.NewRequest(http.MethodGet, "/jobs/missing", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
