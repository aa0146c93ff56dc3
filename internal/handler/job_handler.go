package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/dto"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/service"
	appErrors "github.com/JAMAutoLtd/customer-portal-sub001/pkg/errors"
	"github.com/JAMAutoLtd/customer-portal-sub001/pkg/response"
)

type jobReader interface {
	List(ctx context.Context, query dto.JobQuery) ([]models.Job, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Job, error)
}

// JobHandler exposes read-only job state.
type JobHandler struct {
	service jobReader
}

// NewJobHandler constructs the handler.
func NewJobHandler(svc *service.JobService) *JobHandler {
	return &JobHandler{service: svc}
}

// List godoc
// @Summary List jobs
// @Tags Jobs
// @Produce json
// @Param status query string false "Job status"
// @Param technician query string false "Assigned technician ID"
// @Param orderId query string false "Order ID"
// @Param date query string false "Estimated schedule date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	var query dto.JobQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid job query"))
		return
	}
	jobs, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobs, pagination)
}

// Get godoc
// @Summary Get a job by ID
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
