package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/dto"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/service"
	appErrors "github.com/JAMAutoLtd/customer-portal-sub001/pkg/errors"
	"github.com/JAMAutoLtd/customer-portal-sub001/pkg/response"
)

type replanRunner interface {
	Run(ctx context.Context, req dto.RunReplanRequest) (*dto.RunReplanResponse, error)
}

// ReplanHandler exposes the single replan trigger.
type ReplanHandler struct {
	service replanRunner
}

// NewReplanHandler constructs the handler.
func NewReplanHandler(svc *service.ReplanService) *ReplanHandler {
	return &ReplanHandler{service: svc}
}

// Run godoc
// @Summary Trigger a full replan of all pending jobs
// @Description Runs the scheduling pipeline once over every schedulable job. The body is optional and may override the lookahead horizon.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.RunReplanRequest false "Replan options"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /run-replan [post]
func (h *ReplanHandler) Run(c *gin.Context) {
	var req dto.RunReplanRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid replan payload"))
		return
	}
	resp, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
