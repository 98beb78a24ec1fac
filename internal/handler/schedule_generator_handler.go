package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
	"github.com/noah-isme/assist-scheduler-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, sectionID string, req dto.GenerateScheduleRequest) (*scheduling.Result, error)
}

// ScheduleGeneratorHandler exposes the auto-scheduler.
type ScheduleGeneratorHandler struct {
	service scheduleGenerator
}

// NewScheduleGeneratorHandler constructs the handler.
func NewScheduleGeneratorHandler(svc scheduleGenerator) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{service: svc}
}

// Generate godoc
// @Summary Auto-schedule a section
// @Description Places every required lecture and laboratory session of the section. Unplaceable sessions are reported as notes. A run that stops early returns the entries it already created under details.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body dto.GenerateScheduleRequest false "Generation options"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /sections/{id}/schedules/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
