package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
	"github.com/noah-isme/assist-scheduler-api/pkg/response"
)

type sectionService interface {
	Get(ctx context.Context, id string) (*models.Section, error)
	SetScheduleStatus(ctx context.Context, id string, req dto.UpdateScheduleStatusRequest) (*models.Section, error)
}

// SectionHandler serves section lookups and the schedule status toggle.
type SectionHandler struct {
	service sectionService
}

// NewSectionHandler constructs the handler.
func NewSectionHandler(svc sectionService) *SectionHandler {
	return &SectionHandler{service: svc}
}

// Get godoc
// @Summary Get section
// @Tags Sections
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id} [get]
func (h *SectionHandler) Get(c *gin.Context) {
	section, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// UpdateScheduleStatus godoc
// @Summary Set section schedule status
// @Tags Sections
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body dto.UpdateScheduleStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/schedule-status [patch]
func (h *SectionHandler) UpdateScheduleStatus(c *gin.Context) {
	var req dto.UpdateScheduleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.service.SetScheduleStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}
