package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
	"github.com/noah-isme/assist-scheduler-api/pkg/response"
)

type scheduleService interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Schedule, error)
	Check(ctx context.Context, req dto.CheckScheduleRequest, override dto.PolicyOverride) (*dto.CheckScheduleResponse, error)
	Create(ctx context.Context, req dto.ScheduleRequest, override dto.PolicyOverride) (*dto.ScheduleResponse, error)
	Update(ctx context.Context, id string, req dto.ScheduleRequest, override dto.PolicyOverride) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleHandler manages schedule endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedules
// @Tags Schedules
// @Produce json
// @Param section_id query string false "Filter by section"
// @Param faculty_id query string false "Filter by faculty"
// @Param room_id query string false "Filter by room"
// @Param course_id query string false "Filter by course"
// @Param day query int false "Filter by day (0 = Monday)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter := models.ScheduleFilter{
		SectionID: c.Query("section_id"),
		FacultyID: c.Query("faculty_id"),
		RoomID:    c.Query("room_id"),
		CourseID:  c.Query("course_id"),
	}
	if raw := c.Query("day"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || models.DayName(day) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day must be between 0 and 5"))
			return
		}
		filter.Day = &day
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = limit
	}

	schedules, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Check godoc
// @Summary Dry-run conflict check
// @Description Reports the errors and warnings a save would produce without persisting anything.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CheckScheduleRequest true "Candidate schedule"
// @Param escalate_faculty query bool false "Treat faculty double-booking as blocking"
// @Param escalate_room query bool false "Treat room double-booking as blocking"
// @Success 200 {object} response.Envelope
// @Router /schedules/check [post]
func (h *ScheduleHandler) Check(c *gin.Context) {
	var req dto.CheckScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	override, err := policyOverride(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Check(c.Request.Context(), req, override)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Create schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Schedule payload"
// @Param escalate_faculty query bool false "Treat faculty double-booking as blocking"
// @Param escalate_room query bool false "Treat room double-booking as blocking"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	override, err := policyOverride(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Create(c.Request.Context(), req, override)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Update schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.ScheduleRequest true "Schedule payload"
// @Param escalate_faculty query bool false "Treat faculty double-booking as blocking"
// @Param escalate_room query bool false "Treat room double-booking as blocking"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	override, err := policyOverride(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Update(c.Request.Context(), c.Param("id"), req, override)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete schedule
// @Tags Schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
