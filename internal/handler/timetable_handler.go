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

// selfAlias resolves to the caller's own faculty id on faculty timetables.
const selfAlias = "me"

type timetableService interface {
	Grid(ctx context.Context, kind, subjectID string) (*dto.TimetableResponse, error)
	Export(ctx context.Context, kind, subjectID, format string) (*dto.ExportFile, error)
}

// TimetableHandler renders weekly grids.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Get godoc
// @Summary Weekly timetable grid
// @Description kind is one of section, faculty, room. Faculty callers may use "me" as the id of their own timetable.
// @Tags Timetables
// @Produce json
// @Param kind path string true "section | faculty | room"
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{kind}/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	subjectID, err := h.subjectID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	timetable, err := h.service.Grid(c.Request.Context(), c.Param("kind"), subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Export godoc
// @Summary Export timetable
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param kind path string true "section | faculty | room"
// @Param id path string true "Subject ID"
// @Param format query string false "csv or pdf (default pdf)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /timetables/{kind}/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	subjectID, err := h.subjectID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Param("kind"), subjectID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *TimetableHandler) subjectID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if id != selfAlias || c.Param("kind") != string(models.SubjectFaculty) {
		return id, nil
	}
	claims := claimsFromContext(c)
	if claims == nil || claims.FacultyID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "caller has no faculty profile")
	}
	return claims.FacultyID, nil
}
