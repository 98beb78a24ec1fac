package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/middleware"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
)

type timetableServiceMock struct {
	kind      string
	subjectID string
	format    string
}

func (m *timetableServiceMock) Grid(ctx context.Context, kind, subjectID string) (*dto.TimetableResponse, error) {
	m.kind, m.subjectID = kind, subjectID
	return &dto.TimetableResponse{Kind: kind, SubjectID: subjectID, Grid: scheduling.BuildGrid(nil)}, nil
}

func (m *timetableServiceMock) Export(ctx context.Context, kind, subjectID, format string) (*dto.ExportFile, error) {
	m.kind, m.subjectID, m.format = kind, subjectID, format
	return &dto.ExportFile{Filename: "timetable-room-r1.csv", ContentType: "text/csv", Body: []byte("TIME,MON\n")}, nil
}

func newTimetableRouter(mock *timetableServiceMock, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(mock)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
	})
	r.GET("/timetables/:kind/:id", h.Get)
	r.GET("/timetables/:kind/:id/export", h.Export)
	return r
}

func TestTimetableHandlerGet(t *testing.T) {
	mock := &timetableServiceMock{}
	rec := httptest.NewRecorder()
	newTimetableRouter(mock, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timetables/room/r1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "room", mock.kind)
	assert.Equal(t, "r1", mock.subjectID)
	assert.Contains(t, rec.Body.String(), `"time_slots"`)
}

func TestTimetableHandlerResolvesOwnFacultyTimetable(t *testing.T) {
	mock := &timetableServiceMock{}
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleFaculty, FacultyID: "fac-9"}
	rec := httptest.NewRecorder()
	newTimetableRouter(mock, claims).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timetables/faculty/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fac-9", mock.subjectID)

	rec = httptest.NewRecorder()
	newTimetableRouter(&timetableServiceMock{}, &models.JWTClaims{Role: models.RoleAdmin}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timetables/faculty/me", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTimetableHandlerExport(t *testing.T) {
	mock := &timetableServiceMock{}
	rec := httptest.NewRecorder()
	newTimetableRouter(mock, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timetables/room/r1/export?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", mock.format)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "timetable-room-r1.csv")
	assert.Equal(t, "TIME,MON\n", rec.Body.String())
}
