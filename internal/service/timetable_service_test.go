package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
)

type memoryCacheRepo struct {
	data    map[string][]byte
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func newTimetableFixture(t *testing.T) (*TimetableService, *scheduleRepoStub, *memoryCacheRepo, *MetricsService) {
	t.Helper()
	faculty := "fac-1"
	room := "room-1"
	repo := &scheduleRepoStub{details: []models.ScheduleDetail{
		{
			Schedule:    models.Schedule{ID: "sch-1", CourseID: "c-1", SectionID: "sec-1", FacultyID: &faculty, RoomID: &room, Day: models.DayMonday, StartTime: "09:00", EndTime: "10:30"},
			CourseCode:  "IT201",
			CourseColor: "#ff8800",
			SectionName: "BSIT 2A",
			FacultyName: "Santos, Ana",
			RoomName:    "R-201",
		},
	}}
	sections := &sectionRepoStub{sections: map[string]*models.Section{"sec-1": {ID: "sec-1", Name: "BSIT 2A"}}}
	members := facultyRepoStub{members: []models.Faculty{{ID: "fac-1", FirstName: "Ana", LastName: "Santos"}}}
	rooms := roomRepoStub{rooms: []models.Room{{ID: "room-1", Name: "R-201"}}}
	cacheRepo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cacheSvc := NewCacheService(cacheRepo, metrics, time.Minute, nil, true)
	return NewTimetableService(repo, sections, members, rooms, cacheSvc, time.Minute, nil), repo, cacheRepo, metrics
}

func TestTimetableServiceGridUsesCache(t *testing.T) {
	svc, repo, cacheRepo, metrics := newTimetableFixture(t)

	first, err := svc.Grid(context.Background(), "section", "sec-1")
	require.NoError(t, err)
	assert.Equal(t, "Section BSIT 2A", first.Title)
	cell := first.Grid.Rows[3].Cells[models.DayMonday]
	assert.Equal(t, scheduling.CellBlock, cell.State)
	assert.Equal(t, 3, cell.Rowspan)
	assert.Contains(t, cacheRepo.data, TimetableCacheKey(models.SubjectSection, "sec-1"))

	repo.details = nil
	second, err := svc.Grid(context.Background(), "SECTION", "sec-1")
	require.NoError(t, err)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, scheduling.CellBlock, second.Grid.Rows[3].Cells[models.DayMonday].State)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
}

func TestTimetableServiceTitles(t *testing.T) {
	svc, _, _, _ := newTimetableFixture(t)

	faculty, err := svc.Grid(context.Background(), "faculty", "fac-1")
	require.NoError(t, err)
	assert.Equal(t, "Santos, Ana", faculty.Title)

	room, err := svc.Grid(context.Background(), "room", "room-1")
	require.NoError(t, err)
	assert.Equal(t, "Room R-201", room.Title)

	_, err = svc.Grid(context.Background(), "room", "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Grid(context.Background(), "building", "b-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestTimetableServiceInvalidate(t *testing.T) {
	svc, _, cacheRepo, _ := newTimetableFixture(t)
	_, err := svc.Grid(context.Background(), "faculty", "fac-1")
	require.NoError(t, err)

	faculty := "fac-1"
	svc.Invalidate(context.Background(),
		models.Schedule{SectionID: "sec-1", FacultyID: &faculty},
		models.Schedule{SectionID: "sec-1"},
	)
	assert.NotContains(t, cacheRepo.data, TimetableCacheKey(models.SubjectFaculty, "fac-1"))
	assert.ElementsMatch(t, []string{
		TimetableCacheKey(models.SubjectSection, "sec-1"),
		TimetableCacheKey(models.SubjectFaculty, "fac-1"),
	}, cacheRepo.deleted)
}

func TestTimetableServiceExport(t *testing.T) {
	svc, _, _, _ := newTimetableFixture(t)

	csvFile, err := svc.Export(context.Background(), "section", "sec-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "timetable-section-sec-1.csv", csvFile.Filename)
	assert.Equal(t, "text/csv", csvFile.ContentType)
	assert.Contains(t, string(csvFile.Body), "IT201")

	pdfFile, err := svc.Export(context.Background(), "room", "room-1", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdfFile.ContentType)
	assert.True(t, bytes.HasPrefix(pdfFile.Body, []byte("%PDF")))

	_, err = svc.Export(context.Background(), "section", "sec-1", "xlsx")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnsupportedFormat))
}

func TestSheetFromGrid(t *testing.T) {
	grid := scheduling.BuildGrid([]models.ScheduleDetail{{
		Schedule:    models.Schedule{ID: "sch-1", Day: models.DayTuesday, StartTime: "08:00", EndTime: "09:00"},
		CourseCode:  "IT201",
		CourseColor: "#00aa00",
		RoomName:    "R-201",
	}})
	sheet := SheetFromGrid("Room R-201", dto.ExportFormatCSV, grid)
	assert.Equal(t, "CSV TIMETABLE", sheet.Subtitle)
	require.Len(t, sheet.Days, 6)
	require.Len(t, sheet.Rows, 29)
	cell := sheet.Rows[1].Cells[models.DayTuesday]
	assert.Equal(t, []string{"IT201", "R-201", "08:00-09:00"}, cell.Lines)
	assert.Equal(t, 2, cell.Rowspan)
	assert.True(t, sheet.Rows[2].Cells[models.DayTuesday].Skip)
	assert.True(t, sheet.Rows[0].Cells[models.DayTuesday].Empty())
}
