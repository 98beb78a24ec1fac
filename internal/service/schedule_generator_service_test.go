package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
)

type sectionRepoStub struct {
	sections  map[string]*models.Section
	statuses  map[string]models.SectionScheduleStatus
	updateErr error
}

func (s *sectionRepoStub) FindByID(ctx context.Context, id string) (*models.Section, error) {
	section, ok := s.sections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *section
	if status, ok := s.statuses[id]; ok {
		copied.ScheduleStatus = status
	}
	return &copied, nil
}

func (s *sectionRepoStub) UpdateScheduleStatus(ctx context.Context, id string, status models.SectionScheduleStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.sections[id]; !ok {
		return sql.ErrNoRows
	}
	if s.statuses == nil {
		s.statuses = map[string]models.SectionScheduleStatus{}
	}
	s.statuses[id] = status
	return nil
}

type courseRepoStub struct {
	courses []models.Course
	err     error
}

func (s courseRepoStub) ListRequirements(ctx context.Context, curriculumID string, yearLevel, semester int) ([]models.Course, error) {
	return s.courses, s.err
}

type facultyRepoStub struct {
	members []models.Faculty
}

func (s facultyRepoStub) List(ctx context.Context) ([]models.Faculty, error) {
	return s.members, nil
}

func (s facultyRepoStub) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	for _, member := range s.members {
		if member.ID == id {
			copied := member
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

type roomRepoStub struct {
	rooms []models.Room
}

func (s roomRepoStub) List(ctx context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

func (s roomRepoStub) FindByID(ctx context.Context, id string) (*models.Room, error) {
	for _, room := range s.rooms {
		if room.ID == id {
			copied := room
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

type generatorFixture struct {
	service     *ScheduleGeneratorService
	sections    *sectionRepoStub
	schedules   *scheduleRepoStub
	invalidator *invalidatorStub
	metrics     *MetricsService
}

func newGeneratorFixture(rooms []models.Room, existing ...models.Schedule) generatorFixture {
	sections := &sectionRepoStub{sections: map[string]*models.Section{
		"sec-1": {ID: "sec-1", Name: "BSIT 2A", CurriculumID: "cur-1", YearLevel: 2, Semester: 1, RequiredUnits: 3},
	}}
	courses := courseRepoStub{courses: []models.Course{
		{ID: "c-1", CourseCode: "IT201", DescriptiveTitle: "Data Structures", LectureHours: 2, LaboratoryHours: 3, CreditUnits: 3},
	}}
	faculty := facultyRepoStub{members: []models.Faculty{{ID: "fac-1", FirstName: "Ana", LastName: "Santos"}}}
	schedules := &scheduleRepoStub{items: existing}
	invalidator := &invalidatorStub{}
	metrics := NewMetricsService()
	svc := NewScheduleGeneratorService(sections, courses, faculty, roomRepoStub{rooms: rooms}, schedules,
		scheduling.SequentialPicker{}, nil, 50, invalidator, metrics, nil, nil)
	return generatorFixture{service: svc, sections: sections, schedules: schedules, invalidator: invalidator, metrics: metrics}
}

func defaultRooms() []models.Room {
	return []models.Room{
		{ID: "room-1", Name: "R-201", RoomType: "Lecture"},
		{ID: "lab-1", Name: "CL-1", RoomType: "Lab"},
	}
}

func TestScheduleGeneratorServiceGenerateComplete(t *testing.T) {
	fx := newGeneratorFixture(defaultRooms())

	result, err := fx.service.Generate(context.Background(), "sec-1", dto.GenerateScheduleRequest{})
	require.NoError(t, err)
	assert.Len(t, result.Created, 3)
	assert.Equal(t, models.SectionScheduleComplete, result.Status)
	assert.Equal(t, models.SectionScheduleComplete, fx.sections.statuses["sec-1"])
	assert.Len(t, fx.schedules.items, 3)
	require.Len(t, fx.invalidator.calls, 1)
	assert.Len(t, fx.invalidator.calls[0], 3)
	assert.Equal(t, uint64(1), fx.metrics.Snapshot().GenerationRuns)
}

func TestScheduleGeneratorServiceMissingLabRoom(t *testing.T) {
	fx := newGeneratorFixture([]models.Room{{ID: "room-1", Name: "R-201", RoomType: "Lecture"}})

	result, err := fx.service.Generate(context.Background(), "sec-1", dto.GenerateScheduleRequest{ClearExisting: true})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Same(t, result, appErr.Details)
	assert.Equal(t, http.StatusPreconditionFailed, appErr.Status)
	assert.True(t, errors.Is(err, scheduling.ErrNoRoomOfRequiredType))
	assert.Empty(t, fx.sections.statuses)
	assert.Empty(t, fx.invalidator.calls)
}

func TestScheduleGeneratorServiceClearExisting(t *testing.T) {
	old := existingSchedule("old-1", "sec-1", "fac-9", "room-9", models.DaySaturday, "07:30", "08:30")
	fx := newGeneratorFixture(defaultRooms(), old)

	result, err := fx.service.Generate(context.Background(), "sec-1", dto.GenerateScheduleRequest{ClearExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, []string{"old-1"}, fx.schedules.deleted)
	require.Len(t, fx.invalidator.calls, 1)
	assert.Len(t, fx.invalidator.calls[0], 4, "created entries plus the cleared one")
}

func TestScheduleGeneratorServiceSectionNotFound(t *testing.T) {
	fx := newGeneratorFixture(defaultRooms())
	_, err := fx.service.Generate(context.Background(), "missing", dto.GenerateScheduleRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestScheduleGeneratorServiceValidatesAttempts(t *testing.T) {
	fx := newGeneratorFixture(defaultRooms())
	_, err := fx.service.Generate(context.Background(), "sec-1", dto.GenerateScheduleRequest{MaxAttempts: 5000})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestScheduleGeneratorServiceStoreFailureKeepsPartialResult(t *testing.T) {
	fx := newGeneratorFixture(defaultRooms())
	fx.schedules.createErr = errors.New("db went away")
	fx.schedules.createAfter = 1

	result, err := fx.service.Generate(context.Background(), "sec-1", dto.GenerateScheduleRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	assert.ErrorIs(t, err, fx.schedules.createErr)

	require.NotNil(t, result)
	require.Len(t, result.Created, 1)
	assert.Len(t, fx.schedules.items, 1)
	assert.Equal(t, result.Status, fx.sections.statuses["sec-1"])
	require.Len(t, fx.invalidator.calls, 1)

	appErr := appErrors.FromError(err)
	assert.Same(t, result, appErr.Details)
}

func TestScheduleGeneratorServiceStoreFailureBeforeAnyEntry(t *testing.T) {
	fx := newGeneratorFixture(defaultRooms())
	fx.schedules.createErr = errors.New("insert failed")

	result, err := fx.service.Generate(context.Background(), "sec-1", dto.GenerateScheduleRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	require.NotNil(t, result)
	assert.Empty(t, result.Created)
	assert.Empty(t, fx.sections.statuses)
}
