package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var scheduleRowColumns = []string{"id", "course_id", "section_id", "faculty_id", "room_id", "day", "start_time", "end_time", "duration", "created_at", "updated_at"}

func TestScheduleRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	day := 2
	now := time.Now()
	rows := sqlmock.NewRows(scheduleRowColumns).
		AddRow("s-1", "c-1", "sec-1", "fac-1", nil, 2, "09:00", "10:00", 60, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + scheduleColumns + " FROM schedules WHERE 1=1 AND section_id = $1 AND day = $2 ORDER BY day ASC, start_time ASC LIMIT 50 OFFSET 0")).
		WithArgs("sec-1", 2).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules WHERE 1=1 AND section_id = $1 AND day = $2")).
		WithArgs("sec-1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ScheduleFilter{SectionID: "sec-1", Day: &day})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "fac-1", models.StringValue(list[0].FacultyID))
	assert.Nil(t, list[0].RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindConflictsFiltersOverlap(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(scheduleRowColumns).
		AddRow("s-1", "c-1", "sec-1", nil, "room-1", 0, "09:00", "10:30", 90, now, now).
		AddRow("s-2", "c-2", "sec-2", nil, "room-1", 0, "10:30", "12:00", 90, now, now).
		AddRow("s-3", "c-3", "sec-3", nil, "room-1", 0, "bad", "12:00", 0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + scheduleColumns + " FROM schedules WHERE day = $1 AND room_id = $2")).
		WithArgs(0, "room-1").
		WillReturnRows(rows)

	items, err := repo.FindConflicts(context.Background(), 0, models.SubjectRoom, "room-1", scheduling.TimeRange{Start: "10:00", End: "10:30"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s-1", items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindConflictsUnknownSubject(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	_, err := NewScheduleRepository(db).FindConflicts(context.Background(), 0, models.SubjectKind("course"), "x", scheduling.TimeRange{Start: "09:00", End: "10:00"})
	assert.Error(t, err)
}

func TestScheduleRepositoryListDetails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	columns := append(append([]string{}, scheduleRowColumns...), "course_code", "descriptive_title", "course_color", "section_name", "faculty_name", "room_name")
	rows := sqlmock.NewRows(columns).
		AddRow("s-1", "c-1", "sec-1", "fac-1", "room-1", 1, "13:00", "14:30", 90, now, now, "CPE101", "Programming", "#FFA726", "BSCPE 1A", "Cruz, Ana", "R101")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.faculty_id = $1 ORDER BY s.day ASC, s.start_time ASC")).
		WithArgs("fac-1").
		WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background(), models.SubjectFaculty, "fac-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "CPE101", details[0].CourseCode)
	assert.Equal(t, "Cruz, Ana", details[0].FacultyName)
	assert.Equal(t, "13:00", details[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateUpdateDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	room := "room-1"
	item := &models.Schedule{CourseID: "c-1", SectionID: "sec-1", RoomID: &room, Day: 3, StartTime: "09:00", EndTime: "10:00", Duration: 60}

	mock.ExpectExec("INSERT INTO schedules").
		WithArgs(sqlmock.AnyArg(), "c-1", "sec-1", nil, "room-1", 3, "09:00", "10:00", 60, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), item))
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())

	mock.ExpectExec("UPDATE schedules SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), item))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedules WHERE id = $1")).
		WithArgs(item.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), item.ID))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedules WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := NewScheduleRepository(db).FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
