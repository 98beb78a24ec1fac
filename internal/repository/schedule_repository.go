package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
)

const scheduleColumns = "id, course_id, section_id, faculty_id, room_id, day, start_time, end_time, duration, created_at, updated_at"

const scheduleDetailSelect = `SELECT s.id, s.course_id, s.section_id, s.faculty_id, s.room_id, s.day, s.start_time, s.end_time, s.duration, s.created_at, s.updated_at,
c.course_code, c.descriptive_title, COALESCE(NULLIF(c.color, ''), '` + models.DefaultCourseColor + `') AS course_color,
sec.name AS section_name,
COALESCE(f.last_name || ', ' || f.first_name, '') AS faculty_name,
COALESCE(r.name, '') AS room_name
FROM schedules s
JOIN courses c ON c.id = s.course_id
JOIN sections sec ON sec.id = s.section_id
LEFT JOIN faculty f ON f.id = s.faculty_id
LEFT JOIN rooms r ON r.id = s.room_id`

var subjectColumns = map[models.SubjectKind]string{
	models.SubjectSection: "section_id",
	models.SubjectFaculty: "faculty_id",
	models.SubjectRoom:    "room_id",
}

// ScheduleRepository provides persistence for schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedules with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	base := "FROM schedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Day != nil {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, *filter.Day)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY day ASC, start_time ASC LIMIT %d OFFSET %d", scheduleColumns, base, size, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return schedules, total, nil
}

// FindByID loads a schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	var sched models.Schedule
	if err := r.db.GetContext(ctx, &sched, query, id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// FindConflicts returns the subject's schedules on the day that overlap the window.
// Times are stored as text, so the overlap test runs in Go.
func (r *ScheduleRepository) FindConflicts(ctx context.Context, day int, kind models.SubjectKind, subjectID string, window scheduling.TimeRange) ([]models.Schedule, error) {
	column, ok := subjectColumns[kind]
	if !ok {
		return nil, fmt.Errorf("find schedule conflicts: unknown subject %q", kind)
	}
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE day = $1 AND %s = $2", scheduleColumns, column)
	var candidates []models.Schedule
	if err := r.db.SelectContext(ctx, &candidates, query, day, subjectID); err != nil {
		return nil, fmt.Errorf("find schedule conflicts: %w", err)
	}

	overlapping := make([]models.Schedule, 0, len(candidates))
	for _, item := range candidates {
		overlap, err := scheduling.Overlaps(window, scheduling.TimeRange{Start: item.StartTime, End: item.EndTime})
		if err != nil || !overlap {
			continue
		}
		overlapping = append(overlapping, item)
	}
	return overlapping, nil
}

// ListBySection returns a section's schedules ordered by day and time.
func (r *ScheduleRepository) ListBySection(ctx context.Context, sectionID string) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE section_id = $1 ORDER BY day ASC, start_time ASC", scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, sectionID); err != nil {
		return nil, fmt.Errorf("list schedules by section: %w", err)
	}
	return schedules, nil
}

// ListDetails returns display-ready schedules for a section, faculty member or room.
func (r *ScheduleRepository) ListDetails(ctx context.Context, kind models.SubjectKind, subjectID string) ([]models.ScheduleDetail, error) {
	column, ok := subjectColumns[kind]
	if !ok {
		return nil, fmt.Errorf("list schedule details: unknown subject %q", kind)
	}
	query := fmt.Sprintf("%s WHERE s.%s = $1 ORDER BY s.day ASC, s.start_time ASC", scheduleDetailSelect, column)
	var details []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &details, query, subjectID); err != nil {
		return nil, fmt.Errorf("list schedule details: %w", err)
	}
	return details, nil
}

// Create stores a new schedule record.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, course_id, section_id, faculty_id, room_id, day, start_time, end_time, duration, created_at, updated_at) VALUES (:id, :course_id, :section_id, :faculty_id, :room_id, :day, :start_time, :end_time, :duration, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies a schedule record. A missing row yields sql.ErrNoRows.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET course_id = :course_id, section_id = :section_id, faculty_id = :faculty_id, room_id = :room_id, day = :day, start_time = :start_time, end_time = :end_time, duration = :duration, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return expectAffected(res, "update schedule")
}

// Delete removes a schedule by id. A missing row yields sql.ErrNoRows.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return expectAffected(res, "delete schedule")
}

func expectAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
