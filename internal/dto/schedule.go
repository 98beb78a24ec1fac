package dto

import "github.com/noah-isme/assist-scheduler-api/internal/models"

// ScheduleRequest is the payload for creating, updating or dry-run checking a schedule.
// Times accept "H:MM" or "HH:MM"; Day is 0 (Monday) through 5 (Saturday).
type ScheduleRequest struct {
	CourseID  string  `json:"course_id" validate:"required"`
	SectionID string  `json:"section_id" validate:"required"`
	FacultyID *string `json:"faculty_id,omitempty" validate:"omitempty,min=1"`
	RoomID    *string `json:"room_id,omitempty" validate:"omitempty,min=1"`
	Day       *int    `json:"day" validate:"required,min=0,max=5"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
}

// CheckScheduleRequest dry-runs a candidate. ScheduleID excludes an existing entry being edited.
type CheckScheduleRequest struct {
	ScheduleRequest
	ScheduleID string `json:"schedule_id,omitempty"`
}

// PolicyOverride carries the per-request escalation flags. Nil keeps the configured default.
type PolicyOverride struct {
	EscalateFaculty *bool
	EscalateRoom    *bool
}

// ScheduleResponse returns a saved schedule together with non-blocking conflicts.
type ScheduleResponse struct {
	Schedule models.Schedule           `json:"schedule"`
	Warnings []models.ScheduleConflict `json:"warnings"`
}

// CheckScheduleResponse reports what a save would produce without persisting anything.
type CheckScheduleResponse struct {
	Valid    bool                      `json:"valid"`
	Errors   []models.ScheduleConflict `json:"errors"`
	Warnings []models.ScheduleConflict `json:"warnings"`
}
