package models

import "time"

// SectionScheduleStatus is the coarse completeness signal of a section timetable.
type SectionScheduleStatus string

const (
	SectionScheduleIncomplete SectionScheduleStatus = "INCOMPLETE"
	SectionScheduleComplete   SectionScheduleStatus = "COMPLETE"
)

// Valid reports whether s is a known status.
func (s SectionScheduleStatus) Valid() bool {
	return s == SectionScheduleIncomplete || s == SectionScheduleComplete
}

// Section is the scheduling unit: all of its schedules must be mutually non-overlapping.
type Section struct {
	ID             string                `db:"id" json:"id"`
	Name           string                `db:"name" json:"name"`
	CurriculumID   string                `db:"curriculum_id" json:"curriculum_id"`
	YearLevel      int                   `db:"year_level" json:"year_level"`
	Semester       int                   `db:"semester" json:"semester"`
	RequiredUnits  int                   `db:"required_units" json:"required_units"`
	MaxStudents    int                   `db:"max_students" json:"max_students"`
	ScheduleStatus SectionScheduleStatus `db:"schedule_status" json:"schedule_status"`
	CreatedAt      time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time             `db:"updated_at" json:"updated_at"`
}
