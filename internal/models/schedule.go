package models

import "time"

// Weekday indexes used by schedules; Monday is zero.
const (
	DayMonday = iota
	DayTuesday
	DayWednesday
	DayThursday
	DayFriday
	DaySaturday
)

// DayNames maps day indexes to their display labels.
var DayNames = [...]string{"MON", "TUE", "WED", "THU", "FRI", "SAT"}

// DayName returns the short label for a day index or an empty string when out of range.
func DayName(day int) string {
	if day < 0 || day >= len(DayNames) {
		return ""
	}
	return DayNames[day]
}

// SubjectKind identifies which dimension a schedule query is scoped to.
type SubjectKind string

const (
	SubjectSection SubjectKind = "section"
	SubjectFaculty SubjectKind = "faculty"
	SubjectRoom    SubjectKind = "room"
)

// Valid reports whether the kind is one of the supported subjects.
func (k SubjectKind) Valid() bool {
	switch k {
	case SubjectSection, SubjectFaculty, SubjectRoom:
		return true
	}
	return false
}

// Schedule is one weekly session of a course for a section.
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	SectionID string    `db:"section_id" json:"section_id"`
	FacultyID *string   `db:"faculty_id" json:"faculty_id,omitempty"`
	RoomID    *string   `db:"room_id" json:"room_id,omitempty"`
	Day       int       `db:"day" json:"day"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Duration  int       `db:"duration" json:"duration"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectID returns the identifier of the schedule for the given dimension.
func (s Schedule) SubjectID(kind SubjectKind) string {
	switch kind {
	case SubjectSection:
		return s.SectionID
	case SubjectFaculty:
		return StringValue(s.FacultyID)
	case SubjectRoom:
		return StringValue(s.RoomID)
	}
	return ""
}

// ScheduleDetail joins a schedule with the labels needed to render it.
type ScheduleDetail struct {
	Schedule
	CourseCode       string `db:"course_code" json:"course_code"`
	DescriptiveTitle string `db:"descriptive_title" json:"descriptive_title"`
	CourseColor      string `db:"course_color" json:"course_color"`
	SectionName      string `db:"section_name" json:"section_name"`
	FacultyName      string `db:"faculty_name" json:"faculty_name"`
	RoomName         string `db:"room_name" json:"room_name"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	SectionID string
	FacultyID string
	RoomID    string
	CourseID  string
	Day       *int
	Page      int
	PageSize  int
}

// ScheduleConflict describes one collision found while validating a schedule.
type ScheduleConflict struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	ScheduleID string `json:"schedule_id,omitempty"`
	CourseID   string `json:"course_id,omitempty"`
	SectionID  string `json:"section_id,omitempty"`
	FacultyID  string `json:"faculty_id,omitempty"`
	RoomID     string `json:"room_id,omitempty"`
	Day        int    `json:"day"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
}

// ScheduleConflictError is returned when a schedule cannot be saved because of hard conflicts.
type ScheduleConflictError struct {
	Message  string             `json:"message"`
	Errors   []ScheduleConflict `json:"errors"`
	Warnings []ScheduleConflict `json:"warnings,omitempty"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// StringValue dereferences optional identifiers.
func StringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
