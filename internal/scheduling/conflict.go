package scheduling

import (
	"context"
	"fmt"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
)

// ConflictKind categorises a conflict entry.
type ConflictKind string

const (
	ConflictMalformedTime ConflictKind = "MALFORMED_TIME"
	ConflictInvalidRange  ConflictKind = "INVALID_RANGE"
	ConflictWindow        ConflictKind = "WINDOW_VIOLATION"
	ConflictSection       ConflictKind = "SECTION_CONFLICT"
	ConflictFaculty       ConflictKind = "FACULTY_CONFLICT"
	ConflictRoom          ConflictKind = "ROOM_CONFLICT"
)

// ConflictPolicy decides whether soft conflicts block a save.
type ConflictPolicy struct {
	EscalateFaculty bool
	EscalateRoom    bool
}

// StrictPolicy treats every conflict as blocking.
func StrictPolicy() ConflictPolicy {
	return ConflictPolicy{EscalateFaculty: true, EscalateRoom: true}
}

// ConflictReport separates blocking errors from informational warnings.
type ConflictReport struct {
	Errors   []models.ScheduleConflict `json:"errors"`
	Warnings []models.ScheduleConflict `json:"warnings"`
}

// HasErrors reports whether the candidate must be rejected.
func (r ConflictReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// Clean reports whether no conflict of any kind was found.
func (r ConflictReport) Clean() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// HasKind reports whether an error or warning of the given kind exists.
func (r ConflictReport) HasKind(kind ConflictKind) bool {
	for _, list := range [][]models.ScheduleConflict{r.Errors, r.Warnings} {
		for _, item := range list {
			if item.Kind == string(kind) {
				return true
			}
		}
	}
	return false
}

func (r *ConflictReport) add(soft, escalate bool, conflict models.ScheduleConflict) {
	if soft && !escalate {
		r.Warnings = append(r.Warnings, conflict)
		return
	}
	r.Errors = append(r.Errors, conflict)
}

// ScheduleStore is the persistence surface the engine depends on.
type ScheduleStore interface {
	FindConflicts(ctx context.Context, day int, kind models.SubjectKind, subjectID string, window TimeRange) ([]models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

// ValidateRange checks a candidate's own times without looking at other schedules.
// Malformed or inverted ranges short-circuit; window violations do not.
func ValidateRange(candidate models.Schedule) (ConflictReport, int, int) {
	var report ConflictReport
	start, startErr := ParseTime(candidate.StartTime)
	end, endErr := ParseTime(candidate.EndTime)
	if startErr != nil {
		report.Errors = append(report.Errors, malformed(candidate, "start_time", startErr))
	}
	if endErr != nil {
		report.Errors = append(report.Errors, malformed(candidate, "end_time", endErr))
	}
	if report.HasErrors() {
		return report, 0, 0
	}
	if end <= start {
		report.Errors = append(report.Errors, models.ScheduleConflict{
			Kind:      string(ConflictInvalidRange),
			Message:   fmt.Sprintf("end time %s must be after start time %s", FormatTime(end), FormatTime(start)),
			Day:       candidate.Day,
			StartTime: FormatTime(start),
			EndTime:   FormatTime(end),
		})
		return report, start, end
	}
	if !WithinWindow(start, end) {
		report.Errors = append(report.Errors, models.ScheduleConflict{
			Kind:      string(ConflictWindow),
			Message:   fmt.Sprintf("time range %s-%s is outside %s-%s", FormatTime(start), FormatTime(end), FormatTime(DayStartMinutes), FormatTime(DayEndMinutes)),
			Day:       candidate.Day,
			StartTime: FormatTime(start),
			EndTime:   FormatTime(end),
		})
	}
	return report, start, end
}

// Classify compares a candidate against existing schedules. Schedules sharing the
// candidate's ID are ignored so edits do not collide with themselves.
func Classify(candidate models.Schedule, existing []models.Schedule, policy ConflictPolicy) ConflictReport {
	report, start, end := ValidateRange(candidate)
	if report.HasKind(ConflictMalformedTime) || report.HasKind(ConflictInvalidRange) {
		return report
	}

	facultyID := models.StringValue(candidate.FacultyID)
	roomID := models.StringValue(candidate.RoomID)
	seen := make(map[string]bool, len(existing))

	for _, item := range existing {
		if candidate.ID != "" && item.ID == candidate.ID {
			continue
		}
		if item.ID != "" {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
		}
		if item.Day != candidate.Day {
			continue
		}
		itemStart, itemEnd, err := TimeRange{Start: item.StartTime, End: item.EndTime}.Minutes()
		if err != nil {
			continue
		}
		if !overlapsMinutes(start, end, itemStart, itemEnd) {
			continue
		}
		if item.SectionID == candidate.SectionID {
			report.add(false, true, collision(ConflictSection, "section already has a class", item))
		}
		if facultyID != "" && models.StringValue(item.FacultyID) == facultyID {
			report.add(true, policy.EscalateFaculty, collision(ConflictFaculty, "faculty is already teaching", item))
		}
		if roomID != "" && models.StringValue(item.RoomID) == roomID {
			report.add(true, policy.EscalateRoom, collision(ConflictRoom, "room is already booked", item))
		}
	}
	return report
}

// ConflictChecker looks up existing schedules and classifies a candidate against them.
type ConflictChecker struct {
	store ScheduleStore
}

// NewConflictChecker constructs a checker backed by the provided store.
func NewConflictChecker(store ScheduleStore) *ConflictChecker {
	return &ConflictChecker{store: store}
}

// Check returns the conflict report for the candidate. It never writes.
func (c *ConflictChecker) Check(ctx context.Context, candidate models.Schedule, policy ConflictPolicy) (ConflictReport, error) {
	report, start, end := ValidateRange(candidate)
	if report.HasKind(ConflictMalformedTime) || report.HasKind(ConflictInvalidRange) {
		return report, nil
	}
	window := TimeRange{Start: FormatTime(start), End: FormatTime(end)}

	lookups := []struct {
		kind models.SubjectKind
		id   string
	}{
		{models.SubjectSection, candidate.SectionID},
		{models.SubjectFaculty, models.StringValue(candidate.FacultyID)},
		{models.SubjectRoom, models.StringValue(candidate.RoomID)},
	}

	var existing []models.Schedule
	for _, lookup := range lookups {
		if lookup.id == "" {
			continue
		}
		items, err := c.store.FindConflicts(ctx, candidate.Day, lookup.kind, lookup.id, window)
		if err != nil {
			return ConflictReport{}, fmt.Errorf("find %s conflicts: %w", lookup.kind, err)
		}
		existing = append(existing, items...)
	}
	return Classify(candidate, existing, policy), nil
}

func malformed(candidate models.Schedule, field string, err error) models.ScheduleConflict {
	return models.ScheduleConflict{
		Kind:    string(ConflictMalformedTime),
		Message: fmt.Sprintf("%s: %v", field, err),
		Day:     candidate.Day,
	}
}

func collision(kind ConflictKind, prefix string, existing models.Schedule) models.ScheduleConflict {
	return models.ScheduleConflict{
		Kind:       string(kind),
		Message:    fmt.Sprintf("%s on %s %s-%s", prefix, models.DayName(existing.Day), existing.StartTime, existing.EndTime),
		ScheduleID: existing.ID,
		CourseID:   existing.CourseID,
		SectionID:  existing.SectionID,
		FacultyID:  models.StringValue(existing.FacultyID),
		RoomID:     models.StringValue(existing.RoomID),
		Day:        existing.Day,
		StartTime:  existing.StartTime,
		EndTime:    existing.EndTime,
	}
}
