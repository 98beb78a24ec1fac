package scheduling

import (
	"errors"
	"fmt"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
)

// ErrUnsupportedDuration is returned for session lengths without a slot table.
var ErrUnsupportedDuration = errors.New("unsupported session duration")

// Duration buckets with slot tables.
const (
	Bucket60  = 60
	Bucket90  = 90
	Bucket120 = 120
	Bucket180 = 180

	labSessionMinutes = Bucket180
)

// DayPattern lists the weekly days and length of lecture sessions for a lecture hour count.
type DayPattern struct {
	Days     []int
	Duration int
	Note     string
}

// lecturePatterns is keyed by weekly lecture hours. Counts outside the table are unsupported.
var lecturePatterns = map[int]DayPattern{
	1: {Days: []int{models.DayMonday}, Duration: Bucket60},
	2: {Days: []int{models.DayTuesday, models.DayThursday}, Duration: Bucket60},
	3: {
		Days:     []int{models.DayMonday, models.DayWednesday, models.DayFriday},
		Duration: Bucket60,
		Note:     "alternate pattern: Tue/Thu 1.5h each",
	},
	4: {Days: []int{models.DayMonday, models.DayTuesday, models.DayThursday, models.DayFriday}, Duration: Bucket60},
}

// LecturePattern returns the day pattern for the given weekly lecture hours.
func LecturePattern(hours int) (DayPattern, bool) {
	pattern, ok := lecturePatterns[hours]
	if !ok {
		return DayPattern{}, false
	}
	days := make([]int, len(pattern.Days))
	copy(days, pattern.Days)
	pattern.Days = days
	return pattern, true
}

var (
	labPreferredDays = []int{models.DayTuesday, models.DayWednesday, models.DayThursday, models.DayFriday}
	labFallbackDays  = []int{models.DayTuesday, models.DayWednesday, models.DayThursday, models.DayFriday, models.DaySaturday}
)

// SessionKind distinguishes lecture and laboratory sessions.
type SessionKind string

const (
	SessionLecture    SessionKind = "LECTURE"
	SessionLaboratory SessionKind = "LABORATORY"
)

// RoomType returns the room type a session must be placed in.
func (k SessionKind) RoomType() models.RoomType {
	if k == SessionLaboratory {
		return models.RoomTypeLaboratory
	}
	return models.RoomTypeLecture
}

// Session is one weekly meeting the scheduler must place.
type Session struct {
	Course   models.Course
	Kind     SessionKind
	Index    int
	Duration int
	// Days are the candidate days; Fallback widens them once half the attempts are spent.
	Days     []int
	Fallback []int
}

// Label is used in notes, e.g. "CPE 101 lecture 2".
func (s Session) Label() string {
	kind := "lecture"
	if s.Kind == SessionLaboratory {
		kind = "laboratory"
	}
	return fmt.Sprintf("%s %s %d", s.Course.CourseCode, kind, s.Index+1)
}

// ExpandSessions turns a course requirement into sessions. Notes carry informational
// or unsupported-pattern messages.
func ExpandSessions(course models.Course) ([]Session, []Note) {
	var sessions []Session
	var notes []Note

	if course.LectureHours > 0 {
		pattern, ok := LecturePattern(course.LectureHours)
		if !ok {
			notes = append(notes, Note{
				Type:     NoteUnsupportedHours,
				CourseID: course.ID,
				Message:  fmt.Sprintf("%s: no day pattern for %d lecture hours", course.CourseCode, course.LectureHours),
			})
		} else {
			if pattern.Note != "" {
				notes = append(notes, Note{
					Type:     NotePatternInfo,
					CourseID: course.ID,
					Message:  fmt.Sprintf("%s: %s", course.CourseCode, pattern.Note),
				})
			}
			for i, day := range pattern.Days {
				sessions = append(sessions, Session{
					Course:   course,
					Kind:     SessionLecture,
					Index:    i,
					Duration: pattern.Duration,
					Days:     []int{day},
				})
			}
		}
	}

	if course.LaboratoryHours > 0 {
		sessions = append(sessions, Session{
			Course:   course,
			Kind:     SessionLaboratory,
			Duration: labSessionMinutes,
			Days:     append([]int(nil), labPreferredDays...),
			Fallback: append([]int(nil), labFallbackDays...),
		})
	}
	return sessions, notes
}

// SlotTable returns every start-aligned range of the given duration inside the
// institutional window. Friday tables drop ranges touching the 10:30-13:30 break.
func SlotTable(duration, day int) ([]TimeRange, error) {
	switch duration {
	case Bucket60, Bucket90, Bucket120, Bucket180:
	default:
		return nil, fmt.Errorf("%w: %d minutes", ErrUnsupportedDuration, duration)
	}
	var slots []TimeRange
	for start := DayStartMinutes; start+duration <= DayEndMinutes; start += SlotMinutes {
		end := start + duration
		if day == models.DayFriday && overlapsMinutes(start, end, fridayBreakStart, fridayBreakEnd) {
			continue
		}
		slots = append(slots, TimeRange{Start: FormatTime(start), End: FormatTime(end)})
	}
	return slots, nil
}
