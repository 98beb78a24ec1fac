package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
)

// DefaultMaxAttempts bounds retries per session.
const DefaultMaxAttempts = 100

// ErrNoRoomOfRequiredType aborts a run when a needed room type has no rooms at all.
var ErrNoRoomOfRequiredType = errors.New("no room of required type")

// NoteType categorises generator notes.
type NoteType string

const (
	NoteUnsupportedHours NoteType = "UNSUPPORTED_LECTURE_HOURS"
	NotePatternInfo      NoteType = "PATTERN_INFO"
	NoteUnplaceable      NoteType = "UNPLACEABLE_SESSION"
	NoteNoFaculty        NoteType = "NO_FACULTY"
	NoteAlreadyScheduled NoteType = "ALREADY_SCHEDULED"
)

// Note is a non-fatal message produced while generating.
type Note struct {
	Type     NoteType `json:"type"`
	CourseID string   `json:"course_id,omitempty"`
	Message  string   `json:"message"`
}

// GenerateInput carries everything a run needs. Existing holds the section's
// current schedules.
type GenerateInput struct {
	Section       models.Section
	Courses       []models.Course
	Faculty       []models.Faculty
	Rooms         []models.Room
	Existing      []models.Schedule
	ClearExisting bool
	MaxAttempts   int
}

// Result summarises one run. Created entries stay persisted even when the run fails later.
type Result struct {
	SectionID      string                       `json:"section_id"`
	Created        []models.Schedule            `json:"created"`
	Removed        int                          `json:"removed"`
	Notes          []Note                       `json:"notes"`
	ScheduledUnits int                          `json:"scheduled_units"`
	RequiredUnits  int                          `json:"required_units"`
	Status         models.SectionScheduleStatus `json:"status"`
}

// Unplaced counts sessions the run gave up on.
func (r *Result) Unplaced() int {
	count := 0
	for _, note := range r.Notes {
		if note.Type == NoteUnplaceable {
			count++
		}
	}
	return count
}

// AutoScheduler places a section's sessions into conflict-free slots.
type AutoScheduler struct {
	store       ScheduleStore
	checker     *ConflictChecker
	picker      SlotPicker
	locker      *KeyLocker
	maxAttempts int
}

// NewAutoScheduler wires the scheduler. A nil picker uses a time-seeded RandomPicker
// and a nil locker a private one.
func NewAutoScheduler(store ScheduleStore, picker SlotPicker, locker *KeyLocker, maxAttempts int) *AutoScheduler {
	if picker == nil {
		picker = NewRandomPicker(0)
	}
	if locker == nil {
		locker = NewKeyLocker()
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &AutoScheduler{
		store:       store,
		checker:     NewConflictChecker(store),
		picker:      picker,
		locker:      locker,
		maxAttempts: maxAttempts,
	}
}

// Generate runs the scheduler for one section. Store and context errors stop the run
// and are returned together with the partial result.
func (a *AutoScheduler) Generate(ctx context.Context, input GenerateInput) (*Result, error) {
	result := &Result{
		SectionID:     input.Section.ID,
		RequiredUnits: input.Section.RequiredUnits,
		Status:        models.SectionScheduleIncomplete,
	}

	var sessions []Session
	for _, course := range input.Courses {
		expanded, notes := ExpandSessions(course)
		sessions = append(sessions, expanded...)
		result.Notes = append(result.Notes, notes...)
	}

	scheduledCourses := make(map[string]bool)
	if !input.ClearExisting {
		for _, item := range input.Existing {
			scheduledCourses[item.CourseID] = true
		}
	}

	var pending []Session
	noted := make(map[string]bool)
	for _, session := range sessions {
		if !scheduledCourses[session.Course.ID] {
			pending = append(pending, session)
			continue
		}
		if !noted[session.Course.ID] {
			noted[session.Course.ID] = true
			result.Notes = append(result.Notes, Note{
				Type:     NoteAlreadyScheduled,
				CourseID: session.Course.ID,
				Message:  fmt.Sprintf("%s already has schedules for this section", session.Course.CourseCode),
			})
		}
	}

	roomsByType := groupRooms(input.Rooms)
	for _, session := range pending {
		if len(roomsByType[session.Kind.RoomType()]) == 0 {
			return result, fmt.Errorf("%w: %s needs a %s room", ErrNoRoomOfRequiredType, session.Label(), strings.ToLower(string(session.Kind.RoomType())))
		}
	}

	remaining := input.Existing
	if input.ClearExisting {
		for _, item := range input.Existing {
			if err := a.store.Delete(ctx, item.ID); err != nil {
				return result, fmt.Errorf("clear schedule %s: %w", item.ID, err)
			}
			result.Removed++
		}
		remaining = nil
	}

	maxAttempts := a.maxAttempts
	if input.MaxAttempts > 0 {
		maxAttempts = input.MaxAttempts
	}

	noFacultyNoted := make(map[string]bool)
	for _, session := range pending {
		faculty, specialists := facultyFor(session.Course, input.Faculty)
		if len(faculty) == 0 && !noFacultyNoted[session.Course.ID] {
			noFacultyNoted[session.Course.ID] = true
			result.Notes = append(result.Notes, Note{
				Type:     NoteNoFaculty,
				CourseID: session.Course.ID,
				Message:  fmt.Sprintf("%s: no faculty available, scheduling without one", session.Course.CourseCode),
			})
		}

		placed, err := a.place(ctx, input.Section, session, faculty, specialists, roomsByType[session.Kind.RoomType()], maxAttempts)
		if err != nil {
			finish(result, input, remaining)
			return result, err
		}
		if placed == nil {
			result.Notes = append(result.Notes, Note{
				Type:     NoteUnplaceable,
				CourseID: session.Course.ID,
				Message:  fmt.Sprintf("%s: no conflict-free slot found", session.Label()),
			})
			continue
		}
		result.Created = append(result.Created, *placed)
	}

	finish(result, input, remaining)
	return result, nil
}

// place tries candidates for one session. The first half of the attempts uses the
// preferred days and the specialist faculty only; the second half widens to the
// fallback days and every faculty member and restarts the picker sequence.
func (a *AutoScheduler) place(ctx context.Context, section models.Section, session Session, faculty []models.Faculty, specialists int, rooms []models.Room, maxAttempts int) (*models.Schedule, error) {
	narrowed := specialists > 0 && specialists < len(faculty)
	widens := narrowed || len(session.Fallback) > 0
	widenAt := maxAttempts / 2
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		days, pool, step := session.Days, len(faculty), attempt
		if narrowed {
			pool = specialists
		}
		if widens && attempt >= widenAt {
			if len(session.Fallback) > 0 {
				days = session.Fallback
			}
			pool = len(faculty)
			step = attempt - widenAt
		}
		candidate, ok := a.picker.Next(step, PickRequest{
			Days:     days,
			Duration: session.Duration,
			Faculty:  pool,
			Rooms:    len(rooms),
		})
		if !ok {
			if widens && attempt < widenAt {
				// Narrow candidates exhausted early; move on to the widened phase.
				attempt = widenAt - 1
				continue
			}
			return nil, nil
		}

		roomID := rooms[candidate.RoomIndex].ID
		schedule := models.Schedule{
			CourseID:  session.Course.ID,
			SectionID: section.ID,
			RoomID:    &roomID,
			Day:       candidate.Day,
			StartTime: candidate.Range.Start,
			EndTime:   candidate.Range.End,
			Duration:  session.Duration,
		}
		if candidate.FacultyIndex >= 0 {
			facultyID := faculty[candidate.FacultyIndex].ID
			schedule.FacultyID = &facultyID
		}

		created, err := a.tryCreate(ctx, &schedule)
		if err != nil {
			return nil, err
		}
		if created {
			return &schedule, nil
		}
	}
	return nil, nil
}

func (a *AutoScheduler) tryCreate(ctx context.Context, schedule *models.Schedule) (bool, error) {
	unlock := a.locker.Lock(LockKeys(*schedule)...)
	defer unlock()

	report, err := a.checker.Check(ctx, *schedule, StrictPolicy())
	if err != nil {
		return false, err
	}
	if !report.Clean() {
		return false, nil
	}
	if err := a.store.Create(ctx, schedule); err != nil {
		return false, fmt.Errorf("create schedule: %w", err)
	}
	return true, nil
}

// finish computes the completeness status from the courses owning at least one entry.
func finish(result *Result, input GenerateInput, remaining []models.Schedule) {
	units := make(map[string]int, len(input.Courses))
	for _, course := range input.Courses {
		units[course.ID] = course.CreditUnits
	}
	owners := make(map[string]bool)
	for _, item := range remaining {
		owners[item.CourseID] = true
	}
	for _, item := range result.Created {
		owners[item.CourseID] = true
	}

	total := 0
	for courseID := range owners {
		total += units[courseID]
	}
	result.ScheduledUnits = total
	result.Status = CompletionStatus(input.Section.RequiredUnits, total, len(owners) > 0)
}

// CompletionStatus applies the credit-unit coverage rule. With no required units the
// section is complete as soon as it has any entry.
func CompletionStatus(requiredUnits, scheduledUnits int, hasEntries bool) models.SectionScheduleStatus {
	if !hasEntries {
		return models.SectionScheduleIncomplete
	}
	if requiredUnits <= 0 || scheduledUnits >= requiredUnits {
		return models.SectionScheduleComplete
	}
	return models.SectionScheduleIncomplete
}

func groupRooms(rooms []models.Room) map[models.RoomType][]models.Room {
	grouped := make(map[models.RoomType][]models.Room)
	for _, room := range rooms {
		kind := room.Type()
		if kind == models.RoomTypeUnknown {
			continue
		}
		grouped[kind] = append(grouped[kind], room)
	}
	return grouped
}

// facultyFor orders faculty specialised in the course first and reports how many
// lead the list. Specialisations only rank candidates, everyone stays eligible.
func facultyFor(course models.Course, faculty []models.Faculty) ([]models.Faculty, int) {
	preferred := make([]models.Faculty, 0, len(faculty))
	var others []models.Faculty
	for _, member := range faculty {
		if specialises(member, course) {
			preferred = append(preferred, member)
		} else {
			others = append(others, member)
		}
	}
	return append(preferred, others...), len(preferred)
}

func specialises(member models.Faculty, course models.Course) bool {
	for _, skill := range member.Specializations {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if strings.EqualFold(skill, course.CourseCode) || strings.EqualFold(skill, course.ID) || strings.EqualFold(skill, course.DescriptiveTitle) {
			return true
		}
	}
	return false
}
