package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
)

func TestClassifySectionDoubleBooking(t *testing.T) {
	existing := []models.Schedule{schedule("s-1", "sec-1", "", "", models.DayMonday, "09:00", "10:30")}
	candidate := schedule("", "sec-1", "", "", models.DayMonday, "10:00", "11:00")

	report := Classify(candidate, existing, ConflictPolicy{})
	require.True(t, report.HasErrors())
	assert.True(t, report.HasKind(ConflictSection))
	assert.Equal(t, "s-1", report.Errors[0].ScheduleID)
}

func TestClassifyAdjacentIsClean(t *testing.T) {
	existing := []models.Schedule{schedule("s-1", "sec-1", "fac-1", "room-1", models.DayMonday, "09:00", "10:30")}
	candidate := schedule("", "sec-1", "fac-1", "room-1", models.DayMonday, "10:30", "12:00")

	report := Classify(candidate, existing, StrictPolicy())
	assert.True(t, report.Clean())
}

func TestClassifyOtherDayIsClean(t *testing.T) {
	existing := []models.Schedule{schedule("s-1", "sec-1", "", "", models.DayTuesday, "09:00", "10:30")}
	candidate := schedule("", "sec-1", "", "", models.DayMonday, "09:00", "10:30")

	assert.True(t, Classify(candidate, existing, StrictPolicy()).Clean())
}

func TestClassifySoftConflictsRespectPolicy(t *testing.T) {
	existing := []models.Schedule{schedule("s-1", "sec-2", "fac-1", "room-1", models.DayWednesday, "13:00", "14:00")}
	candidate := schedule("", "sec-1", "fac-1", "room-1", models.DayWednesday, "13:30", "14:30")

	lenient := Classify(candidate, existing, ConflictPolicy{})
	assert.False(t, lenient.HasErrors())
	assert.Len(t, lenient.Warnings, 2)
	assert.True(t, lenient.HasKind(ConflictFaculty))
	assert.True(t, lenient.HasKind(ConflictRoom))

	roomOnly := Classify(candidate, existing, ConflictPolicy{EscalateRoom: true})
	require.Len(t, roomOnly.Errors, 1)
	assert.Equal(t, string(ConflictRoom), roomOnly.Errors[0].Kind)
	require.Len(t, roomOnly.Warnings, 1)
	assert.Equal(t, string(ConflictFaculty), roomOnly.Warnings[0].Kind)

	strict := Classify(candidate, existing, StrictPolicy())
	assert.Len(t, strict.Errors, 2)
	assert.Empty(t, strict.Warnings)
}

func TestClassifyIgnoresSelfAndDuplicates(t *testing.T) {
	self := schedule("s-1", "sec-1", "fac-1", "room-1", models.DayFriday, "08:00", "09:00")
	other := schedule("s-2", "sec-1", "", "", models.DayFriday, "08:30", "09:30")

	report := Classify(self, []models.Schedule{self, other, other}, StrictPolicy())
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "s-2", report.Errors[0].ScheduleID)
}

func TestClassifyWindowViolationReportedWithSectionConflict(t *testing.T) {
	existing := []models.Schedule{schedule("s-1", "sec-1", "", "", models.DayThursday, "20:30", "21:30")}
	candidate := schedule("", "sec-1", "", "", models.DayThursday, "21:00", "22:00")

	report := Classify(candidate, existing, ConflictPolicy{})
	assert.True(t, report.HasKind(ConflictWindow))
	assert.True(t, report.HasKind(ConflictSection))
	assert.Len(t, report.Errors, 2)
}

func TestValidateRange(t *testing.T) {
	report, _, _ := ValidateRange(schedule("", "sec-1", "", "", models.DayMonday, "10:00", "09:00"))
	assert.True(t, report.HasKind(ConflictInvalidRange))

	report, _, _ = ValidateRange(schedule("", "sec-1", "", "", models.DayMonday, "xx", "25:00"))
	assert.Len(t, report.Errors, 2)
	assert.True(t, report.HasKind(ConflictMalformedTime))

	report, start, end := ValidateRange(schedule("", "sec-1", "", "", models.DayMonday, "7:30", "9:00"))
	assert.True(t, report.Clean())
	assert.Equal(t, 450, start)
	assert.Equal(t, 540, end)
}

func TestConflictCheckerQueriesEverySubject(t *testing.T) {
	store := newMemoryStore()
	store.seed(
		schedule("s-1", "sec-9", "fac-1", "room-9", models.DayTuesday, "09:00", "10:00"),
		schedule("s-2", "sec-8", "fac-8", "room-1", models.DayTuesday, "09:30", "10:30"),
	)
	checker := NewConflictChecker(store)

	report, err := checker.Check(context.Background(), schedule("", "sec-1", "fac-1", "room-1", models.DayTuesday, "09:00", "10:00"), ConflictPolicy{EscalateFaculty: true})
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, string(ConflictFaculty), report.Errors[0].Kind)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, string(ConflictRoom), report.Warnings[0].Kind)
	assert.ElementsMatch(t, []models.SubjectKind{models.SubjectSection, models.SubjectFaculty, models.SubjectRoom}, store.queried)
}

func TestConflictCheckerStoreError(t *testing.T) {
	store := newMemoryStore()
	store.findErr = errors.New("db down")
	_, err := NewConflictChecker(store).Check(context.Background(), schedule("", "sec-1", "", "", models.DayMonday, "09:00", "10:00"), StrictPolicy())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.findErr)
}

func TestConflictCheckerSkipsLookupsForMalformedTimes(t *testing.T) {
	store := newMemoryStore()
	report, err := NewConflictChecker(store).Check(context.Background(), schedule("", "sec-1", "", "", models.DayMonday, "nine", "10:00"), StrictPolicy())
	require.NoError(t, err)
	assert.True(t, report.HasKind(ConflictMalformedTime))
	assert.Empty(t, store.queried)
}

// --- Fixtures ---

func schedule(id, sectionID, facultyID, roomID string, day int, start, end string) models.Schedule {
	item := models.Schedule{ID: id, CourseID: "course-" + sectionID, SectionID: sectionID, Day: day, StartTime: start, EndTime: end}
	if facultyID != "" {
		item.FacultyID = &facultyID
	}
	if roomID != "" {
		item.RoomID = &roomID
	}
	return item
}

type memoryStore struct {
	mu        sync.Mutex
	items     []models.Schedule
	queried   []models.SubjectKind
	deleted   []string
	findErr   error
	createErr error
	nextID    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (m *memoryStore) seed(items ...models.Schedule) {
	m.items = append(m.items, items...)
}

func (m *memoryStore) FindConflicts(_ context.Context, day int, kind models.SubjectKind, subjectID string, window TimeRange) ([]models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queried = append(m.queried, kind)
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []models.Schedule
	for _, item := range m.items {
		if item.Day != day || item.SubjectID(kind) != subjectID {
			continue
		}
		overlap, err := Overlaps(window, TimeRange{Start: item.StartTime, End: item.EndTime})
		if err != nil || !overlap {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (m *memoryStore) Create(_ context.Context, item *models.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	item.ID = fmt.Sprintf("gen-%d", m.nextID)
	m.items = append(m.items, *item)
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return fmt.Errorf("schedule %s not found", id)
}

func (m *memoryStore) forSection(sectionID string) []models.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Schedule
	for _, item := range m.items {
		if item.SectionID == sectionID {
			out = append(out, item)
		}
	}
	return out
}
