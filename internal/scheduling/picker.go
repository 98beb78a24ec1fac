package scheduling

import (
	"math/rand"
	"sync"
	"time"
)

// Picker strategies selectable from configuration.
const (
	StrategyRandom     = "random"
	StrategySequential = "sequential"
)

// PickRequest describes the option space for one placement attempt.
type PickRequest struct {
	Days     []int
	Duration int
	Faculty  int
	Rooms    int
}

// Candidate is one proposed placement. FacultyIndex is -1 when no faculty is available.
type Candidate struct {
	Day          int
	Range        TimeRange
	FacultyIndex int
	RoomIndex    int
}

// SlotPicker proposes placements. Returning false means the picker has no further
// candidates for the request and the session should be given up.
type SlotPicker interface {
	Next(attempt int, req PickRequest) (Candidate, bool)
}

// NewPicker builds the picker for the named strategy. Unknown names fall back to random.
func NewPicker(strategy string, seed int64) SlotPicker {
	if strategy == StrategySequential {
		return SequentialPicker{}
	}
	return NewRandomPicker(seed)
}

// RandomPicker draws days, slots, faculty and rooms uniformly at random.
type RandomPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomPicker seeds a random picker; a zero seed uses the current time.
func NewRandomPicker(seed int64) *RandomPicker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPicker{rnd: rand.New(rand.NewSource(seed))}
}

// Next implements SlotPicker.
func (p *RandomPicker) Next(_ int, req PickRequest) (Candidate, bool) {
	if len(req.Days) == 0 || req.Rooms <= 0 {
		return Candidate{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	day := req.Days[p.rnd.Intn(len(req.Days))]
	slots, err := SlotTable(req.Duration, day)
	if err != nil || len(slots) == 0 {
		return Candidate{}, false
	}
	candidate := Candidate{
		Day:          day,
		Range:        slots[p.rnd.Intn(len(slots))],
		FacultyIndex: -1,
		RoomIndex:    p.rnd.Intn(req.Rooms),
	}
	if req.Faculty > 0 {
		candidate.FacultyIndex = p.rnd.Intn(req.Faculty)
	}
	return candidate, true
}

// SequentialPicker walks every (day, slot, room, faculty) combination in order,
// earliest slot first. It is deterministic and exhausts instead of repeating.
type SequentialPicker struct{}

// Next implements SlotPicker.
func (SequentialPicker) Next(attempt int, req PickRequest) (Candidate, bool) {
	if attempt < 0 || req.Rooms <= 0 {
		return Candidate{}, false
	}
	type daySlot struct {
		day int
		r   TimeRange
	}
	var pairs []daySlot
	for _, day := range req.Days {
		slots, err := SlotTable(req.Duration, day)
		if err != nil {
			return Candidate{}, false
		}
		for _, slot := range slots {
			pairs = append(pairs, daySlot{day: day, r: slot})
		}
	}
	if len(pairs) == 0 {
		return Candidate{}, false
	}
	faculty := req.Faculty
	if faculty <= 0 {
		faculty = 1
	}
	if attempt >= len(pairs)*req.Rooms*faculty {
		return Candidate{}, false
	}

	idx := attempt
	pair := pairs[idx%len(pairs)]
	idx /= len(pairs)
	room := idx % req.Rooms
	idx /= req.Rooms
	candidate := Candidate{Day: pair.day, Range: pair.r, RoomIndex: room, FacultyIndex: -1}
	if req.Faculty > 0 {
		candidate.FacultyIndex = idx % req.Faculty
	}
	return candidate, true
}
