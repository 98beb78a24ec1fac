package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DayStartMinutes is 07:30, the first bookable minute of the institutional day.
	DayStartMinutes = 7*60 + 30
	// DayEndMinutes is 21:30, the last minute a class may end.
	DayEndMinutes = 21*60 + 30
	// SlotMinutes is the atomic grid increment.
	SlotMinutes = 30

	fridayBreakStart = 10*60 + 30
	fridayBreakEnd   = 13*60 + 30
)

// MalformedTimeError reports a time string that is not "H:MM" or "HH:MM".
type MalformedTimeError struct {
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *MalformedTimeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("malformed time %q: %s", e.Value, e.Reason)
}

// TimeRange is a half-open [Start, End) interval expressed as "HH:MM" strings.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// String renders the range as "HH:MM-HH:MM".
func (r TimeRange) String() string {
	return r.Start + "-" + r.End
}

// Minutes returns start and end as minutes since midnight.
func (r TimeRange) Minutes() (int, int, error) {
	start, err := ParseTime(r.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTime(r.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Normalize returns the range with both ends zero padded.
func (r TimeRange) Normalize() (TimeRange, error) {
	start, end, err := r.Minutes()
	if err != nil {
		return r, err
	}
	return TimeRange{Start: FormatTime(start), End: FormatTime(end)}, nil
}

// ParseTime converts "H:MM" or "HH:MM" into minutes since midnight. A bare hour
// ("9") is accepted with zero minutes; anything after the second component is ignored.
func ParseTime(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, &MalformedTimeError{Value: raw, Reason: "empty value"}
	}
	parts := strings.Split(value, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, &MalformedTimeError{Value: raw, Reason: "hour is not numeric"}
	}
	minute := 0
	if len(parts) > 1 {
		minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, &MalformedTimeError{Value: raw, Reason: "minute is not numeric"}
		}
	}
	if hour < 0 || hour > 23 {
		return 0, &MalformedTimeError{Value: raw, Reason: "hour out of range"}
	}
	if minute < 0 || minute > 59 {
		return 0, &MalformedTimeError{Value: raw, Reason: "minute out of range"}
	}
	return hour*60 + minute, nil
}

// FormatTime renders minutes since midnight as zero padded 24-hour "HH:MM".
func FormatTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", floorDiv(minutes, 60), floorMod(minutes, 60))
}

// NormalizeTime reformats a parseable time string as "HH:MM".
func NormalizeTime(raw string) (string, error) {
	minutes, err := ParseTime(raw)
	if err != nil {
		return "", err
	}
	return FormatTime(minutes), nil
}

// Duration returns end minus start in minutes. Callers reject end <= start before
// persisting anything; the value is returned as-is here.
func Duration(start, end string) (int, error) {
	s, err := ParseTime(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseTime(end)
	if err != nil {
		return 0, err
	}
	return e - s, nil
}

// WithinWindow reports whether [start, end) sits inside 07:30-21:30.
func WithinWindow(start, end int) bool {
	return start >= DayStartMinutes && end <= DayEndMinutes
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
