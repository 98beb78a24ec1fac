package scheduling

import (
	"fmt"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
)

// Cell states in a rendered grid.
const (
	CellEmpty = "empty"
	CellSkip  = "skip"
	CellBlock = "block"
)

// DaysPerWeek is the number of grid columns, Monday through Saturday.
const DaysPerWeek = 6

// GridBlock is a class occupying one or more consecutive slots of a day.
type GridBlock struct {
	ScheduleID       string `json:"schedule_id"`
	CourseID         string `json:"course_id"`
	CourseCode       string `json:"course_code"`
	DescriptiveTitle string `json:"descriptive_title"`
	Color            string `json:"color"`
	SectionName      string `json:"section_name,omitempty"`
	FacultyName      string `json:"faculty_name,omitempty"`
	RoomName         string `json:"room_name,omitempty"`
	Day              int    `json:"day"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Rowspan          int    `json:"rowspan"`
}

// GridCell is one (day, slot) position. Block is set only when State is "block".
type GridCell struct {
	State   string     `json:"state"`
	Rowspan int        `json:"rowspan,omitempty"`
	Block   *GridBlock `json:"block,omitempty"`
}

// GridRow is one time label and its six day cells.
type GridRow struct {
	Time        string                `json:"time"`
	TimeRowspan int                   `json:"time_rowspan"`
	Cells       [DaysPerWeek]GridCell `json:"cells"`
}

// GridIssue explains why an entry was left off the grid.
type GridIssue struct {
	ScheduleID string `json:"schedule_id"`
	Reason     string `json:"reason"`
}

// Grid is a renderable weekly timetable.
type Grid struct {
	Days      [DaysPerWeek]string `json:"days"`
	TimeSlots []string            `json:"time_slots"`
	Rows      []GridRow           `json:"rows"`
	Unplaced  []GridIssue         `json:"unplaced,omitempty"`
}

// TimeSlots returns the grid labels from 07:30 to 21:30 inclusive.
func TimeSlots() []string {
	labels := make([]string, 0, (DayEndMinutes-DayStartMinutes)/SlotMinutes+1)
	for minutes := DayStartMinutes; minutes <= DayEndMinutes; minutes += SlotMinutes {
		labels = append(labels, FormatTime(minutes))
	}
	return labels
}

// BuildGrid lays entries onto the day x slot grid. A later entry starting on the
// same slot replaces an earlier one.
func BuildGrid(entries []models.ScheduleDetail) Grid {
	labels := TimeSlots()
	grid := Grid{TimeSlots: labels}
	for day := 0; day < DaysPerWeek; day++ {
		grid.Days[day] = models.DayName(day)
	}

	blocks := make([]map[int]*GridBlock, DaysPerWeek)
	covered := make([]map[int]bool, DaysPerWeek)
	for day := 0; day < DaysPerWeek; day++ {
		blocks[day] = make(map[int]*GridBlock)
		covered[day] = make(map[int]bool)
	}

	for _, entry := range entries {
		if entry.Day < 0 || entry.Day >= DaysPerWeek {
			grid.Unplaced = append(grid.Unplaced, GridIssue{ScheduleID: entry.ID, Reason: fmt.Sprintf("day %d is outside Monday-Saturday", entry.Day)})
			continue
		}
		start, end, err := TimeRange{Start: entry.StartTime, End: entry.EndTime}.Minutes()
		if err != nil {
			grid.Unplaced = append(grid.Unplaced, GridIssue{ScheduleID: entry.ID, Reason: err.Error()})
			continue
		}
		index := floorDiv(start-DayStartMinutes, SlotMinutes)
		if index < 0 {
			index = 0
		}
		if index >= len(labels) {
			grid.Unplaced = append(grid.Unplaced, GridIssue{ScheduleID: entry.ID, Reason: fmt.Sprintf("start %s is after %s", FormatTime(start), FormatTime(DayEndMinutes))})
			continue
		}
		if end > DayEndMinutes {
			end = DayEndMinutes
		}
		slots := floorDiv(end-start, SlotMinutes)
		if slots < 1 {
			slots = 1
		}
		if index+slots > len(labels) {
			slots = len(labels) - index
		}

		blocks[entry.Day][index] = blockFor(entry, start, end, slots)
		for offset := 1; offset < slots; offset++ {
			covered[entry.Day][index+offset] = true
		}
	}

	grid.Rows = make([]GridRow, len(labels))
	for i, label := range labels {
		row := GridRow{Time: label, TimeRowspan: 1}
		for day := 0; day < DaysPerWeek; day++ {
			switch block, ok := blocks[day][i]; {
			case ok:
				row.Cells[day] = GridCell{State: CellBlock, Rowspan: block.Rowspan, Block: block}
				if block.Rowspan > row.TimeRowspan {
					row.TimeRowspan = block.Rowspan
				}
			case covered[day][i]:
				row.Cells[day] = GridCell{State: CellSkip}
			default:
				row.Cells[day] = GridCell{State: CellEmpty}
			}
		}
		grid.Rows[i] = row
	}
	return grid
}

func blockFor(entry models.ScheduleDetail, start, end, slots int) *GridBlock {
	color := entry.CourseColor
	if color == "" {
		color = models.DefaultCourseColor
	}
	return &GridBlock{
		ScheduleID:       entry.ID,
		CourseID:         entry.CourseID,
		CourseCode:       entry.CourseCode,
		DescriptiveTitle: entry.DescriptiveTitle,
		Color:            color,
		SectionName:      entry.SectionName,
		FacultyName:      entry.FacultyName,
		RoomName:         entry.RoomName,
		Day:              entry.Day,
		StartTime:        FormatTime(start),
		EndTime:          FormatTime(end),
		Rowspan:          slots,
	}
}
