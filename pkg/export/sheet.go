package export

// Sheet is a printable timetable: a time column plus one column per day.
type Sheet struct {
	Title    string
	Subtitle string
	Days     []string
	Rows     []SheetRow
}

// SheetRow is one time label. Cells has one entry per day.
type SheetRow struct {
	Time  string
	Cells []SheetCell
}

// SheetCell is a day cell. Skip marks a cell covered by a block starting above it.
type SheetCell struct {
	Lines   []string
	Color   string
	Rowspan int
	Skip    bool
}

// Empty reports whether the cell carries no block.
func (c SheetCell) Empty() bool {
	return !c.Skip && len(c.Lines) == 0
}
