package dto

import "github.com/noah-isme/assist-scheduler-api/internal/scheduling"

// Export formats supported by the timetable export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// TimetableResponse is a rendered weekly grid for one section, faculty member or room.
type TimetableResponse struct {
	Kind      string          `json:"kind"`
	SubjectID string          `json:"subject_id"`
	Title     string          `json:"title"`
	Grid      scheduling.Grid `json:"grid"`
}

// ExportFile is a rendered timetable download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
