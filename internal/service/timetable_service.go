package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
	"github.com/noah-isme/assist-scheduler-api/pkg/cache"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
	"github.com/noah-isme/assist-scheduler-api/pkg/export"
)

type scheduleDetailReader interface {
	ListDetails(ctx context.Context, kind models.SubjectKind, subjectID string) ([]models.ScheduleDetail, error)
}

type sectionFinder interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type facultyFinder interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// SheetRenderer turns a printable sheet into a file body.
type SheetRenderer interface {
	Render(sheet export.Sheet) ([]byte, error)
}

// TimetableService renders weekly grids for sections, faculty and rooms.
type TimetableService struct {
	schedules scheduleDetailReader
	sections  sectionFinder
	faculty   facultyFinder
	rooms     roomFinder
	cache     *CacheService
	cacheTTL  time.Duration
	renderers map[string]SheetRenderer
	logger    *zap.Logger
}

// NewTimetableService constructs the service with CSV and PDF renderers.
func NewTimetableService(schedules scheduleDetailReader, sections sectionFinder, faculty facultyFinder, rooms roomFinder, cacheSvc *CacheService, cacheTTL time.Duration, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		schedules: schedules,
		sections:  sections,
		faculty:   faculty,
		rooms:     rooms,
		cache:     cacheSvc,
		cacheTTL:  cacheTTL,
		renderers: map[string]SheetRenderer{
			dto.ExportFormatCSV: export.NewCSVExporter(),
			dto.ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
	}
}

// TimetableCacheKey returns the cache key of a rendered grid.
func TimetableCacheKey(kind models.SubjectKind, subjectID string) string {
	return cache.Key("timetable", string(kind), subjectID)
}

// Grid returns the rendered grid for the subject, served from cache when possible.
func (s *TimetableService) Grid(ctx context.Context, kind, subjectID string) (*dto.TimetableResponse, error) {
	subject := models.SubjectKind(strings.ToLower(kind))
	if !subject.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be one of section, faculty, room")
	}
	if strings.TrimSpace(subjectID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}

	key := TimetableCacheKey(subject, subjectID)
	var cached dto.TimetableResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	title, err := s.title(ctx, subject, subjectID)
	if err != nil {
		return nil, err
	}
	details, err := s.schedules.ListDetails(ctx, subject, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}
	grid := scheduling.BuildGrid(details)
	if len(grid.Unplaced) > 0 {
		s.logger.Debug("timetable entries left off grid",
			zap.String("kind", string(subject)),
			zap.String("subject_id", subjectID),
			zap.Int("count", len(grid.Unplaced)),
		)
	}

	resp := &dto.TimetableResponse{Kind: string(subject), SubjectID: subjectID, Title: title, Grid: grid}
	s.cache.Set(ctx, key, resp, s.cacheTTL)
	return resp, nil
}

// Export renders the grid as a downloadable file.
func (s *TimetableService) Export(ctx context.Context, kind, subjectID, format string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = dto.ExportFormatPDF
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}

	timetable, err := s.Grid(ctx, kind, subjectID)
	if err != nil {
		return nil, err
	}
	body, err := renderer.Render(SheetFromGrid(timetable.Title, timetable.Kind, timetable.Grid))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	contentType := "text/csv"
	if format == dto.ExportFormatPDF {
		contentType = "application/pdf"
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("timetable-%s-%s.%s", timetable.Kind, timetable.SubjectID, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// Invalidate drops every cached grid showing any of the given schedules.
func (s *TimetableService) Invalidate(ctx context.Context, schedules ...models.Schedule) {
	seen := make(map[string]bool)
	var keys []string
	for _, item := range schedules {
		for _, kind := range []models.SubjectKind{models.SubjectSection, models.SubjectFaculty, models.SubjectRoom} {
			id := item.SubjectID(kind)
			if id == "" {
				continue
			}
			key := TimetableCacheKey(kind, id)
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	s.cache.Invalidate(ctx, keys...)
}

func (s *TimetableService) title(ctx context.Context, kind models.SubjectKind, id string) (string, error) {
	switch kind {
	case models.SubjectSection:
		section, err := s.sections.FindByID(ctx, id)
		if err != nil {
			return "", notFoundOr(err, "section not found", "failed to load section")
		}
		return "Section " + section.Name, nil
	case models.SubjectFaculty:
		member, err := s.faculty.FindByID(ctx, id)
		if err != nil {
			return "", notFoundOr(err, "faculty not found", "failed to load faculty")
		}
		return member.FullName(), nil
	default:
		room, err := s.rooms.FindByID(ctx, id)
		if err != nil {
			return "", notFoundOr(err, "room not found", "failed to load room")
		}
		return "Room " + room.Name, nil
	}
}

// SheetFromGrid flattens a grid into the printable sheet layout.
func SheetFromGrid(title, subtitle string, grid scheduling.Grid) export.Sheet {
	sheet := export.Sheet{
		Title:    title,
		Subtitle: strings.ToUpper(subtitle) + " TIMETABLE",
		Days:     grid.Days[:],
		Rows:     make([]export.SheetRow, 0, len(grid.Rows)),
	}
	for _, row := range grid.Rows {
		out := export.SheetRow{Time: row.Time, Cells: make([]export.SheetCell, len(row.Cells))}
		for day, cell := range row.Cells {
			switch cell.State {
			case scheduling.CellSkip:
				out.Cells[day] = export.SheetCell{Skip: true}
			case scheduling.CellBlock:
				out.Cells[day] = export.SheetCell{
					Lines:   blockLines(cell.Block),
					Color:   cell.Block.Color,
					Rowspan: cell.Rowspan,
				}
			}
		}
		sheet.Rows = append(sheet.Rows, out)
	}
	return sheet
}

func blockLines(block *scheduling.GridBlock) []string {
	lines := []string{block.CourseCode}
	for _, extra := range []string{block.SectionName, block.FacultyName, block.RoomName} {
		if extra != "" {
			lines = append(lines, extra)
		}
	}
	return append(lines, block.StartTime+"-"+block.EndTime)
}
