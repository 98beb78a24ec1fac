package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
)

type generatorSectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
	UpdateScheduleStatus(ctx context.Context, id string, status models.SectionScheduleStatus) error
}

type courseRequirementReader interface {
	ListRequirements(ctx context.Context, curriculumID string, yearLevel, semester int) ([]models.Course, error)
}

type facultyLister interface {
	List(ctx context.Context) ([]models.Faculty, error)
}

type roomLister interface {
	List(ctx context.Context) ([]models.Room, error)
}

type generatorScheduleStore interface {
	scheduling.ScheduleStore
	ListBySection(ctx context.Context, sectionID string) ([]models.Schedule, error)
}

// Generation outcomes recorded in metrics.
const (
	GenerationComplete   = "complete"
	GenerationIncomplete = "incomplete"
	GenerationAborted    = "aborted"
	GenerationFailed     = "failed"
)

// ScheduleGeneratorService runs the auto-scheduler for a section and persists the outcome.
type ScheduleGeneratorService struct {
	sections    generatorSectionRepository
	courses     courseRequirementReader
	faculty     facultyLister
	rooms       roomLister
	schedules   generatorScheduleStore
	scheduler   *scheduling.AutoScheduler
	invalidator TimetableInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScheduleGeneratorService wires the generator dependencies.
func NewScheduleGeneratorService(
	sections generatorSectionRepository,
	courses courseRequirementReader,
	faculty facultyLister,
	rooms roomLister,
	schedules generatorScheduleStore,
	picker scheduling.SlotPicker,
	locker *scheduling.KeyLocker,
	maxAttempts int,
	invalidator TimetableInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGeneratorService{
		sections:    sections,
		courses:     courses,
		faculty:     faculty,
		rooms:       rooms,
		schedules:   schedules,
		scheduler:   scheduling.NewAutoScheduler(schedules, picker, locker, maxAttempts),
		invalidator: invalidator,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Generate places every required session of the section and updates its schedule status.
// When a run stops early the partial result is returned together with the error.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, sectionID string, req dto.GenerateScheduleRequest) (*scheduling.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		return nil, notFoundOr(err, "section not found", "failed to load section")
	}
	input, err := s.loadInput(ctx, *section)
	if err != nil {
		return nil, err
	}
	input.ClearExisting = req.ClearExisting
	input.MaxAttempts = req.MaxAttempts

	start := time.Now()
	result, runErr := s.scheduler.Generate(ctx, input)
	elapsed := time.Since(start)

	touched := append([]models.Schedule(nil), result.Created...)
	if input.ClearExisting && result.Removed > 0 {
		touched = append(touched, input.Existing...)
	}
	if len(touched) > 0 && s.invalidator != nil {
		s.invalidator.Invalidate(ctx, touched...)
	}

	if runErr != nil {
		return result, s.stopped(ctx, *section, result, runErr, elapsed)
	}

	if err := s.sections.UpdateScheduleStatus(ctx, section.ID, result.Status); err != nil {
		return nil, notFoundOr(err, "section not found", "failed to update section schedule status")
	}

	outcome := strings.ToLower(string(result.Status))
	s.metrics.ObserveGeneration(outcome, len(result.Created), result.Unplaced(), elapsed)
	s.logger.Info("schedule generation finished",
		zap.String("section_id", section.ID),
		zap.String("status", string(result.Status)),
		zap.Int("placed", len(result.Created)),
		zap.Int("unplaced", result.Unplaced()),
		zap.Int("removed", result.Removed),
		zap.Duration("duration", elapsed),
	)
	return result, nil
}

// stopped records a run that ended early. Entries created before the failure stay
// persisted, so the section status is still brought in line with them and the
// partial result travels in the error details.
func (s *ScheduleGeneratorService) stopped(ctx context.Context, section models.Section, result *scheduling.Result, runErr error, elapsed time.Duration) error {
	outcome := GenerationFailed
	if errors.Is(runErr, scheduling.ErrNoRoomOfRequiredType) {
		outcome = GenerationAborted
	}
	s.metrics.ObserveGeneration(outcome, len(result.Created), result.Unplaced(), elapsed)
	s.logger.Warn("schedule generation stopped",
		zap.String("section_id", section.ID),
		zap.String("outcome", outcome),
		zap.Int("placed", len(result.Created)),
		zap.Int("removed", result.Removed),
		zap.Error(runErr),
	)

	if outcome == GenerationAborted {
		return appErrors.Wrap(runErr, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "no room of the required type exists").WithDetails(result)
	}

	if len(result.Created) > 0 || result.Removed > 0 {
		if err := s.sections.UpdateScheduleStatus(context.WithoutCancel(ctx), section.ID, result.Status); err != nil {
			s.logger.Error("failed to update section schedule status after partial run",
				zap.String("section_id", section.ID),
				zap.Error(err),
			)
		}
	}
	return appErrors.Wrap(runErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule generation failed").WithDetails(result)
}

func (s *ScheduleGeneratorService) loadInput(ctx context.Context, section models.Section) (scheduling.GenerateInput, error) {
	input := scheduling.GenerateInput{Section: section}
	var err error
	if input.Courses, err = s.courses.ListRequirements(ctx, section.CurriculumID, section.YearLevel, section.Semester); err != nil {
		return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course requirements")
	}
	if input.Faculty, err = s.faculty.List(ctx); err != nil {
		return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	if input.Rooms, err = s.rooms.List(ctx); err != nil {
		return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if input.Existing, err = s.schedules.ListBySection(ctx, section.ID); err != nil {
		return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing schedules")
	}
	return input, nil
}
