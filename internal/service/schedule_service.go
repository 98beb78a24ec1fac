package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	FindConflicts(ctx context.Context, day int, kind models.SubjectKind, subjectID string, window scheduling.TimeRange) ([]models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

// TimetableInvalidator drops cached grids touched by schedule writes.
type TimetableInvalidator interface {
	Invalidate(ctx context.Context, schedules ...models.Schedule)
}

// ScheduleService validates and persists individual schedule entries.
type ScheduleService struct {
	repo        scheduleRepository
	checker     *scheduling.ConflictChecker
	locker      *scheduling.KeyLocker
	policy      scheduling.ConflictPolicy
	invalidator TimetableInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScheduleService instantiates ScheduleService. The locker should be shared with the
// generator so manual edits and generation runs serialise on the same keys.
func NewScheduleService(repo scheduleRepository, locker *scheduling.KeyLocker, policy scheduling.ConflictPolicy, invalidator TimetableInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if locker == nil {
		locker = scheduling.NewKeyLocker()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		repo:        repo,
		checker:     scheduling.NewConflictChecker(repo),
		locker:      locker,
		policy:      policy,
		invalidator: invalidator,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// List returns schedules with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return schedules, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a schedule by id.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "schedule not found", "failed to load schedule")
	}
	return schedule, nil
}

// Check dry-runs a candidate and never writes.
func (s *ScheduleService) Check(ctx context.Context, req dto.CheckScheduleRequest, override dto.PolicyOverride) (*dto.CheckScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	candidate := candidateFrom(req.ScheduleRequest)
	candidate.ID = req.ScheduleID

	report, err := s.checker.Check(ctx, candidate, s.resolvePolicy(override))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflicts")
	}
	s.recordConflicts(report)
	return &dto.CheckScheduleResponse{
		Valid:    !report.HasErrors(),
		Errors:   nonNil(report.Errors),
		Warnings: nonNil(report.Warnings),
	}, nil
}

// Create persists a new schedule when no blocking conflict exists.
func (s *ScheduleService) Create(ctx context.Context, req dto.ScheduleRequest, override dto.PolicyOverride) (*dto.ScheduleResponse, error) {
	candidate, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(scheduling.LockKeys(candidate)...)
	defer unlock()

	report, err := s.guard(ctx, candidate, override)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.invalidate(ctx, candidate)

	s.logger.Info("schedule created",
		zap.String("schedule_id", candidate.ID),
		zap.String("section_id", candidate.SectionID),
		zap.Int("warnings", len(report.Warnings)),
	)
	return &dto.ScheduleResponse{Schedule: candidate, Warnings: nonNil(report.Warnings)}, nil
}

// Update replaces an existing schedule. The entry is never compared against itself.
func (s *ScheduleService) Update(ctx context.Context, id string, req dto.ScheduleRequest, override dto.PolicyOverride) (*dto.ScheduleResponse, error) {
	candidate, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "schedule not found", "failed to load schedule")
	}
	candidate.ID = existing.ID
	candidate.CreatedAt = existing.CreatedAt

	unlock := s.locker.Lock(append(scheduling.LockKeys(candidate), scheduling.LockKeys(*existing)...)...)
	defer unlock()

	report, err := s.guard(ctx, candidate, override)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &candidate); err != nil {
		return nil, notFoundOr(err, "schedule not found", "failed to update schedule")
	}
	s.invalidate(ctx, *existing, candidate)
	return &dto.ScheduleResponse{Schedule: candidate, Warnings: nonNil(report.Warnings)}, nil
}

// Delete removes a schedule entry.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "schedule not found", "failed to load schedule")
	}

	unlock := s.locker.Lock(scheduling.LockKeys(*existing)...)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "schedule not found", "failed to delete schedule")
	}
	s.invalidate(ctx, *existing)
	return nil
}

// prepare validates the payload and normalises the times. Malformed times are
// validation errors naming the field.
func (s *ScheduleService) prepare(req dto.ScheduleRequest) (models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Schedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	candidate := candidateFrom(req)

	start, err := scheduling.NormalizeTime(req.StartTime)
	if err != nil {
		return models.Schedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start_time is malformed").WithField("start_time")
	}
	end, err := scheduling.NormalizeTime(req.EndTime)
	if err != nil {
		return models.Schedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "end_time is malformed").WithField("end_time")
	}
	candidate.StartTime = start
	candidate.EndTime = end
	duration, err := scheduling.Duration(start, end)
	if err != nil {
		return models.Schedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time range")
	}
	candidate.Duration = duration
	return candidate, nil
}

// guard runs the conflict check and converts blocking results into API errors.
func (s *ScheduleService) guard(ctx context.Context, candidate models.Schedule, override dto.PolicyOverride) (scheduling.ConflictReport, error) {
	report, err := s.checker.Check(ctx, candidate, s.resolvePolicy(override))
	if err != nil {
		return report, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflicts")
	}
	s.recordConflicts(report)
	if report.HasErrors() {
		return report, conflictError(report)
	}
	return report, nil
}

func (s *ScheduleService) resolvePolicy(override dto.PolicyOverride) scheduling.ConflictPolicy {
	policy := s.policy
	if override.EscalateFaculty != nil {
		policy.EscalateFaculty = *override.EscalateFaculty
	}
	if override.EscalateRoom != nil {
		policy.EscalateRoom = *override.EscalateRoom
	}
	return policy
}

func (s *ScheduleService) recordConflicts(report scheduling.ConflictReport) {
	for _, item := range report.Errors {
		s.metrics.RecordConflict(item.Kind, true)
	}
	for _, item := range report.Warnings {
		s.metrics.RecordConflict(item.Kind, false)
	}
}

func (s *ScheduleService) invalidate(ctx context.Context, schedules ...models.Schedule) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.Invalidate(ctx, schedules...)
}

func candidateFrom(req dto.ScheduleRequest) models.Schedule {
	candidate := models.Schedule{
		CourseID:  req.CourseID,
		SectionID: req.SectionID,
		FacultyID: req.FacultyID,
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if req.Day != nil {
		candidate.Day = *req.Day
	}
	return candidate
}

// conflictError maps a blocking report: problems with the range itself are validation
// errors, collisions are conflicts. Both carry the full report.
func conflictError(report scheduling.ConflictReport) error {
	domainErr := &models.ScheduleConflictError{
		Message:  "schedule has blocking conflicts",
		Errors:   report.Errors,
		Warnings: report.Warnings,
	}
	for _, kind := range []scheduling.ConflictKind{scheduling.ConflictMalformedTime, scheduling.ConflictInvalidRange, scheduling.ConflictWindow} {
		for _, item := range report.Errors {
			if item.Kind == string(kind) {
				return appErrors.Wrap(domainErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, item.Message)
			}
		}
	}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("schedule conflict: %s", report.Errors[0].Message))
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}

func nonNil(items []models.ScheduleConflict) []models.ScheduleConflict {
	if items == nil {
		return []models.ScheduleConflict{}
	}
	return items
}
