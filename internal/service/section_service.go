package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
)

type sectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
	UpdateScheduleStatus(ctx context.Context, id string, status models.SectionScheduleStatus) error
}

// SectionService exposes section lookups and the manual schedule status toggle.
type SectionService struct {
	repo      sectionRepository
	validator *validator.Validate
}

// NewSectionService constructs the service.
func NewSectionService(repo sectionRepository, validate *validator.Validate) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	return &SectionService{repo: repo, validator: validate}
}

// Get returns a section by id.
func (s *SectionService) Get(ctx context.Context, id string) (*models.Section, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section id is required")
	}
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "section not found", "failed to load section")
	}
	return section, nil
}

// SetScheduleStatus overrides the computed completeness flag.
func (s *SectionService) SetScheduleStatus(ctx context.Context, id string, req dto.UpdateScheduleStatusRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if err := s.repo.UpdateScheduleStatus(ctx, id, req.Status); err != nil {
		return nil, notFoundOr(err, "section not found", "failed to update section schedule status")
	}
	return s.Get(ctx, id)
}
