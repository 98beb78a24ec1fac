package dto

import "github.com/noah-isme/assist-scheduler-api/internal/models"

// GenerateScheduleRequest controls an auto-scheduler run for a section.
type GenerateScheduleRequest struct {
	ClearExisting bool `json:"clear_existing"`
	MaxAttempts   int  `json:"max_attempts" validate:"omitempty,min=1,max=1000"`
}

// UpdateScheduleStatusRequest sets the section's completeness flag by hand.
type UpdateScheduleStatusRequest struct {
	Status models.SectionScheduleStatus `json:"status" validate:"required,oneof=INCOMPLETE COMPLETE"`
}
