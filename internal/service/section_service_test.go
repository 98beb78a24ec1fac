package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
)

func TestSectionServiceSetScheduleStatus(t *testing.T) {
	repo := &sectionRepoStub{sections: map[string]*models.Section{
		"sec-1": {ID: "sec-1", Name: "BSIT 2A", ScheduleStatus: models.SectionScheduleIncomplete},
	}}
	svc := NewSectionService(repo, nil)

	section, err := svc.SetScheduleStatus(context.Background(), "sec-1", dto.UpdateScheduleStatusRequest{Status: models.SectionScheduleComplete})
	require.NoError(t, err)
	assert.Equal(t, models.SectionScheduleComplete, section.ScheduleStatus)

	_, err = svc.SetScheduleStatus(context.Background(), "sec-1", dto.UpdateScheduleStatusRequest{Status: "DONE"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.SetScheduleStatus(context.Background(), "missing", dto.UpdateScheduleStatusRequest{Status: models.SectionScheduleComplete})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSectionServiceGet(t *testing.T) {
	svc := NewSectionService(&sectionRepoStub{sections: map[string]*models.Section{"sec-1": {ID: "sec-1"}}}, nil)

	section, err := svc.Get(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Equal(t, "sec-1", section.ID)

	_, err = svc.Get(context.Background(), " ")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
