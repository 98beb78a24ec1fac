package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
)

const sectionColumns = "id, name, curriculum_id, year_level, semester, required_units, max_students, schedule_status, created_at, updated_at"

// SectionRepository reads sections and records their schedule status.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByID loads a section by id.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf("SELECT %s FROM sections WHERE id = $1", sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// UpdateScheduleStatus stores the completeness flag. A missing section yields sql.ErrNoRows.
func (r *SectionRepository) UpdateScheduleStatus(ctx context.Context, id string, status models.SectionScheduleStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sections SET schedule_status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update section schedule status: %w", err)
	}
	return expectAffected(res, "update section schedule status")
}
