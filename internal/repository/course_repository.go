package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
)

const courseColumns = "id, curriculum_id, course_code, descriptive_title, lecture_hours, laboratory_hours, credit_units, year_level, semester, COALESCE(NULLIF(color, ''), '" + models.DefaultCourseColor + "') AS color, created_at, updated_at"

// CourseRepository reads curriculum courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID loads a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListRequirements returns the courses a section must take for its curriculum, year and semester.
func (r *CourseRepository) ListRequirements(ctx context.Context, curriculumID string, yearLevel, semester int) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE curriculum_id = $1 AND year_level = $2 AND semester = $3 ORDER BY course_code ASC", courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, curriculumID, yearLevel, semester); err != nil {
		return nil, fmt.Errorf("list course requirements: %w", err)
	}
	return courses, nil
}
