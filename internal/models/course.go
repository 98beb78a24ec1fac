package models

import "time"

// DefaultCourseColor is used for timetable blocks when a course has no colour set.
const DefaultCourseColor = "#FFA726"

// Course is a curriculum course and the weekly hours it needs.
type Course struct {
	ID               string    `db:"id" json:"id"`
	CurriculumID     string    `db:"curriculum_id" json:"curriculum_id"`
	CourseCode       string    `db:"course_code" json:"course_code"`
	DescriptiveTitle string    `db:"descriptive_title" json:"descriptive_title"`
	LectureHours     int       `db:"lecture_hours" json:"lecture_hours"`
	LaboratoryHours  int       `db:"laboratory_hours" json:"laboratory_hours"`
	CreditUnits      int       `db:"credit_units" json:"credit_units"`
	YearLevel        int       `db:"year_level" json:"year_level"`
	Semester         int       `db:"semester" json:"semester"`
	Color            string    `db:"color" json:"color"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
