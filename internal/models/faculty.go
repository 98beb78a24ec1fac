package models

import (
	"time"

	"github.com/lib/pq"
)

// Faculty is a teaching staff member.
type Faculty struct {
	ID              string         `db:"id" json:"id"`
	FirstName       string         `db:"first_name" json:"first_name"`
	LastName        string         `db:"last_name" json:"last_name"`
	Email           string         `db:"email" json:"email"`
	Department      string         `db:"department" json:"department"`
	Specializations pq.StringArray `db:"specializations" json:"specializations"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// FullName renders "Last, First" as used on printed timetables.
func (f Faculty) FullName() string {
	if f.FirstName == "" {
		return f.LastName
	}
	return f.LastName + ", " + f.FirstName
}
