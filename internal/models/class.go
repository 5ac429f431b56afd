package models

import "time"

// Class represents a class (homeroom group) such as "10A".
type Class struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	GradeLevel        string    `db:"grade_level" json:"grade_level"`
	HomeroomTeacherID *string   `db:"homeroom_teacher_id" json:"homeroom_teacher_id,omitempty"`
	Capacity          int       `db:"capacity" json:"capacity"`
	Active            bool      `db:"active" json:"active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter captures filtering criteria for listing classes.
type ClassFilter struct {
	Search     string
	GradeLevel string
	Active     *bool
	Page       int
	PageSize   int
}
