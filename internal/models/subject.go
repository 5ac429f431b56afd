package models

import "time"

// Subject represents a taught subject.
type Subject struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Code       string    `db:"code" json:"code"`
	Department string    `db:"department" json:"department"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures filtering criteria for listing subjects.
type SubjectFilter struct {
	Search     string
	Department string
	Page       int
	PageSize   int
}
