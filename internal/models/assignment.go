package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// AssignmentStatus is the stored lifecycle state of an assignment.
// "overdue" is intentionally absent: it is derived from the due moment
// and the clock at read time, never persisted.
type AssignmentStatus string

const (
	AssignmentStatusDraft     AssignmentStatus = "draft"
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusSubmitted AssignmentStatus = "submitted"
	AssignmentStatusGraded    AssignmentStatus = "graded"
)

// Valid reports whether the status is a supported value.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusDraft, AssignmentStatusAssigned, AssignmentStatusSubmitted, AssignmentStatusGraded:
		return true
	default:
		return false
	}
}

// SubmissionType describes how students hand work in.
type SubmissionType string

const (
	SubmissionOnline  SubmissionType = "online"
	SubmissionOffline SubmissionType = "offline"
	SubmissionBoth    SubmissionType = "both"
)

// Valid reports whether the submission type is a supported value.
func (t SubmissionType) Valid() bool {
	switch t {
	case SubmissionOnline, SubmissionOffline, SubmissionBoth:
		return true
	default:
		return false
	}
}

// Assignment represents a persisted assignment row. The subject, teacher
// and class names are denormalized copies refreshed from the referenced
// resource whenever the reference is set or changed.
type Assignment struct {
	ID           string `db:"id" json:"id"`
	Title        string `db:"title" json:"title"`
	Description  string `db:"description" json:"description"`
	Instructions string `db:"instructions" json:"instructions"`

	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	ClassID     string `db:"class_id" json:"class_id"`
	ClassName   string `db:"class_name" json:"class_name"`

	AssignedDate time.Time `db:"assigned_date" json:"assigned_date"`
	DueDate      time.Time `db:"due_date" json:"due_date"`
	DueTime      string    `db:"due_time" json:"due_time"`

	TotalMarks          float64          `db:"total_marks" json:"total_marks"`
	Attachments         pq.StringArray   `db:"attachments" json:"attachments"`
	Status              AssignmentStatus `db:"status" json:"status"`
	Priority            Priority         `db:"priority" json:"priority"`
	SubmissionType      SubmissionType   `db:"submission_type" json:"submission_type"`
	AllowLateSubmission bool             `db:"allow_late_submission" json:"allow_late_submission"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DueAt combines the due date and HH:MM due time into one UTC instant.
func (a Assignment) DueAt() (time.Time, error) {
	t, err := time.Parse("15:04", a.DueTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse due time %q: %w", a.DueTime, err)
	}
	d := a.DueDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// OverdueAt derives the overdue flag at the given moment. Draft and
// graded assignments are never overdue.
func (a Assignment) OverdueAt(now time.Time) bool {
	if a.Status != AssignmentStatusAssigned && a.Status != AssignmentStatusSubmitted {
		return false
	}
	due, err := a.DueAt()
	if err != nil {
		return false
	}
	return now.After(due)
}

// AssignmentView is the read representation including the derived flag.
type AssignmentView struct {
	Assignment
	Overdue bool `json:"overdue"`
}

// AssignmentFilter captures filtering criteria for listing assignments.
// Search matches title and description.
type AssignmentFilter struct {
	Search    string
	ClassID   string
	TeacherID string
	SubjectID string
	Status    *AssignmentStatus
	Priority  *Priority
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ResultStatus is the grading state of one assignment result.
type ResultStatus string

const (
	ResultStatusGraded  ResultStatus = "graded"
	ResultStatusPending ResultStatus = "pending"
	ResultStatusAbsent  ResultStatus = "absent"
)

// Valid reports whether the status is a supported value.
func (s ResultStatus) Valid() bool {
	switch s {
	case ResultStatusGraded, ResultStatusPending, ResultStatusAbsent:
		return true
	default:
		return false
	}
}

// AssignmentResult represents one student's result for one assignment.
// Exactly one row exists per (assignment, student); writes are upserts on
// that composite key. Percentage is always recomputed from grade and
// max grade, rounded to one decimal.
type AssignmentResult struct {
	ID           string       `db:"id" json:"id"`
	AssignmentID string       `db:"assignment_id" json:"assignment_id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	StudentName  string       `db:"student_name" json:"student_name"`
	Grade        float64      `db:"grade" json:"grade"`
	MaxGrade     float64      `db:"max_grade" json:"max_grade"`
	Percentage   float64      `db:"percentage" json:"percentage"`
	Status       ResultStatus `db:"status" json:"status"`
	Feedback     *string      `db:"feedback" json:"feedback,omitempty"`
	GradedBy     string       `db:"graded_by" json:"graded_by"`
	GradedAt     time.Time    `db:"graded_at" json:"graded_at"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// AssignmentResultStats summarises graded results for one assignment.
// All values are zero when no graded result exists.
type AssignmentResultStats struct {
	GradedCount       int     `json:"graded_count"`
	AverageGrade      float64 `json:"average_grade"`
	AveragePercentage float64 `json:"average_percentage"`
	HighestGrade      float64 `json:"highest_grade"`
	LowestGrade       float64 `json:"lowest_grade"`
}
