package models

import "time"

// ScheduleType categorises schedule entries.
type ScheduleType string

const (
	ScheduleTypeClass   ScheduleType = "class"
	ScheduleTypeExam    ScheduleType = "exam"
	ScheduleTypeEvent   ScheduleType = "event"
	ScheduleTypeTeacher ScheduleType = "teacher"
	ScheduleTypeStudent ScheduleType = "student"
)

// Valid reports whether the type is a supported value.
func (t ScheduleType) Valid() bool {
	switch t {
	case ScheduleTypeClass, ScheduleTypeExam, ScheduleTypeEvent, ScheduleTypeTeacher, ScheduleTypeStudent:
		return true
	default:
		return false
	}
}

// Recurrence describes how often a schedule entry repeats.
type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceNone    Recurrence = "none"
)

// Valid reports whether the recurrence is a supported value.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceNone:
		return true
	default:
		return false
	}
}

// ScheduleStatus is the lifecycle state of a schedule entry.
type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "active"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
	ScheduleStatusCompleted ScheduleStatus = "completed"
)

// Valid reports whether the status is a supported value.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusActive, ScheduleStatusCancelled, ScheduleStatusCompleted:
		return true
	default:
		return false
	}
}

// Schedule represents a persisted schedule row. End date/time must be
// after the start.
type Schedule struct {
	ID         string         `db:"id" json:"id"`
	Title      string         `db:"title" json:"title"`
	Type       ScheduleType   `db:"type" json:"type"`
	StartDate  time.Time      `db:"start_date" json:"start_date"`
	EndDate    time.Time      `db:"end_date" json:"end_date"`
	DayOfWeek  string         `db:"day_of_week" json:"day_of_week"`
	StartTime  string         `db:"start_time" json:"start_time"`
	EndTime    string         `db:"end_time" json:"end_time"`
	Recurrence Recurrence     `db:"recurrence" json:"recurrence"`
	Location   string         `db:"location" json:"location"`
	Status     ScheduleStatus `db:"status" json:"status"`
	ClassID    *string        `db:"class_id" json:"class_id,omitempty"`
	TeacherID  *string        `db:"teacher_id" json:"teacher_id,omitempty"`
	SubjectID  *string        `db:"subject_id" json:"subject_id,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter captures filtering criteria for listing schedules.
type ScheduleFilter struct {
	Search    string
	Type      *ScheduleType
	Status    *ScheduleStatus
	ClassID   string
	TeacherID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}
