package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid reports whether the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// AttendanceRecord represents a single daily attendance row. MarkedBy and
// MarkedAt are stamped once at creation and never updated afterwards.
// At most one record exists per (student, date).
type AttendanceRecord struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	StudentName string           `db:"student_name" json:"student_name"`
	ClassID     string           `db:"class_id" json:"class_id"`
	ClassName   string           `db:"class_name" json:"class_name"`
	Date        time.Time        `db:"date" json:"date"`
	Status      AttendanceStatus `db:"status" json:"status"`
	TimeIn      *string          `db:"time_in" json:"time_in,omitempty"`
	TimeOut     *string          `db:"time_out" json:"time_out,omitempty"`
	Notes       *string          `db:"notes" json:"notes,omitempty"`
	MarkedBy    string           `db:"marked_by" json:"marked_by"`
	MarkedAt    time.Time        `db:"marked_at" json:"marked_at"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter captures filtering criteria for listing attendance.
type AttendanceFilter struct {
	ClassID   string
	StudentID string
	Status    *AttendanceStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AttendanceStatusCount pairs one status with its record count.
type AttendanceStatusCount struct {
	Status AttendanceStatus `db:"status"`
	Count  int              `db:"cnt"`
}

// AttendanceStats summarises per-status rates over a set of records.
// Rates are integer percentages rounded to the nearest whole number.
type AttendanceStats struct {
	Total        int `json:"total"`
	PresentCount int `json:"present_count"`
	AbsentCount  int `json:"absent_count"`
	LateCount    int `json:"late_count"`
	ExcusedCount int `json:"excused_count"`
	PresentRate  int `json:"present_rate"`
	AbsentRate   int `json:"absent_rate"`
	LateRate     int `json:"late_rate"`
	ExcusedRate  int `json:"excused_rate"`
}
