package models

import (
	"database/sql/driver"
	"time"
)

// StudentStatus is the lifecycle state of a student record.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusInactive  StudentStatus = "inactive"
	StudentStatusSuspended StudentStatus = "suspended"
)

// Valid reports whether the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusSuspended:
		return true
	default:
		return false
	}
}

// AcademicYearRecord is one entry of a student's yearly academic history.
type AcademicYearRecord struct {
	Year       string  `json:"year"`
	GradeLevel string  `json:"grade_level"`
	Average    float64 `json:"average"`
	Rank       int     `json:"rank,omitempty"`
}

// AcademicHistory is stored as an ordered jsonb list.
type AcademicHistory []AcademicYearRecord

func (h AcademicHistory) Value() (driver.Value, error) { return jsonValue(h) }
func (h *AcademicHistory) Scan(src interface{}) error  { return jsonScan(src, h) }

// BehavioralRecord is one behavioural incident or remark. The list is
// append-only: entries are added through a dedicated operation and never
// edited in place.
type BehavioralRecord struct {
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	RecordedBy  string    `json:"recorded_by"`
}

// BehavioralRecords is stored as an ordered jsonb list.
type BehavioralRecords []BehavioralRecord

func (r BehavioralRecords) Value() (driver.Value, error) { return jsonValue(r) }
func (r *BehavioralRecords) Scan(src interface{}) error  { return jsonScan(src, r) }

// TuitionPayment is one entry of a student's tuition payment history.
type TuitionPayment struct {
	Date      time.Time `json:"date"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
}

// TuitionPayments is stored as an ordered jsonb list.
type TuitionPayments []TuitionPayment

func (p TuitionPayments) Value() (driver.Value, error) { return jsonValue(p) }
func (p *TuitionPayments) Scan(src interface{}) error  { return jsonScan(src, p) }

// Student represents a persisted student row. ClassName is a denormalized
// copy of the class name, refreshed whenever the class reference changes.
// The financial columns obey paid + due == tuition fee.
type Student struct {
	ID            string        `db:"id" json:"id"`
	FullName      string        `db:"full_name" json:"full_name"`
	ClassID       *string       `db:"class_id" json:"class_id,omitempty"`
	ClassName     *string       `db:"class_name" json:"class_name,omitempty"`
	Status        StudentStatus `db:"status" json:"status"`
	BirthDate     time.Time     `db:"birth_date" json:"birth_date"`
	Email         string        `db:"email" json:"email"`
	Phone         string        `db:"phone" json:"phone"`
	Address       string        `db:"address" json:"address"`
	GuardianName  string        `db:"guardian_name" json:"guardian_name"`
	GuardianPhone string        `db:"guardian_phone" json:"guardian_phone"`

	TuitionFee     float64         `db:"tuition_fee" json:"tuition_fee"`
	PaidAmount     float64         `db:"paid_amount" json:"paid_amount"`
	DueAmount      float64         `db:"due_amount" json:"due_amount"`
	PaymentHistory TuitionPayments `db:"payment_history" json:"payment_history,omitempty"`

	AcademicHistory   AcademicHistory   `db:"academic_history" json:"academic_history,omitempty"`
	BehavioralRecords BehavioralRecords `db:"behavioral_records" json:"behavioral_records,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering criteria for listing students. Zero
// values mean "all"; search matches name and class name.
type StudentFilter struct {
	Search    string
	ClassID   string
	Status    *StudentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
