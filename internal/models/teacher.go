package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// TeacherStatus is the lifecycle state of a teacher record.
type TeacherStatus string

const (
	TeacherStatusActive   TeacherStatus = "active"
	TeacherStatusInactive TeacherStatus = "inactive"
	TeacherStatusOnLeave  TeacherStatus = "on_leave"
)

// Valid reports whether the status is a supported value.
func (s TeacherStatus) Valid() bool {
	switch s {
	case TeacherStatusActive, TeacherStatusInactive, TeacherStatusOnLeave:
		return true
	default:
		return false
	}
}

// SalaryPayment is one entry of a teacher's salary payment history.
type SalaryPayment struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Period string    `json:"period"`
}

// SalaryPayments is stored as an ordered jsonb list.
type SalaryPayments []SalaryPayment

func (p SalaryPayments) Value() (driver.Value, error) { return jsonValue(p) }
func (p *SalaryPayments) Scan(src interface{}) error  { return jsonScan(src, p) }

// Teacher represents a persisted teacher row.
type Teacher struct {
	ID         string        `db:"id" json:"id"`
	FullName   string        `db:"full_name" json:"full_name"`
	Subject    string        `db:"subject" json:"subject"`
	Department string        `db:"department" json:"department"`
	Status     TeacherStatus `db:"status" json:"status"`
	BirthDate  time.Time     `db:"birth_date" json:"birth_date"`
	Email      string        `db:"email" json:"email"`
	Phone      string        `db:"phone" json:"phone"`
	Address    string        `db:"address" json:"address"`

	Qualifications pq.StringArray `db:"qualifications" json:"qualifications"`
	Certifications pq.StringArray `db:"certifications" json:"certifications"`

	Salary         float64        `db:"salary" json:"salary"`
	PaymentHistory SalaryPayments `db:"payment_history" json:"payment_history,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherDetail extends the teacher row with classes assigned, resolved by
// join at read time rather than cached on the row.
type TeacherDetail struct {
	Teacher
	ClassesAssigned pq.StringArray `db:"classes_assigned" json:"classes_assigned"`
}

// TeacherFilter captures filtering criteria for listing teachers. Search
// matches name and subject.
type TeacherFilter struct {
	Search     string
	Department string
	Status     *TeacherStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
