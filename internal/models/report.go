package models

import "time"

// ReportType selects which dataset a report export covers.
type ReportType string

const (
	ReportTypeStudents   ReportType = "students"
	ReportTypeAttendance ReportType = "attendance"
	ReportTypeFinance    ReportType = "finance"
)

// Valid reports whether the type is a supported value.
func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeStudents, ReportTypeAttendance, ReportTypeFinance:
		return true
	default:
		return false
	}
}

// ReportFormat selects the rendered file format.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid reports whether the format is a supported value.
func (f ReportFormat) Valid() bool {
	switch f {
	case ReportFormatCSV, ReportFormatPDF:
		return true
	default:
		return false
	}
}

// ReportExport describes a generated report file and its signed download
// token.
type ReportExport struct {
	ID        string       `json:"id"`
	Type      ReportType   `json:"type"`
	Format    ReportFormat `json:"format"`
	Filename  string       `json:"filename"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	CreatedAt time.Time    `json:"created_at"`
}
