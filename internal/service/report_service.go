package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
	"github.com/ecolehub/school-admin-api/pkg/export"
	"github.com/ecolehub/school-admin-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type reportStudentSource interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type reportAttendanceSource interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
}

type reportFinanceSource interface {
	ListPayments(ctx context.Context, filter models.FinanceFilter) ([]models.Payment, int, error)
}

// ExportRequest selects what to render and how.
type ExportRequest struct {
	Type    models.ReportType   `json:"type"`
	Format  models.ReportFormat `json:"format"`
	ClassID string              `json:"class_id"`
}

// ReportDownload bundles the resolved file for streaming.
type ReportDownload struct {
	File     *os.File
	Filename string
	Format   models.ReportFormat
}

// ReportService renders administrative datasets into downloadable CSV
// and PDF files with signed, expiring download tokens.
type ReportService struct {
	students   reportStudentSource
	attendance reportAttendanceSource
	finance    reportFinanceSource
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	resultTTL  time.Duration
}

// NewReportService constructs the report service.
func NewReportService(students reportStudentSource, attendance reportAttendanceSource, finance reportFinanceSource, store fileStorage, signer *storage.SignedURLSigner, resultTTL time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resultTTL <= 0 {
		resultTTL = 24 * time.Hour
	}
	return &ReportService{
		students:   students,
		attendance: attendance,
		finance:    finance,
		storage:    store,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		signer:     signer,
		logger:     logger,
		resultTTL:  resultTTL,
	}
}

// Generate builds the requested dataset, renders it and stores the file.
func (s *ReportService) Generate(ctx context.Context, req ExportRequest) (*models.ReportExport, error) {
	if !req.Type.Valid() {
		return nil, appErrors.FieldViolation("type", "must be one of students, attendance, finance")
	}
	if !req.Format.Valid() {
		return nil, appErrors.FieldViolation("format", "must be csv or pdf")
	}

	dataset, title, err := s.buildDataset(ctx, req)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if req.Format == models.ReportFormatCSV {
		payload, err = s.csv.Render(*dataset)
	} else {
		payload, err = s.pdf.Render(*dataset, title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	reportID := uuid.NewString()
	filename := fmt.Sprintf("%s-%s.%s", req.Type, reportID, req.Format)
	if _, err := s.storage.Save(filename, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Generate(reportID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report url")
	}

	return &models.ReportExport{
		ID:        reportID,
		Type:      req.Type,
		Format:    req.Format,
		Filename:  filename,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ResolveDownload validates the signed token and opens the stored file.
func (s *ReportService) ResolveDownload(token string) (*ReportDownload, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report file not found")
	}
	format := models.ReportFormatCSV
	if len(relPath) > 4 && relPath[len(relPath)-4:] == ".pdf" {
		format = models.ReportFormatPDF
	}
	return &ReportDownload{File: file, Filename: relPath, Format: format}, nil
}

// Cleanup removes stored report files older than the result TTL.
func (s *ReportService) Cleanup() {
	removed, err := s.storage.CleanupOlderThan(s.resultTTL)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("report files cleaned up", zap.Int("count", len(removed)))
	}
}

// reportPageSize matches the repository page clamp; report builds walk
// pages until the reported total is reached so exports never truncate.
const reportPageSize = 100

func collectPages[T any](fetch func(page int) ([]T, int, error)) ([]T, error) {
	var out []T
	for page := 1; ; page++ {
		rows, total, err := fetch(page)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
		if len(rows) == 0 || len(out) >= total {
			return out, nil
		}
	}
}

func (s *ReportService) buildDataset(ctx context.Context, req ExportRequest) (*export.Dataset, string, error) {
	switch req.Type {
	case models.ReportTypeStudents:
		students, err := collectPages(func(page int) ([]models.Student, int, error) {
			return s.students.List(ctx, models.StudentFilter{ClassID: req.ClassID, Page: page, PageSize: reportPageSize})
		})
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for report")
		}
		dataset := &export.Dataset{
			Headers: []string{"ID", "Full Name", "Class", "Status", "Tuition Fee", "Paid", "Due"},
		}
		for _, st := range students {
			className := ""
			if st.ClassName != nil {
				className = *st.ClassName
			}
			dataset.Rows = append(dataset.Rows, []string{
				st.ID, st.FullName, className, string(st.Status),
				formatAmount(st.TuitionFee), formatAmount(st.PaidAmount), formatAmount(st.DueAmount),
			})
		}
		return dataset, "Student Roster", nil

	case models.ReportTypeAttendance:
		records, err := collectPages(func(page int) ([]models.AttendanceRecord, int, error) {
			return s.attendance.List(ctx, models.AttendanceFilter{ClassID: req.ClassID, Page: page, PageSize: reportPageSize})
		})
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance for report")
		}
		dataset := &export.Dataset{
			Headers: []string{"Date", "Student", "Class", "Status", "Marked By"},
		}
		for _, rec := range records {
			dataset.Rows = append(dataset.Rows, []string{
				rec.Date.Format("2006-01-02"), rec.StudentName, rec.ClassName, string(rec.Status), rec.MarkedBy,
			})
		}
		return dataset, "Attendance Report", nil

	default:
		payments, err := collectPages(func(page int) ([]models.Payment, int, error) {
			return s.finance.ListPayments(ctx, models.FinanceFilter{Page: page, PageSize: reportPageSize})
		})
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments for report")
		}
		dataset := &export.Dataset{
			Headers: []string{"ID", "Student", "Amount", "Date", "Method", "Status"},
		}
		for _, p := range payments {
			dataset.Rows = append(dataset.Rows, []string{
				p.ID, p.StudentName, formatAmount(p.Amount), p.Date.Format("2006-01-02"), p.Method, string(p.Status),
			})
		}
		return dataset, "Payments Report", nil
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
