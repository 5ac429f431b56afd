package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolehub/school-admin-api/internal/models"
	"github.com/ecolehub/school-admin-api/pkg/storage"
)

// pagedStudentSource serves a fixed roster through the same page clamp
// the repositories apply.
type pagedStudentSource struct {
	students []models.Student
	calls    int
}

func (m *pagedStudentSource) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.calls++
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 100
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * size
	if offset >= len(m.students) {
		return nil, len(m.students), nil
	}
	end := offset + size
	if end > len(m.students) {
		end = len(m.students)
	}
	return m.students[offset:end], len(m.students), nil
}

type emptyAttendanceSource struct{}

func (emptyAttendanceSource) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return nil, 0, nil
}

type emptyFinanceSource struct{}

func (emptyFinanceSource) ListPayments(ctx context.Context, filter models.FinanceFilter) ([]models.Payment, int, error) {
	return nil, 0, nil
}

// memoryStorage captures saved payloads without touching the filesystem.
type memoryStorage struct {
	files map[string][]byte
}

func (m *memoryStorage) Save(filename string, data []byte) (string, error) {
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[filename] = data
	return filename, nil
}

func (m *memoryStorage) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (m *memoryStorage) Delete(filename string) error { return nil }

func (m *memoryStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	return nil, nil
}

func newReportFixture(students []models.Student) (*ReportService, *pagedStudentSource, *memoryStorage) {
	source := &pagedStudentSource{students: students}
	store := &memoryStorage{}
	signer := storage.NewSignedURLSigner("report-test-secret", time.Hour)
	svc := NewReportService(source, emptyAttendanceSource{}, emptyFinanceSource{}, store, signer, time.Hour, nil)
	return svc, source, store
}

func rosterOf(n int) []models.Student {
	students := make([]models.Student, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, models.Student{
			ID:       fmt.Sprintf("stu-%03d", i),
			FullName: fmt.Sprintf("Student %03d", i),
			Status:   models.StudentStatusActive,
		})
	}
	return students
}

func TestReportServiceGenerateExportsEveryRow(t *testing.T) {
	svc, source, store := newReportFixture(rosterOf(150))

	report, err := svc.Generate(context.Background(), ExportRequest{
		Type:   models.ReportTypeStudents,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)
	require.NotEmpty(t, report.Token)

	payload, ok := store.files[report.Filename]
	require.True(t, ok)
	lines := strings.Split(strings.TrimRight(string(payload), "\n"), "\n")
	assert.Len(t, lines, 151)
	assert.GreaterOrEqual(t, source.calls, 2)
	assert.Contains(t, string(payload), "Student 149")
}

func TestReportServiceGenerateEmptyRoster(t *testing.T) {
	svc, _, store := newReportFixture(nil)

	report, err := svc.Generate(context.Background(), ExportRequest{
		Type:   models.ReportTypeStudents,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)

	payload := store.files[report.Filename]
	lines := strings.Split(strings.TrimRight(string(payload), "\n"), "\n")
	assert.Len(t, lines, 1)
}

func TestReportServiceRejectsUnknownType(t *testing.T) {
	svc, _, _ := newReportFixture(nil)

	_, err := svc.Generate(context.Background(), ExportRequest{Type: "grades", Format: models.ReportFormatCSV})
	require.Error(t, err)
}
