package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolehub/school-admin-api/internal/models"
)

func attendanceRows(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "student_id", "student_name", "class_id", "class_name", "date", "status",
		"time_in", "time_out", "notes", "marked_by", "marked_at", "created_at", "updated_at",
	}).AddRow("att-1", "stu-1", "Alice Martin", "cls-1", "Grade 7A", now, status,
		nil, nil, nil, "user-1", now, now, now)
}

func TestAttendanceRepositoryUpsertConflictsOnStudentAndDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(`INSERT INTO attendance_records (.+) ON CONFLICT \(student_id, date\) DO UPDATE`).
		WillReturnRows(attendanceRows("late"))

	stored, err := repo.Upsert(context.Background(), &models.AttendanceRecord{
		StudentID:   "stu-1",
		StudentName: "Alice Martin",
		ClassID:     "cls-1",
		ClassName:   "Grade 7A",
		Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:      models.AttendanceStatusLate,
		MarkedBy:    "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "att-1", stored.ID)
	assert.Equal(t, models.AttendanceStatusLate, stored.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryStatusCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"status", "cnt"}).
		AddRow("present", 2).
		AddRow("late", 1).
		AddRow("absent", 1).
		AddRow("excused", 1)
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS cnt FROM attendance_records WHERE 1=1 AND class_id = \$1 GROUP BY status`).
		WithArgs("cls-1").
		WillReturnRows(rows)

	counts, err := repo.StatusCounts(context.Background(), models.AttendanceFilter{ClassID: "cls-1"})
	require.NoError(t, err)
	require.Len(t, counts, 4)
	assert.Equal(t, models.AttendanceStatusPresent, counts[0].Status)
	assert.Equal(t, 2, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
