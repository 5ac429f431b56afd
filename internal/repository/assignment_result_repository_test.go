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

func resultRows(grade, maxGrade, percentage float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "assignment_id", "student_id", "student_name", "grade", "max_grade", "percentage",
		"status", "feedback", "graded_by", "graded_at", "created_at", "updated_at",
	}).AddRow("res-1", "asg-1", "stu-1", "Alice Martin", grade, maxGrade, percentage,
		"graded", nil, "user-1", now, now, now)
}

func TestAssignmentResultRepositoryUpsertReturnsStoredRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentResultRepository(db)

	mock.ExpectQuery(`INSERT INTO assignment_results (.+) ON CONFLICT \(assignment_id, student_id\) DO UPDATE`).
		WillReturnRows(resultRows(18, 20, 90.0))

	stored, err := repo.Upsert(context.Background(), &models.AssignmentResult{
		AssignmentID: "asg-1",
		StudentID:    "stu-1",
		StudentName:  "Alice Martin",
		Grade:        18,
		MaxGrade:     20,
		Percentage:   90.0,
		Status:       models.ResultStatusGraded,
		GradedBy:     "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "res-1", stored.ID)
	assert.Equal(t, 90.0, stored.Percentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentResultRepositoryGradedRowsOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentResultRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM assignment_results WHERE assignment_id = \$1 AND status = 'graded'`).
		WithArgs("asg-1").
		WillReturnRows(resultRows(15, 20, 75.0))

	results, err := repo.GradedRows(context.Background(), "asg-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.ResultStatusGraded, results[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
