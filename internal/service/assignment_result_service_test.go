package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
)

type mockResultRepo struct {
	items map[string]*models.AssignmentResult
}

func resultKey(assignmentID, studentID string) string {
	return assignmentID + "|" + studentID
}

func (m *mockResultRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]models.AssignmentResult, error) {
	var out []models.AssignmentResult
	for _, r := range m.items {
		if r.AssignmentID == assignmentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockResultRepo) FindByCompositeKey(ctx context.Context, assignmentID, studentID string) (*models.AssignmentResult, error) {
	if r, ok := m.items[resultKey(assignmentID, studentID)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockResultRepo) Upsert(ctx context.Context, result *models.AssignmentResult) (*models.AssignmentResult, error) {
	if m.items == nil {
		m.items = make(map[string]*models.AssignmentResult)
	}
	key := resultKey(result.AssignmentID, result.StudentID)
	now := time.Now().UTC()
	if existing, ok := m.items[key]; ok {
		cp := *result
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
		cp.UpdatedAt = now
		m.items[key] = &cp
	} else {
		cp := *result
		cp.ID = "res-" + result.StudentID
		cp.CreatedAt = now
		cp.UpdatedAt = now
		m.items[key] = &cp
	}
	out := *m.items[key]
	return &out, nil
}

func (m *mockResultRepo) GradedRows(ctx context.Context, assignmentID string) ([]models.AssignmentResult, error) {
	var out []models.AssignmentResult
	for _, r := range m.items {
		if r.AssignmentID == assignmentID && r.Status == models.ResultStatusGraded {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockResultRepo) Delete(ctx context.Context, assignmentID, studentID string) error {
	key := resultKey(assignmentID, studentID)
	if _, ok := m.items[key]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, key)
	return nil
}

type mockAssignmentExists struct {
	known map[string]bool
}

func (m *mockAssignmentExists) ExistsByID(ctx context.Context, id string) (bool, error) {
	return m.known[id], nil
}

func newResultFixture() (*AssignmentResultService, *mockResultRepo) {
	repo := &mockResultRepo{}
	assignments := &mockAssignmentExists{known: map[string]bool{"asg-1": true}}
	students := &mockStudentReader{students: map[string]*models.Student{"stu-1": seedStudent()}}
	return NewAssignmentResultService(repo, assignments, students, nil, nil), repo
}

func TestAssignmentResultRecordComputesPercentage(t *testing.T) {
	svc, _ := newResultFixture()

	stored, err := svc.Record(context.Background(), "asg-1", "stu-1", RecordResultRequest{
		Grade:    18,
		MaxGrade: 20,
		Status:   "graded",
	}, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 90.0, stored.Percentage)
	assert.Equal(t, "usr-1", stored.GradedBy)
}

func TestAssignmentResultRecordRoundsToOneDecimal(t *testing.T) {
	svc, _ := newResultFixture()

	stored, err := svc.Record(context.Background(), "asg-1", "stu-1", RecordResultRequest{
		Grade:    1,
		MaxGrade: 3,
		Status:   "graded",
	}, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 33.3, stored.Percentage)
}

func TestAssignmentResultRecordReplacesEarlierResult(t *testing.T) {
	svc, repo := newResultFixture()

	first, err := svc.Record(context.Background(), "asg-1", "stu-1", RecordResultRequest{
		Grade:    10,
		MaxGrade: 20,
		Status:   "pending",
	}, "usr-1")
	require.NoError(t, err)

	second, err := svc.Record(context.Background(), "asg-1", "stu-1", RecordResultRequest{
		Grade:    17,
		MaxGrade: 20,
		Status:   "graded",
	}, "usr-2")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 85.0, second.Percentage)
	assert.Len(t, repo.items, 1)
}

func TestAssignmentResultRecordRejectsGradeAboveMax(t *testing.T) {
	svc, _ := newResultFixture()

	_, err := svc.Record(context.Background(), "asg-1", "stu-1", RecordResultRequest{
		Grade:    25,
		MaxGrade: 20,
		Status:   "graded",
	}, "usr-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "cannot exceed max grade", appErr.Fields["grade"])
}

func TestAssignmentResultRecordUnknownStudent(t *testing.T) {
	svc, _ := newResultFixture()

	_, err := svc.Record(context.Background(), "asg-1", "stu-missing", RecordResultRequest{
		Grade:    10,
		MaxGrade: 20,
		Status:   "graded",
	}, "usr-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStaleReference.Code, appErr.Code)
}

func TestAssignmentResultStatisticsIgnoresUngraded(t *testing.T) {
	svc, repo := newResultFixture()
	repo.items = map[string]*models.AssignmentResult{
		resultKey("asg-1", "stu-1"): {AssignmentID: "asg-1", StudentID: "stu-1", Grade: 18, Percentage: 90, Status: models.ResultStatusGraded},
		resultKey("asg-1", "stu-2"): {AssignmentID: "asg-1", StudentID: "stu-2", Grade: 12, Percentage: 60, Status: models.ResultStatusGraded},
		resultKey("asg-1", "stu-3"): {AssignmentID: "asg-1", StudentID: "stu-3", Status: models.ResultStatusPending},
	}

	stats, err := svc.Statistics(context.Background(), "asg-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.GradedCount)
	assert.Equal(t, 15.0, stats.AverageGrade)
	assert.Equal(t, 75.0, stats.AveragePercentage)
	assert.Equal(t, 18.0, stats.HighestGrade)
	assert.Equal(t, 12.0, stats.LowestGrade)
}

func TestAssignmentResultStatisticsEmpty(t *testing.T) {
	svc, _ := newResultFixture()

	stats, err := svc.Statistics(context.Background(), "asg-1")
	require.NoError(t, err)
	assert.Zero(t, stats.GradedCount)
	assert.Zero(t, stats.AverageGrade)
	assert.Zero(t, stats.AveragePercentage)
}

func TestAssignmentResultStatisticsUnknownAssignment(t *testing.T) {
	svc, _ := newResultFixture()

	_, err := svc.Statistics(context.Background(), "asg-missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
