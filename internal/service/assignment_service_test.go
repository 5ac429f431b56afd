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

type mockAssignmentRepo struct {
	items map[string]*models.Assignment
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	var out []models.Assignment
	for _, a := range m.items {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if m.items == nil {
		m.items = make(map[string]*models.Assignment)
	}
	if assignment.ID == "" {
		assignment.ID = "generated"
	}
	cp := *assignment
	m.items[assignment.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	cp := *assignment
	m.items[assignment.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type mockSubjectReader struct {
	subjects map[string]*models.Subject
}

func (m *mockSubjectReader) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockTeacherReader struct {
	teachers map[string]*models.TeacherDetail
}

func (m *mockTeacherReader) FindByID(ctx context.Context, id string) (*models.TeacherDetail, error) {
	if tc, ok := m.teachers[id]; ok {
		cp := *tc
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newAssignmentFixture() (*AssignmentService, *mockAssignmentRepo) {
	repo := &mockAssignmentRepo{}
	subjects := &mockSubjectReader{subjects: map[string]*models.Subject{"sub-1": {ID: "sub-1", Name: "Mathematics"}}}
	teachers := &mockTeacherReader{teachers: map[string]*models.TeacherDetail{
		"tch-1": {Teacher: models.Teacher{ID: "tch-1", FullName: "Sam Ortiz"}},
	}}
	classes := &mockClassReader{classes: map[string]*models.Class{"cls-1": {ID: "cls-1", Name: "Grade 7A"}}}
	return NewAssignmentService(repo, subjects, teachers, classes, nil, nil), repo
}

func validCreateAssignment() CreateAssignmentRequest {
	return CreateAssignmentRequest{
		Title:          "Fractions worksheet",
		SubjectID:      "sub-1",
		TeacherID:      "tch-1",
		ClassID:        "cls-1",
		AssignedDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		DueTime:        "17:00",
		TotalMarks:     20,
		Status:         "assigned",
		Priority:       "medium",
		SubmissionType: "online",
	}
}

func TestAssignmentServiceCreateRefreshesDenormalizedNames(t *testing.T) {
	svc, _ := newAssignmentFixture()

	view, err := svc.Create(context.Background(), validCreateAssignment())
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", view.SubjectName)
	assert.Equal(t, "Sam Ortiz", view.TeacherName)
	assert.Equal(t, "Grade 7A", view.ClassName)
}

func TestAssignmentServiceCreateRejectsUnknownSubject(t *testing.T) {
	svc, _ := newAssignmentFixture()

	req := validCreateAssignment()
	req.SubjectID = "sub-missing"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStaleReference.Code, appErr.Code)
}

func TestAssignmentServiceOverdueDerivedFromClock(t *testing.T) {
	svc, _ := newAssignmentFixture()
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC) }

	view, err := svc.Create(context.Background(), validCreateAssignment())
	require.NoError(t, err)
	assert.True(t, view.Overdue)
	assert.Equal(t, models.AssignmentStatusAssigned, view.Status)

	status := "graded"
	graded, err := svc.Update(context.Background(), view.ID, UpdateAssignmentRequest{Status: &status})
	require.NoError(t, err)
	assert.False(t, graded.Overdue)
}

func TestAssignmentServiceNotOverdueBeforeDue(t *testing.T) {
	svc, _ := newAssignmentFixture()
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 16, 59, 0, 0, time.UTC) }

	view, err := svc.Create(context.Background(), validCreateAssignment())
	require.NoError(t, err)
	assert.False(t, view.Overdue)
}

func TestAssignmentServiceUpdateRevalidatesChangedRefs(t *testing.T) {
	svc, _ := newAssignmentFixture()

	view, err := svc.Create(context.Background(), validCreateAssignment())
	require.NoError(t, err)

	missing := "cls-missing"
	_, err = svc.Update(context.Background(), view.ID, UpdateAssignmentRequest{ClassID: &missing})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStaleReference.Code, appErr.Code)
}

func TestAssignmentServiceAllowsZeroTotalMarks(t *testing.T) {
	svc, _ := newAssignmentFixture()

	req := validCreateAssignment()
	req.TotalMarks = 0

	view, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, view.TotalMarks)

	negative := -5.0
	_, err = svc.Update(context.Background(), view.ID, UpdateAssignmentRequest{TotalMarks: &negative})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "total_marks")
}
