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

type mockStudentRepo struct {
	items      map[string]*models.Student
	listResult []models.Student
	listTotal  int
	deleted    []string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := m.items[id]; ok {
		cp := *student
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.items == nil {
		m.items = make(map[string]*models.Student)
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockClassReader struct {
	classes map[string]*models.Class
}

func (m *mockClassReader) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := m.classes[id]; ok {
		cp := *class
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func seedStudent() *models.Student {
	classID := "cls-1"
	className := "Grade 7A"
	return &models.Student{
		ID:         "stu-1",
		FullName:   "Alice Martin",
		ClassID:    &classID,
		ClassName:  &className,
		Status:     models.StudentStatusActive,
		BirthDate:  time.Date(2012, 4, 1, 0, 0, 0, 0, time.UTC),
		Email:      "alice@example.com",
		Phone:      "555-0100",
		TuitionFee: 1000,
		PaidAmount: 400,
		DueAmount:  600,
	}
}

func TestStudentServiceUpdatePreservesOmittedFields(t *testing.T) {
	repo := &mockStudentRepo{items: map[string]*models.Student{"stu-1": seedStudent()}}
	classes := &mockClassReader{classes: map[string]*models.Class{"cls-1": {ID: "cls-1", Name: "Grade 7A"}}}
	svc := NewStudentService(repo, classes, nil, nil)

	phone := "555-0199"
	updated, err := svc.Update(context.Background(), "stu-1", UpdateStudentRequest{Phone: &phone})
	require.NoError(t, err)

	assert.Equal(t, "555-0199", updated.Phone)
	assert.Equal(t, "Alice Martin", updated.FullName)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, models.StudentStatusActive, updated.Status)
	require.NotNil(t, updated.ClassID)
	assert.Equal(t, "cls-1", *updated.ClassID)
}

func TestStudentServiceUpdateKeepsFinancialInvariant(t *testing.T) {
	repo := &mockStudentRepo{items: map[string]*models.Student{"stu-1": seedStudent()}}
	svc := NewStudentService(repo, &mockClassReader{}, nil, nil)

	paid := 700.0
	updated, err := svc.Update(context.Background(), "stu-1", UpdateStudentRequest{PaidAmount: &paid})
	require.NoError(t, err)
	assert.Equal(t, 300.0, updated.DueAmount)

	over := 1500.0
	_, err = svc.Update(context.Background(), "stu-1", UpdateStudentRequest{PaidAmount: &over})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestStudentServiceCreateRejectsUnknownClass(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, &mockClassReader{}, nil, nil)

	classID := "cls-missing"
	_, err := svc.Create(context.Background(), CreateStudentRequest{
		FullName:  "Alice Martin",
		Status:    "active",
		BirthDate: time.Now(),
		ClassID:   &classID,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStaleReference.Code, appErr.Code)
}

func TestStudentServiceDeleteTwiceReturnsNotFound(t *testing.T) {
	repo := &mockStudentRepo{items: map[string]*models.Student{"stu-1": seedStudent()}}
	svc := NewStudentService(repo, &mockClassReader{}, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "stu-1"))

	err := svc.Delete(context.Background(), "stu-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestStudentServiceAddBehavioralRecordAppends(t *testing.T) {
	repo := &mockStudentRepo{items: map[string]*models.Student{"stu-1": seedStudent()}}
	svc := NewStudentService(repo, &mockClassReader{}, nil, nil)

	req := AddBehavioralRecordRequest{
		Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Category:    "merit",
		Description: "helped younger students",
		RecordedBy:  "user-1",
	}
	updated, err := svc.AddBehavioralRecord(context.Background(), "stu-1", req)
	require.NoError(t, err)
	require.Len(t, updated.BehavioralRecords, 1)
	assert.Equal(t, "merit", updated.BehavioralRecords[0].Category)

	again, err := svc.AddBehavioralRecord(context.Background(), "stu-1", req)
	require.NoError(t, err)
	assert.Len(t, again.BehavioralRecords, 2)
}

func TestStudentServiceRecordTuitionPayment(t *testing.T) {
	repo := &mockStudentRepo{items: map[string]*models.Student{"stu-1": seedStudent()}}
	svc := NewStudentService(repo, &mockClassReader{}, nil, nil)

	updated, err := svc.RecordTuitionPayment(context.Background(), "stu-1", models.TuitionPayment{
		Date:   time.Now(),
		Amount: 600,
		Method: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, updated.PaidAmount)
	assert.Equal(t, 0.0, updated.DueAmount)

	_, err = svc.RecordTuitionPayment(context.Background(), "stu-1", models.TuitionPayment{Amount: 1})
	require.Error(t, err)
}
