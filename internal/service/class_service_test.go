package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
)

type mockClassRepo struct {
	items map[string]*models.Class
	refs  map[string]int
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	var out []models.Class
	for _, c := range m.items {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) CountReferences(ctx context.Context, id string) (int, error) {
	return m.refs[id], nil
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if m.items == nil {
		m.items = make(map[string]*models.Class)
	}
	if class.ID == "" {
		class.ID = "cls-new"
	}
	cp := *class
	m.items[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	cp := *class
	m.items[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type mockTeacherExists struct {
	known map[string]bool
}

func (m *mockTeacherExists) ExistsByID(ctx context.Context, id string) (bool, error) {
	return m.known[id], nil
}

func TestClassServiceCreateDefaultsToActive(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, &mockTeacherExists{}, nil, nil)

	class, err := svc.Create(context.Background(), CreateClassRequest{
		Name:       "Grade 8B",
		GradeLevel: "8",
		Capacity:   30,
	})
	require.NoError(t, err)
	assert.True(t, class.Active)
	assert.Nil(t, class.HomeroomTeacherID)
}

func TestClassServiceCreateRejectsUnknownHomeroomTeacher(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, &mockTeacherExists{}, nil, nil)

	teacherID := "tch-missing"
	_, err := svc.Create(context.Background(), CreateClassRequest{
		Name:              "Grade 8B",
		GradeLevel:        "8",
		Capacity:          30,
		HomeroomTeacherID: &teacherID,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStaleReference.Code, appErr.Code)
}

func TestClassServiceUpdateClearsHomeroomTeacherWithEmptyString(t *testing.T) {
	teacherID := "tch-1"
	repo := &mockClassRepo{items: map[string]*models.Class{
		"cls-1": {ID: "cls-1", Name: "Grade 8B", GradeLevel: "8", Capacity: 30, HomeroomTeacherID: &teacherID, Active: true},
	}}
	svc := NewClassService(repo, &mockTeacherExists{known: map[string]bool{"tch-1": true}}, nil, nil)

	empty := ""
	updated, err := svc.Update(context.Background(), "cls-1", UpdateClassRequest{HomeroomTeacherID: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.HomeroomTeacherID)
	assert.Equal(t, "Grade 8B", updated.Name)
}

func TestClassServiceDeleteBlockedWhileReferenced(t *testing.T) {
	repo := &mockClassRepo{
		items: map[string]*models.Class{"cls-1": {ID: "cls-1", Name: "Grade 8B"}},
		refs:  map[string]int{"cls-1": 3},
	}
	svc := NewClassService(repo, &mockTeacherExists{}, nil, nil)

	err := svc.Delete(context.Background(), "cls-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, repo.items, "cls-1")

	repo.refs["cls-1"] = 0
	require.NoError(t, svc.Delete(context.Background(), "cls-1"))
}
