package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
)

type mockScheduleRepo struct {
	items map[string]*models.Schedule
	seq   int
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{items: map[string]*models.Schedule{}}
}

func (m *mockScheduleRepo) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	out := make([]models.Schedule, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *mockScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	m.seq++
	schedule.ID = fmt.Sprintf("sch-%d", m.seq)
	schedule.CreatedAt = time.Now().UTC()
	schedule.UpdatedAt = schedule.CreatedAt
	cp := *schedule
	m.items[schedule.ID] = &cp
	return nil
}

func (m *mockScheduleRepo) Update(ctx context.Context, schedule *models.Schedule) error {
	if _, ok := m.items[schedule.ID]; !ok {
		return sql.ErrNoRows
	}
	schedule.UpdatedAt = time.Now().UTC()
	cp := *schedule
	m.items[schedule.ID] = &cp
	return nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type mockExistsReader struct {
	known map[string]bool
}

func (m *mockExistsReader) ExistsByID(ctx context.Context, id string) (bool, error) {
	return m.known[id], nil
}

func newScheduleFixture() (*ScheduleService, *mockScheduleRepo) {
	repo := newMockScheduleRepo()
	classes := &mockExistsReader{known: map[string]bool{"cls-1": true}}
	teachers := &mockExistsReader{known: map[string]bool{"tch-1": true}}
	subjects := &mockExistsReader{known: map[string]bool{"sub-1": true}}
	return NewScheduleService(repo, classes, teachers, subjects, nil, nil), repo
}

func validCreateSchedule() CreateScheduleRequest {
	classID := "cls-1"
	teacherID := "tch-1"
	return CreateScheduleRequest{
		Title:      "Algebra",
		Type:       "class",
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
		DayOfWeek:  "monday",
		StartTime:  "08:00",
		EndTime:    "09:30",
		Recurrence: "weekly",
		ClassID:    &classID,
		TeacherID:  &teacherID,
	}
}

func TestScheduleServiceCreateDefaultsToActive(t *testing.T) {
	svc, _ := newScheduleFixture()

	schedule, err := svc.Create(context.Background(), validCreateSchedule())
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusActive, schedule.Status)
	assert.NotEmpty(t, schedule.ID)
}

func TestScheduleServiceCreateRejectsInvertedWindow(t *testing.T) {
	svc, _ := newScheduleFixture()

	req := validCreateSchedule()
	req.EndDate = req.StartDate.AddDate(0, 0, -1)

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "end_date")
}

func TestScheduleServiceCreateSameDayNeedsLaterEndTime(t *testing.T) {
	svc, _ := newScheduleFixture()

	req := validCreateSchedule()
	req.EndDate = req.StartDate
	req.StartTime = "10:00"
	req.EndTime = "10:00"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Contains(t, appErr.Fields, "end_time")
}

func TestScheduleServiceCreateUnknownTeacherIsStale(t *testing.T) {
	svc, _ := newScheduleFixture()

	req := validCreateSchedule()
	ghost := "tch-missing"
	req.TeacherID = &ghost

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStaleReference.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceUpdateClearsClassReference(t *testing.T) {
	svc, repo := newScheduleFixture()

	created, err := svc.Create(context.Background(), validCreateSchedule())
	require.NoError(t, err)

	empty := ""
	updated, err := svc.Update(context.Background(), created.ID, UpdateScheduleRequest{ClassID: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.ClassID)
	assert.Equal(t, "Algebra", updated.Title)
	assert.NotNil(t, repo.items[created.ID])
}

func TestScheduleServiceUpdateRejectsUnknownStatus(t *testing.T) {
	svc, _ := newScheduleFixture()

	created, err := svc.Create(context.Background(), validCreateSchedule())
	require.NoError(t, err)

	bogus := "paused"
	_, err = svc.Update(context.Background(), created.ID, UpdateScheduleRequest{Status: &bogus})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "status")
}

func TestScheduleServiceDeleteUnknownIsNotFound(t *testing.T) {
	svc, _ := newScheduleFixture()

	err := svc.Delete(context.Background(), "sch-missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
