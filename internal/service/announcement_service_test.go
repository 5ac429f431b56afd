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

type mockAnnouncementRepo struct {
	items map[string]*models.Announcement
}

func (m *mockAnnouncementRepo) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	var out []models.Announcement
	for _, a := range m.items {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockAnnouncementRepo) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	if m.items == nil {
		m.items = make(map[string]*models.Announcement)
	}
	if announcement.ID == "" {
		announcement.ID = "ann-1"
	}
	cp := *announcement
	m.items[announcement.ID] = &cp
	return nil
}

func (m *mockAnnouncementRepo) Update(ctx context.Context, announcement *models.Announcement) error {
	cp := *announcement
	m.items[announcement.ID] = &cp
	return nil
}

func (m *mockAnnouncementRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func validCreateAnnouncement() CreateAnnouncementRequest {
	return CreateAnnouncementRequest{
		Title:          "Parent-teacher evening",
		Content:        "Meetings run from 17:00 to 20:00 in the main hall.",
		Type:           "event",
		Priority:       "medium",
		TargetAudience: []string{"TEACHER", "STUDENT"},
	}
}

func TestAnnouncementServicePublishStampsPublishedAt(t *testing.T) {
	repo := &mockAnnouncementRepo{}
	svc := NewAnnouncementService(repo, nil, nil)
	stamp := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }

	req := validCreateAnnouncement()
	req.Status = "published"
	created, err := svc.Create(context.Background(), req, "usr-1", "Dana Reyes")
	require.NoError(t, err)
	require.NotNil(t, created.PublishedAt)
	assert.Equal(t, stamp, *created.PublishedAt)
	assert.Equal(t, "Dana Reyes", created.AuthorName)
}

func TestAnnouncementServiceDraftHasNoPublishedAt(t *testing.T) {
	svc := NewAnnouncementService(&mockAnnouncementRepo{}, nil, nil)

	created, err := svc.Create(context.Background(), validCreateAnnouncement(), "usr-1", "Dana Reyes")
	require.NoError(t, err)
	assert.Nil(t, created.PublishedAt)
	assert.Equal(t, models.AnnouncementStatusDraft, created.Status)
}

func TestAnnouncementServiceRejectsExpiryBeforePublication(t *testing.T) {
	svc := NewAnnouncementService(&mockAnnouncementRepo{}, nil, nil)
	stamp := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }

	req := validCreateAnnouncement()
	req.Status = "published"
	expires := stamp.Add(-time.Hour)
	req.ExpiresAt = &expires
	_, err := svc.Create(context.Background(), req, "usr-1", "Dana Reyes")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAnnouncementServiceRejectsExpiryEqualToPublication(t *testing.T) {
	svc := NewAnnouncementService(&mockAnnouncementRepo{}, nil, nil)
	stamp := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }

	req := validCreateAnnouncement()
	req.Status = "published"
	expires := stamp
	req.ExpiresAt = &expires
	_, err := svc.Create(context.Background(), req, "usr-1", "Dana Reyes")
	require.Error(t, err)
}

func TestAnnouncementServiceUpdatePublishStampsOnce(t *testing.T) {
	repo := &mockAnnouncementRepo{}
	svc := NewAnnouncementService(repo, nil, nil)
	first := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	created, err := svc.Create(context.Background(), validCreateAnnouncement(), "usr-1", "Dana Reyes")
	require.NoError(t, err)

	status := "published"
	published, err := svc.Update(context.Background(), created.ID, UpdateAnnouncementRequest{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, first, *published.PublishedAt)

	svc.now = func() time.Time { return first.Add(48 * time.Hour) }
	again, err := svc.Update(context.Background(), created.ID, UpdateAnnouncementRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, first, *again.PublishedAt)
}

func TestAnnouncementServiceRejectsUnknownAudienceRole(t *testing.T) {
	svc := NewAnnouncementService(&mockAnnouncementRepo{}, nil, nil)

	req := validCreateAnnouncement()
	req.TargetAudience = []string{"janitor"}
	_, err := svc.Create(context.Background(), req, "usr-1", "Dana Reyes")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "unknown role: janitor", appErr.Fields["target_audience"])
}
