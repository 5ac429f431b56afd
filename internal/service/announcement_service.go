package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

// CreateAnnouncementRequest holds payload for creating announcements.
// Author fields come from the authenticated actor, not the payload.
type CreateAnnouncementRequest struct {
	Title          string     `json:"title" validate:"required"`
	Content        string     `json:"content" validate:"required"`
	Type           string     `json:"type" validate:"required"`
	Priority       string     `json:"priority" validate:"required"`
	TargetAudience []string   `json:"target_audience" validate:"required,min=1"`
	Status         string     `json:"status"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// UpdateAnnouncementRequest holds a partial update.
type UpdateAnnouncementRequest struct {
	Title          *string    `json:"title"`
	Content        *string    `json:"content"`
	Type           *string    `json:"type"`
	Priority       *string    `json:"priority"`
	TargetAudience []string   `json:"target_audience"`
	Status         *string    `json:"status"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// AnnouncementService handles announcement use-cases.
type AnnouncementService struct {
	repo      announcementRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnnouncementService constructs the announcement service.
func NewAnnouncementService(repo announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns announcements and pagination metadata.
func (s *AnnouncementService) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error) {
	announcements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one announcement by identifier.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	return announcement, nil
}

func validateAudience(audience []string) error {
	if len(audience) == 0 {
		return appErrors.FieldViolation("target_audience", "must not be empty")
	}
	for _, role := range audience {
		if !models.UserRole(role).Valid() {
			return appErrors.FieldViolation("target_audience", "unknown role: "+role)
		}
	}
	return nil
}

// checkWindow enforces that expiry falls strictly after publication.
func checkWindow(publishedAt, expiresAt *time.Time) error {
	if publishedAt != nil && expiresAt != nil && !expiresAt.After(*publishedAt) {
		return appErrors.FieldViolation("expires_at", "must be after published_at")
	}
	return nil
}

// Create registers a new announcement authored by the given actor. A
// published status stamps the publication time immediately.
func (s *AnnouncementService) Create(ctx context.Context, req CreateAnnouncementRequest, authorID, authorName string) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	annType := models.AnnouncementType(req.Type)
	if !annType.Valid() {
		return nil, appErrors.FieldViolation("type", "must be one of general, academic, event, urgent")
	}
	priority := models.Priority(req.Priority)
	if !priority.Valid() {
		return nil, appErrors.FieldViolation("priority", "must be one of low, medium, high")
	}
	if err := validateAudience(req.TargetAudience); err != nil {
		return nil, err
	}
	status := models.AnnouncementStatusDraft
	if req.Status != "" {
		status = models.AnnouncementStatus(req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of draft, published, archived")
		}
	}

	announcement := &models.Announcement{
		Title:          req.Title,
		Content:        req.Content,
		Type:           annType,
		Priority:       priority,
		TargetAudience: req.TargetAudience,
		Status:         status,
		AuthorID:       authorID,
		AuthorName:     authorName,
		ExpiresAt:      req.ExpiresAt,
	}
	if status == models.AnnouncementStatusPublished {
		now := s.now()
		announcement.PublishedAt = &now
	}
	if err := checkWindow(announcement.PublishedAt, announcement.ExpiresAt); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	return announcement, nil
}

// Update merges the request into the stored announcement. Moving into
// the published status stamps the publication time once.
func (s *AnnouncementService) Update(ctx context.Context, id string, req UpdateAnnouncementRequest) (*models.Announcement, error) {
	announcement, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		announcement.Title = *req.Title
	}
	if req.Content != nil {
		announcement.Content = *req.Content
	}
	if req.Type != nil {
		annType := models.AnnouncementType(*req.Type)
		if !annType.Valid() {
			return nil, appErrors.FieldViolation("type", "must be one of general, academic, event, urgent")
		}
		announcement.Type = annType
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		if !priority.Valid() {
			return nil, appErrors.FieldViolation("priority", "must be one of low, medium, high")
		}
		announcement.Priority = priority
	}
	if req.TargetAudience != nil {
		if err := validateAudience(req.TargetAudience); err != nil {
			return nil, err
		}
		announcement.TargetAudience = req.TargetAudience
	}
	if req.Status != nil {
		status := models.AnnouncementStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of draft, published, archived")
		}
		if status == models.AnnouncementStatusPublished && announcement.PublishedAt == nil {
			now := s.now()
			announcement.PublishedAt = &now
		}
		announcement.Status = status
	}
	if req.ExpiresAt != nil {
		announcement.ExpiresAt = req.ExpiresAt
	}
	if err := checkWindow(announcement.PublishedAt, announcement.ExpiresAt); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	return announcement, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}
