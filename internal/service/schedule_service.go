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

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type existsReader interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// CreateScheduleRequest holds payload for creating schedule entries.
type CreateScheduleRequest struct {
	Title      string    `json:"title" validate:"required"`
	Type       string    `json:"type" validate:"required"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required"`
	DayOfWeek  string    `json:"day_of_week"`
	StartTime  string    `json:"start_time" validate:"required"`
	EndTime    string    `json:"end_time" validate:"required"`
	Recurrence string    `json:"recurrence" validate:"required"`
	Location   string    `json:"location"`
	Status     string    `json:"status"`
	ClassID    *string   `json:"class_id"`
	TeacherID  *string   `json:"teacher_id"`
	SubjectID  *string   `json:"subject_id"`
}

// UpdateScheduleRequest holds a partial update.
type UpdateScheduleRequest struct {
	Title      *string    `json:"title"`
	Type       *string    `json:"type"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	DayOfWeek  *string    `json:"day_of_week"`
	StartTime  *string    `json:"start_time"`
	EndTime    *string    `json:"end_time"`
	Recurrence *string    `json:"recurrence"`
	Location   *string    `json:"location"`
	Status     *string    `json:"status"`
	ClassID    *string    `json:"class_id"`
	TeacherID  *string    `json:"teacher_id"`
	SubjectID  *string    `json:"subject_id"`
}

// ScheduleService handles schedule use-cases.
type ScheduleService struct {
	repo      scheduleRepository
	classes   existsReader
	teachers  existsReader
	subjects  existsReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(repo scheduleRepository, classes, teachers, subjects existsReader, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, classes: classes, teachers: teachers, subjects: subjects, validator: validate, logger: logger}
}

// List returns schedule entries and pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return schedules, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one schedule entry by identifier.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

func (s *ScheduleService) checkRef(ctx context.Context, reader existsReader, kind string, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	exists, err := reader.ExistsByID(ctx, *id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve "+kind)
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrStaleReference, kind+" not found: "+*id)
	}
	return nil
}

// checkWindow enforces that the entry ends after it starts. Same-day
// entries fall back to comparing the HH:MM times.
func (s *ScheduleService) checkWindow(schedule *models.Schedule) error {
	if schedule.EndDate.Before(schedule.StartDate) {
		return appErrors.FieldViolation("end_date", "must not be before start_date")
	}
	start, err := time.Parse("15:04", schedule.StartTime)
	if err != nil {
		return appErrors.FieldViolation("start_time", "must be in HH:MM format")
	}
	end, err := time.Parse("15:04", schedule.EndTime)
	if err != nil {
		return appErrors.FieldViolation("end_time", "must be in HH:MM format")
	}
	if schedule.EndDate.Equal(schedule.StartDate) && !end.After(start) {
		return appErrors.FieldViolation("end_time", "must be after start_time")
	}
	return nil
}

// Create registers a new schedule entry.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	schedType := models.ScheduleType(req.Type)
	if !schedType.Valid() {
		return nil, appErrors.FieldViolation("type", "must be one of class, exam, event, teacher, student")
	}
	recurrence := models.Recurrence(req.Recurrence)
	if !recurrence.Valid() {
		return nil, appErrors.FieldViolation("recurrence", "must be one of daily, weekly, monthly, none")
	}
	status := models.ScheduleStatusActive
	if req.Status != "" {
		status = models.ScheduleStatus(req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of active, cancelled, completed")
		}
	}

	schedule := &models.Schedule{
		Title:      req.Title,
		Type:       schedType,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Recurrence: recurrence,
		Location:   req.Location,
		Status:     status,
		ClassID:    req.ClassID,
		TeacherID:  req.TeacherID,
		SubjectID:  req.SubjectID,
	}
	if err := s.checkWindow(schedule); err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, s.classes, "class", schedule.ClassID); err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, s.teachers, "teacher", schedule.TeacherID); err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, s.subjects, "subject", schedule.SubjectID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return schedule, nil
}

// Update merges the request into the stored schedule entry.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		schedule.Title = *req.Title
	}
	if req.Type != nil {
		schedType := models.ScheduleType(*req.Type)
		if !schedType.Valid() {
			return nil, appErrors.FieldViolation("type", "must be one of class, exam, event, teacher, student")
		}
		schedule.Type = schedType
	}
	if req.StartDate != nil {
		schedule.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		schedule.EndDate = *req.EndDate
	}
	if req.DayOfWeek != nil {
		schedule.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		schedule.EndTime = *req.EndTime
	}
	if req.Recurrence != nil {
		recurrence := models.Recurrence(*req.Recurrence)
		if !recurrence.Valid() {
			return nil, appErrors.FieldViolation("recurrence", "must be one of daily, weekly, monthly, none")
		}
		schedule.Recurrence = recurrence
	}
	if req.Location != nil {
		schedule.Location = *req.Location
	}
	if req.Status != nil {
		status := models.ScheduleStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of active, cancelled, completed")
		}
		schedule.Status = status
	}
	if req.ClassID != nil {
		if *req.ClassID == "" {
			schedule.ClassID = nil
		} else {
			schedule.ClassID = req.ClassID
		}
	}
	if req.TeacherID != nil {
		if *req.TeacherID == "" {
			schedule.TeacherID = nil
		} else {
			schedule.TeacherID = req.TeacherID
		}
	}
	if req.SubjectID != nil {
		if *req.SubjectID == "" {
			schedule.SubjectID = nil
		} else {
			schedule.SubjectID = req.SubjectID
		}
	}
	if err := s.checkWindow(schedule); err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, s.classes, "class", schedule.ClassID); err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, s.teachers, "teacher", schedule.TeacherID); err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, s.subjects, "subject", schedule.SubjectID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	return schedule, nil
}

// Delete removes a schedule entry.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}
