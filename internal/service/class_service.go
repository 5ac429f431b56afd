package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	CountReferences(ctx context.Context, id string) (int, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type teacherExistsReader interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// CreateClassRequest holds payload for creating classes.
type CreateClassRequest struct {
	Name              string  `json:"name" validate:"required"`
	GradeLevel        string  `json:"grade_level" validate:"required"`
	HomeroomTeacherID *string `json:"homeroom_teacher_id"`
	Capacity          int     `json:"capacity" validate:"gt=0"`
	Active            *bool   `json:"active"`
}

// UpdateClassRequest holds a partial update: nil fields keep their stored
// values.
type UpdateClassRequest struct {
	Name              *string `json:"name"`
	GradeLevel        *string `json:"grade_level"`
	HomeroomTeacherID *string `json:"homeroom_teacher_id"`
	Capacity          *int    `json:"capacity"`
	Active            *bool   `json:"active"`
}

// ClassService handles class use-cases.
type ClassService struct {
	repo      classRepository
	teachers  teacherExistsReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs the class service.
func NewClassService(repo classRepository, teachers teacherExistsReader, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns classes and pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one class by identifier.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

func (s *ClassService) checkHomeroomTeacher(ctx context.Context, teacherID string) error {
	exists, err := s.teachers.ExistsByID(ctx, teacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve homeroom teacher")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrStaleReference, "teacher not found: "+teacherID)
	}
	return nil
}

// Create registers a new class.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if req.HomeroomTeacherID != nil && *req.HomeroomTeacherID != "" {
		if err := s.checkHomeroomTeacher(ctx, *req.HomeroomTeacherID); err != nil {
			return nil, err
		}
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	class := &models.Class{
		Name:              req.Name,
		GradeLevel:        req.GradeLevel,
		HomeroomTeacherID: req.HomeroomTeacherID,
		Capacity:          req.Capacity,
		Active:            active,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update merges the request into the stored class.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.Class, error) {
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.GradeLevel != nil {
		class.GradeLevel = *req.GradeLevel
	}
	if req.HomeroomTeacherID != nil {
		if *req.HomeroomTeacherID == "" {
			class.HomeroomTeacherID = nil
		} else {
			if err := s.checkHomeroomTeacher(ctx, *req.HomeroomTeacherID); err != nil {
				return nil, err
			}
			class.HomeroomTeacherID = req.HomeroomTeacherID
		}
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, appErrors.FieldViolation("capacity", "must be positive")
		}
		class.Capacity = *req.Capacity
	}
	if req.Active != nil {
		class.Active = *req.Active
	}

	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class when no students, assignments or schedules
// reference it.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class references")
	}
	if refs > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "class is still referenced by students, assignments or schedules")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}
