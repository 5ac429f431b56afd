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

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
	CountReferences(ctx context.Context, id string) (int, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

// CreateTeacherRequest holds payload for creating teachers.
type CreateTeacherRequest struct {
	FullName       string    `json:"full_name" validate:"required"`
	Subject        string    `json:"subject" validate:"required"`
	Department     string    `json:"department"`
	Status         string    `json:"status" validate:"required"`
	BirthDate      time.Time `json:"birth_date" validate:"required"`
	Email          string    `json:"email" validate:"omitempty,email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	Qualifications []string  `json:"qualifications"`
	Certifications []string  `json:"certifications"`
	Salary         float64   `json:"salary" validate:"gte=0"`
}

// UpdateTeacherRequest holds a partial update: nil fields keep their
// stored values.
type UpdateTeacherRequest struct {
	FullName       *string    `json:"full_name"`
	Subject        *string    `json:"subject"`
	Department     *string    `json:"department"`
	Status         *string    `json:"status"`
	BirthDate      *time.Time `json:"birth_date"`
	Email          *string    `json:"email" validate:"omitempty,email"`
	Phone          *string    `json:"phone"`
	Address        *string    `json:"address"`
	Qualifications []string   `json:"qualifications"`
	Certifications []string   `json:"certifications"`
	Salary         *float64   `json:"salary"`
}

// RecordSalaryPaymentRequest appends one salary payment entry.
type RecordSalaryPaymentRequest struct {
	Date   time.Time `json:"date" validate:"required"`
	Amount float64   `json:"amount" validate:"gt=0"`
	Period string    `json:"period" validate:"required"`
}

// TeacherService handles teacher use-cases.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers and pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one teacher with resolved class assignments.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	status := models.TeacherStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.FieldViolation("status", "must be one of active, inactive, on_leave")
	}

	teacher := &models.Teacher{
		FullName:       req.FullName,
		Subject:        req.Subject,
		Department:     req.Department,
		Status:         status,
		BirthDate:      req.BirthDate,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		Qualifications: req.Qualifications,
		Certifications: req.Certifications,
		Salary:         req.Salary,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update merges the request into the stored teacher. Omitted fields keep
// their current values; nil list fields are left untouched.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	teacher := detail.Teacher

	if req.FullName != nil {
		teacher.FullName = *req.FullName
	}
	if req.Subject != nil {
		teacher.Subject = *req.Subject
	}
	if req.Department != nil {
		teacher.Department = *req.Department
	}
	if req.Status != nil {
		status := models.TeacherStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of active, inactive, on_leave")
		}
		teacher.Status = status
	}
	if req.BirthDate != nil {
		teacher.BirthDate = *req.BirthDate
	}
	if req.Email != nil {
		teacher.Email = *req.Email
	}
	if req.Phone != nil {
		teacher.Phone = *req.Phone
	}
	if req.Address != nil {
		teacher.Address = *req.Address
	}
	if req.Qualifications != nil {
		teacher.Qualifications = req.Qualifications
	}
	if req.Certifications != nil {
		teacher.Certifications = req.Certifications
	}
	if req.Salary != nil {
		if *req.Salary < 0 {
			return nil, appErrors.FieldViolation("salary", "must not be negative")
		}
		teacher.Salary = *req.Salary
	}

	if err := s.repo.Update(ctx, &teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return &teacher, nil
}

// RecordSalaryPayment appends a salary payment entry.
func (s *TeacherService) RecordSalaryPayment(ctx context.Context, id string, req RecordSalaryPaymentRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid salary payment payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	teacher := detail.Teacher
	teacher.PaymentHistory = append(teacher.PaymentHistory, models.SalaryPayment{
		Date:   req.Date,
		Amount: req.Amount,
		Period: req.Period,
	})
	if err := s.repo.Update(ctx, &teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record salary payment")
	}
	return &teacher, nil
}

// Delete removes a teacher when nothing references them anymore.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher references")
	}
	if refs > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "teacher is still referenced by assignments or schedules")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	return nil
}
