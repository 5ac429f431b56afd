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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// CreateStudentRequest holds payload for creating students. DueAmount is
// derived from the fee and the amount paid so far.
type CreateStudentRequest struct {
	FullName      string    `json:"full_name" validate:"required"`
	ClassID       *string   `json:"class_id"`
	Status        string    `json:"status" validate:"required"`
	BirthDate     time.Time `json:"birth_date" validate:"required"`
	Email         string    `json:"email" validate:"omitempty,email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	GuardianName  string    `json:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone"`
	TuitionFee    float64   `json:"tuition_fee" validate:"gte=0"`
	PaidAmount    float64   `json:"paid_amount" validate:"gte=0"`
}

// UpdateStudentRequest holds a partial update: nil fields keep their
// stored values.
type UpdateStudentRequest struct {
	FullName      *string    `json:"full_name"`
	ClassID       *string    `json:"class_id"`
	Status        *string    `json:"status"`
	BirthDate     *time.Time `json:"birth_date"`
	Email         *string    `json:"email" validate:"omitempty,email"`
	Phone         *string    `json:"phone"`
	Address       *string    `json:"address"`
	GuardianName  *string    `json:"guardian_name"`
	GuardianPhone *string    `json:"guardian_phone"`
	TuitionFee    *float64   `json:"tuition_fee"`
	PaidAmount    *float64   `json:"paid_amount"`
}

// AddBehavioralRecordRequest appends one behavioural entry to a student.
type AddBehavioralRecordRequest struct {
	Date        time.Time `json:"date" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	Description string    `json:"description" validate:"required"`
	RecordedBy  string    `json:"recorded_by" validate:"required"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	classes   classReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, classes classReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one student by identifier.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// resolveClass verifies the class reference and returns its display name.
func (s *StudentService) resolveClass(ctx context.Context, classID string) (string, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrStaleReference, "class not found: "+classID)
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve class")
	}
	return class.Name, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	status := models.StudentStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.FieldViolation("status", "must be one of active, inactive, suspended")
	}
	if req.PaidAmount > req.TuitionFee {
		return nil, appErrors.FieldViolation("paid_amount", "cannot exceed tuition fee")
	}

	student := &models.Student{
		FullName:      req.FullName,
		Status:        status,
		BirthDate:     req.BirthDate,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		TuitionFee:    req.TuitionFee,
		PaidAmount:    req.PaidAmount,
		DueAmount:     req.TuitionFee - req.PaidAmount,
	}
	if req.ClassID != nil && *req.ClassID != "" {
		name, err := s.resolveClass(ctx, *req.ClassID)
		if err != nil {
			return nil, err
		}
		student.ClassID = req.ClassID
		student.ClassName = &name
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update merges the request into the stored student. Omitted fields keep
// their current values.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Status != nil {
		status := models.StudentStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of active, inactive, suspended")
		}
		student.Status = status
	}
	if req.BirthDate != nil {
		student.BirthDate = *req.BirthDate
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.Address != nil {
		student.Address = *req.Address
	}
	if req.GuardianName != nil {
		student.GuardianName = *req.GuardianName
	}
	if req.GuardianPhone != nil {
		student.GuardianPhone = *req.GuardianPhone
	}
	if req.ClassID != nil {
		if *req.ClassID == "" {
			student.ClassID = nil
			student.ClassName = nil
		} else {
			name, err := s.resolveClass(ctx, *req.ClassID)
			if err != nil {
				return nil, err
			}
			student.ClassID = req.ClassID
			student.ClassName = &name
		}
	}
	if req.TuitionFee != nil {
		if *req.TuitionFee < 0 {
			return nil, appErrors.FieldViolation("tuition_fee", "must not be negative")
		}
		student.TuitionFee = *req.TuitionFee
	}
	if req.PaidAmount != nil {
		if *req.PaidAmount < 0 {
			return nil, appErrors.FieldViolation("paid_amount", "must not be negative")
		}
		student.PaidAmount = *req.PaidAmount
	}
	if student.PaidAmount > student.TuitionFee {
		return nil, appErrors.FieldViolation("paid_amount", "cannot exceed tuition fee")
	}
	student.DueAmount = student.TuitionFee - student.PaidAmount

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// AddBehavioralRecord appends one entry to the student's behavioural
// history. Existing entries are never edited.
func (s *StudentService) AddBehavioralRecord(ctx context.Context, id string, req AddBehavioralRecordRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid behavioral record payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student.BehavioralRecords = append(student.BehavioralRecords, models.BehavioralRecord{
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
		RecordedBy:  req.RecordedBy,
	})
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append behavioral record")
	}
	return student, nil
}

// RecordTuitionPayment appends a payment entry and adjusts the financial
// columns.
func (s *StudentService) RecordTuitionPayment(ctx context.Context, id string, payment models.TuitionPayment) (*models.Student, error) {
	if payment.Amount <= 0 {
		return nil, appErrors.FieldViolation("amount", "must be positive")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if student.PaidAmount+payment.Amount > student.TuitionFee {
		return nil, appErrors.FieldViolation("amount", "payment exceeds outstanding balance")
	}
	student.PaymentHistory = append(student.PaymentHistory, payment)
	student.PaidAmount += payment.Amount
	student.DueAmount = student.TuitionFee - student.PaidAmount
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record tuition payment")
	}
	return student, nil
}

// Delete removes a student. A second delete of the same ID fails with
// not found.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
