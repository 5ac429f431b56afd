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

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
}

// CreateAssignmentRequest holds payload for creating assignments.
type CreateAssignmentRequest struct {
	Title               string    `json:"title" validate:"required"`
	Description         string    `json:"description"`
	Instructions        string    `json:"instructions"`
	SubjectID           string    `json:"subject_id" validate:"required"`
	TeacherID           string    `json:"teacher_id" validate:"required"`
	ClassID             string    `json:"class_id" validate:"required"`
	AssignedDate        time.Time `json:"assigned_date" validate:"required"`
	DueDate             time.Time `json:"due_date" validate:"required"`
	DueTime             string    `json:"due_time" validate:"required"`
	TotalMarks          float64   `json:"total_marks" validate:"gte=0"`
	Attachments         []string  `json:"attachments"`
	Status              string    `json:"status"`
	Priority            string    `json:"priority" validate:"required"`
	SubmissionType      string    `json:"submission_type" validate:"required"`
	AllowLateSubmission bool      `json:"allow_late_submission"`
}

// UpdateAssignmentRequest holds a partial update.
type UpdateAssignmentRequest struct {
	Title               *string    `json:"title"`
	Description         *string    `json:"description"`
	Instructions        *string    `json:"instructions"`
	SubjectID           *string    `json:"subject_id"`
	TeacherID           *string    `json:"teacher_id"`
	ClassID             *string    `json:"class_id"`
	AssignedDate        *time.Time `json:"assigned_date"`
	DueDate             *time.Time `json:"due_date"`
	DueTime             *string    `json:"due_time"`
	TotalMarks          *float64   `json:"total_marks"`
	Attachments         []string   `json:"attachments"`
	Status              *string    `json:"status"`
	Priority            *string    `json:"priority"`
	SubmissionType      *string    `json:"submission_type"`
	AllowLateSubmission *bool      `json:"allow_late_submission"`
}

// AssignmentService handles assignment use-cases. The overdue flag on
// reads is derived from the due moment and the service clock, never
// stored.
type AssignmentService struct {
	repo      assignmentRepository
	subjects  subjectReader
	teachers  teacherReader
	classes   classReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(repo assignmentRepository, subjects subjectReader, teachers teacherReader, classes classReader, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:      repo,
		subjects:  subjects,
		teachers:  teachers,
		classes:   classes,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns assignment views with the derived overdue flag.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentView, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	now := s.now()
	views := make([]models.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, models.AssignmentView{Assignment: a, Overdue: a.OverdueAt(now)})
	}
	return views, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one assignment view by identifier.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.AssignmentView, error) {
	assignment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.AssignmentView{Assignment: *assignment, Overdue: assignment.OverdueAt(s.now())}, nil
}

func (s *AssignmentService) find(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// resolveRefs verifies the subject, teacher and class references and
// refreshes their denormalized display names on the assignment.
func (s *AssignmentService) resolveRefs(ctx context.Context, assignment *models.Assignment) error {
	subject, err := s.subjects.FindByID(ctx, assignment.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrStaleReference, "subject not found: "+assignment.SubjectID)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve subject")
	}
	teacher, err := s.teachers.FindByID(ctx, assignment.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrStaleReference, "teacher not found: "+assignment.TeacherID)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teacher")
	}
	class, err := s.classes.FindByID(ctx, assignment.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrStaleReference, "class not found: "+assignment.ClassID)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve class")
	}
	assignment.SubjectName = subject.Name
	assignment.TeacherName = teacher.FullName
	assignment.ClassName = class.Name
	return nil
}

// Create registers a new assignment.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.AssignmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	status := models.AssignmentStatusDraft
	if req.Status != "" {
		status = models.AssignmentStatus(req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of draft, assigned, submitted, graded")
		}
	}
	priority := models.Priority(req.Priority)
	if !priority.Valid() {
		return nil, appErrors.FieldViolation("priority", "must be one of low, medium, high")
	}
	submission := models.SubmissionType(req.SubmissionType)
	if !submission.Valid() {
		return nil, appErrors.FieldViolation("submission_type", "must be one of online, offline, both")
	}
	if _, err := time.Parse("15:04", req.DueTime); err != nil {
		return nil, appErrors.FieldViolation("due_time", "must be in HH:MM format")
	}

	assignment := &models.Assignment{
		Title:               req.Title,
		Description:         req.Description,
		Instructions:        req.Instructions,
		SubjectID:           req.SubjectID,
		TeacherID:           req.TeacherID,
		ClassID:             req.ClassID,
		AssignedDate:        req.AssignedDate,
		DueDate:             req.DueDate,
		DueTime:             req.DueTime,
		TotalMarks:          req.TotalMarks,
		Attachments:         req.Attachments,
		Status:              status,
		Priority:            priority,
		SubmissionType:      submission,
		AllowLateSubmission: req.AllowLateSubmission,
	}
	if err := s.resolveRefs(ctx, assignment); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return &models.AssignmentView{Assignment: *assignment, Overdue: assignment.OverdueAt(s.now())}, nil
}

// Update merges the request into the stored assignment, re-resolving
// references whenever one of them changes.
func (s *AssignmentService) Update(ctx context.Context, id string, req UpdateAssignmentRequest) (*models.AssignmentView, error) {
	assignment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.Instructions != nil {
		assignment.Instructions = *req.Instructions
	}
	refsChanged := false
	if req.SubjectID != nil {
		assignment.SubjectID = *req.SubjectID
		refsChanged = true
	}
	if req.TeacherID != nil {
		assignment.TeacherID = *req.TeacherID
		refsChanged = true
	}
	if req.ClassID != nil {
		assignment.ClassID = *req.ClassID
		refsChanged = true
	}
	if req.AssignedDate != nil {
		assignment.AssignedDate = *req.AssignedDate
	}
	if req.DueDate != nil {
		assignment.DueDate = *req.DueDate
	}
	if req.DueTime != nil {
		if _, err := time.Parse("15:04", *req.DueTime); err != nil {
			return nil, appErrors.FieldViolation("due_time", "must be in HH:MM format")
		}
		assignment.DueTime = *req.DueTime
	}
	if req.TotalMarks != nil {
		if *req.TotalMarks < 0 {
			return nil, appErrors.FieldViolation("total_marks", "must not be negative")
		}
		assignment.TotalMarks = *req.TotalMarks
	}
	if req.Attachments != nil {
		assignment.Attachments = req.Attachments
	}
	if req.Status != nil {
		status := models.AssignmentStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of draft, assigned, submitted, graded")
		}
		assignment.Status = status
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		if !priority.Valid() {
			return nil, appErrors.FieldViolation("priority", "must be one of low, medium, high")
		}
		assignment.Priority = priority
	}
	if req.SubmissionType != nil {
		submission := models.SubmissionType(*req.SubmissionType)
		if !submission.Valid() {
			return nil, appErrors.FieldViolation("submission_type", "must be one of online, offline, both")
		}
		assignment.SubmissionType = submission
	}
	if req.AllowLateSubmission != nil {
		assignment.AllowLateSubmission = *req.AllowLateSubmission
	}
	if refsChanged {
		if err := s.resolveRefs(ctx, assignment); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	return &models.AssignmentView{Assignment: *assignment, Overdue: assignment.OverdueAt(s.now())}, nil
}

// Delete removes an assignment together with its results.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
