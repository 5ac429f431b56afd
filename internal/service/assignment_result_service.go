package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
)

type assignmentResultRepository interface {
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.AssignmentResult, error)
	FindByCompositeKey(ctx context.Context, assignmentID, studentID string) (*models.AssignmentResult, error)
	Upsert(ctx context.Context, result *models.AssignmentResult) (*models.AssignmentResult, error)
	GradedRows(ctx context.Context, assignmentID string) ([]models.AssignmentResult, error)
	Delete(ctx context.Context, assignmentID, studentID string) error
}

type assignmentExistsReader interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// RecordResultRequest writes one student's result for an assignment.
// Submitting again for the same pair replaces the earlier result.
type RecordResultRequest struct {
	Grade    float64 `json:"grade" validate:"gte=0"`
	MaxGrade float64 `json:"max_grade" validate:"gt=0"`
	Status   string  `json:"status" validate:"required"`
	Feedback *string `json:"feedback"`
}

// AssignmentResultService handles per-student grading use-cases.
type AssignmentResultService struct {
	repo        assignmentResultRepository
	assignments assignmentExistsReader
	students    studentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentResultService constructs the result service.
func NewAssignmentResultService(repo assignmentResultRepository, assignments assignmentExistsReader, students studentReader, validate *validator.Validate, logger *zap.Logger) *AssignmentResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentResultService{repo: repo, assignments: assignments, students: students, validator: validate, logger: logger}
}

// List returns all results for an assignment.
func (s *AssignmentResultService) List(ctx context.Context, assignmentID string) ([]models.AssignmentResult, error) {
	if err := s.checkAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	results, err := s.repo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignment results")
	}
	return results, nil
}

// Get returns one student's result.
func (s *AssignmentResultService) Get(ctx context.Context, assignmentID, studentID string) (*models.AssignmentResult, error) {
	result, err := s.repo.FindByCompositeKey(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment result")
	}
	return result, nil
}

func (s *AssignmentResultService) checkAssignment(ctx context.Context, assignmentID string) error {
	exists, err := s.assignments.ExistsByID(ctx, assignmentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve assignment")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

// Record writes a student's result, replacing any earlier result for the
// same assignment and student. The percentage is recomputed from the
// grades and rounded to one decimal; the grader identity is stamped from
// the authenticated actor.
func (s *AssignmentResultService) Record(ctx context.Context, assignmentID, studentID string, req RecordResultRequest, gradedBy string) (*models.AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}
	status := models.ResultStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.FieldViolation("status", "must be one of graded, pending, absent")
	}
	if req.Grade > req.MaxGrade {
		return nil, appErrors.FieldViolation("grade", "cannot exceed max grade")
	}
	if err := s.checkAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStaleReference, "student not found: "+studentID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	result := &models.AssignmentResult{
		AssignmentID: assignmentID,
		StudentID:    student.ID,
		StudentName:  student.FullName,
		Grade:        req.Grade,
		MaxGrade:     req.MaxGrade,
		Percentage:   percentageOf(req.Grade, req.MaxGrade),
		Status:       status,
		Feedback:     req.Feedback,
		GradedBy:     gradedBy,
	}
	stored, err := s.repo.Upsert(ctx, result)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record assignment result")
	}
	return stored, nil
}

// Delete removes one student's result.
func (s *AssignmentResultService) Delete(ctx context.Context, assignmentID, studentID string) error {
	if err := s.repo.Delete(ctx, assignmentID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment result not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment result")
	}
	return nil
}

// Statistics summarises graded results for one assignment. All values
// are zero when nothing has been graded yet.
func (s *AssignmentResultService) Statistics(ctx context.Context, assignmentID string) (*models.AssignmentResultStats, error) {
	if err := s.checkAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	graded, err := s.repo.GradedRows(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate assignment results")
	}

	stats := &models.AssignmentResultStats{}
	if len(graded) == 0 {
		return stats, nil
	}
	stats.GradedCount = len(graded)
	stats.HighestGrade = graded[0].Grade
	stats.LowestGrade = graded[0].Grade
	var gradeSum, pctSum float64
	for _, r := range graded {
		gradeSum += r.Grade
		pctSum += r.Percentage
		if r.Grade > stats.HighestGrade {
			stats.HighestGrade = r.Grade
		}
		if r.Grade < stats.LowestGrade {
			stats.LowestGrade = r.Grade
		}
	}
	stats.AverageGrade = round1(gradeSum / float64(len(graded)))
	stats.AveragePercentage = round1(pctSum / float64(len(graded)))
	return stats, nil
}

// percentageOf computes grade over max as a percentage rounded to one
// decimal place.
func percentageOf(grade, maxGrade float64) float64 {
	if maxGrade <= 0 {
		return 0
	}
	return round1(grade / maxGrade * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
