package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolehub/school-admin-api/internal/models"
)

const resultColumns = `id, assignment_id, student_id, student_name, grade, max_grade, percentage,
status, feedback, graded_by, graded_at, created_at, updated_at`

// AssignmentResultRepository manages persistence for per-student results.
// One row exists per (assignment, student) pair.
type AssignmentResultRepository struct {
	db *sqlx.DB
}

// NewAssignmentResultRepository constructs an AssignmentResultRepository.
func NewAssignmentResultRepository(db *sqlx.DB) *AssignmentResultRepository {
	return &AssignmentResultRepository{db: db}
}

// ListByAssignment returns all results for an assignment in insertion order.
func (r *AssignmentResultRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.AssignmentResult, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignment_results WHERE assignment_id = $1 ORDER BY created_at ASC, id ASC`, resultColumns)
	var results []models.AssignmentResult
	if err := r.db.SelectContext(ctx, &results, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list assignment results: %w", err)
	}
	return results, nil
}

// FindByCompositeKey fetches the result for one student on one assignment.
func (r *AssignmentResultRepository) FindByCompositeKey(ctx context.Context, assignmentID, studentID string) (*models.AssignmentResult, error) {
	query := fmt.Sprintf("SELECT %s FROM assignment_results WHERE assignment_id = $1 AND student_id = $2", resultColumns)
	var result models.AssignmentResult
	if err := r.db.GetContext(ctx, &result, query, assignmentID, studentID); err != nil {
		return nil, err
	}
	return &result, nil
}

// Upsert writes the result row keyed on (assignment_id, student_id). On
// conflict the newer grade, status, feedback and grader win while id and
// created_at keep their original values. The stored row is returned.
func (r *AssignmentResultRepository) Upsert(ctx context.Context, result *models.AssignmentResult) (*models.AssignmentResult, error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	if result.GradedAt.IsZero() {
		result.GradedAt = now
	}
	result.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO assignment_results (id, assignment_id, student_id, student_name, grade,
max_grade, percentage, status, feedback, graded_by, graded_at, created_at, updated_at)
VALUES (:id, :assignment_id, :student_id, :student_name, :grade,
:max_grade, :percentage, :status, :feedback, :graded_by, :graded_at, :created_at, :updated_at)
ON CONFLICT (assignment_id, student_id) DO UPDATE SET
	student_name = EXCLUDED.student_name,
	grade = EXCLUDED.grade,
	max_grade = EXCLUDED.max_grade,
	percentage = EXCLUDED.percentage,
	status = EXCLUDED.status,
	feedback = EXCLUDED.feedback,
	graded_by = EXCLUDED.graded_by,
	graded_at = EXCLUDED.graded_at,
	updated_at = EXCLUDED.updated_at
RETURNING %s`, resultColumns)

	rows, err := r.db.NamedQueryContext(ctx, query, result)
	if err != nil {
		return nil, fmt.Errorf("upsert assignment result: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("upsert assignment result: %w", err)
		}
		return nil, sql.ErrNoRows
	}
	var stored models.AssignmentResult
	if err := rows.StructScan(&stored); err != nil {
		return nil, fmt.Errorf("scan assignment result: %w", err)
	}
	return &stored, nil
}

// GradedRows returns grade and percentage pairs for graded results only,
// feeding the per-assignment statistics.
func (r *AssignmentResultRepository) GradedRows(ctx context.Context, assignmentID string) ([]models.AssignmentResult, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignment_results WHERE assignment_id = $1 AND status = 'graded'
ORDER BY created_at ASC, id ASC`, resultColumns)
	var results []models.AssignmentResult
	if err := r.db.SelectContext(ctx, &results, query, assignmentID); err != nil {
		return nil, fmt.Errorf("graded assignment results: %w", err)
	}
	return results, nil
}

// Delete removes one student's result. sql.ErrNoRows signals an unknown
// pair.
func (r *AssignmentResultRepository) Delete(ctx context.Context, assignmentID, studentID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM assignment_results WHERE assignment_id = $1 AND student_id = $2", assignmentID, studentID)
	if err != nil {
		return fmt.Errorf("delete assignment result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete assignment result count: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
