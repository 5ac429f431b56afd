package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolehub/school-admin-api/internal/models"
)

const attendanceColumns = `id, student_id, student_name, class_id, class_name, date, status,
time_in, time_out, notes, marked_by, marked_at, created_at, updated_at`

// AttendanceRepository manages persistence for daily attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) buildWhere(filter models.AttendanceFilter) (string, []interface{}) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	return strings.Join(where, " AND "), args
}

// List returns attendance records matching the provided filters.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	whereClause, args := r.buildWhere(filter)

	sortColumns := map[string]string{
		"date":         "date",
		"student_name": "student_name",
		"status":       "status",
		"created_at":   "created_at",
	}
	sortBy, ok := sortColumns[filter.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d`,
		attendanceColumns, whereClause, sortBy, sortOrder, size, offset)

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance_records WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// FindByID fetches an attendance record by ID.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance_records WHERE id = $1", attendanceColumns)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert inserts the record, or replaces the mutable columns of the
// existing row for the same (student, date). marked_by, marked_at and
// created_at keep their original values on conflict. The stored row is
// returned either way.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.MarkedAt.IsZero() {
		record.MarkedAt = now
	}
	record.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO attendance_records (id, student_id, student_name, class_id, class_name, date, status,
time_in, time_out, notes, marked_by, marked_at, created_at, updated_at)
VALUES (:id, :student_id, :student_name, :class_id, :class_name, :date, :status,
:time_in, :time_out, :notes, :marked_by, :marked_at, :created_at, :updated_at)
ON CONFLICT (student_id, date) DO UPDATE SET
	student_name = EXCLUDED.student_name,
	class_id = EXCLUDED.class_id,
	class_name = EXCLUDED.class_name,
	status = EXCLUDED.status,
	time_in = EXCLUDED.time_in,
	time_out = EXCLUDED.time_out,
	notes = EXCLUDED.notes,
	updated_at = EXCLUDED.updated_at
RETURNING %s`, attendanceColumns)

	rows, err := r.db.NamedQueryContext(ctx, query, record)
	if err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("upsert attendance: %w", err)
		}
		return nil, sql.ErrNoRows
	}
	var stored models.AttendanceRecord
	if err := rows.StructScan(&stored); err != nil {
		return nil, fmt.Errorf("scan attendance: %w", err)
	}
	return &stored, nil
}

// Update persists the full merged record. marked_by and marked_at stay
// untouched.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.AttendanceRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance_records SET student_name = :student_name, class_id = :class_id,
class_name = :class_name, date = :date, status = :status, time_in = :time_in,
time_out = :time_out, notes = :notes, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// StatusCounts tallies records per status for the filtered set.
func (r *AttendanceRepository) StatusCounts(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceStatusCount, error) {
	whereClause, args := r.buildWhere(filter)
	query := fmt.Sprintf(`SELECT status, COUNT(*) AS cnt FROM attendance_records WHERE %s GROUP BY status`, whereClause)
	var counts []models.AttendanceStatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("attendance status counts: %w", err)
	}
	return counts, nil
}

// Delete removes an attendance record permanently. sql.ErrNoRows signals
// an unknown ID.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM attendance_records WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete attendance result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
