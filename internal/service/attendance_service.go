package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	Update(ctx context.Context, record *models.AttendanceRecord) error
	StatusCounts(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceStatusCount, error)
	Delete(ctx context.Context, id string) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// MarkAttendanceRequest records one student's attendance for one day.
// Marking the same student and date again replaces the earlier record.
type MarkAttendanceRequest struct {
	StudentID string    `json:"student_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required"`
	TimeIn    *string   `json:"time_in"`
	TimeOut   *string   `json:"time_out"`
	Notes     *string   `json:"notes"`
}

// UpdateAttendanceRequest holds a partial update. The marker identity and
// timestamp are immutable and absent here.
type UpdateAttendanceRequest struct {
	Status  *string `json:"status"`
	TimeIn  *string `json:"time_in"`
	TimeOut *string `json:"time_out"`
	Notes   *string `json:"notes"`
}

// AttendanceService handles daily attendance use-cases.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students studentReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, cache: cache, validator: validate, logger: logger}
}

// List returns attendance records and pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one attendance record by identifier.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	return record, nil
}

// Mark writes the attendance record for (student, date), replacing any
// earlier record for the same day. The marker identity is stamped from
// the authenticated actor.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest, markedBy string) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.FieldViolation("status", "must be one of present, absent, late, excused")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStaleReference, "student not found: "+req.StudentID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	record := &models.AttendanceRecord{
		StudentID:   student.ID,
		StudentName: student.FullName,
		Date:        req.Date,
		Status:      status,
		TimeIn:      req.TimeIn,
		TimeOut:     req.TimeOut,
		Notes:       req.Notes,
		MarkedBy:    markedBy,
	}
	if student.ClassID != nil {
		record.ClassID = *student.ClassID
	}
	if student.ClassName != nil {
		record.ClassName = *student.ClassName
	}

	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	s.invalidateStats(ctx)
	return stored, nil
}

// Update merges the request into the stored record. MarkedBy and MarkedAt
// keep their original values regardless of the payload.
func (s *AttendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.AttendanceRecord, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := models.AttendanceStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of present, absent, late, excused")
		}
		record.Status = status
	}
	if req.TimeIn != nil {
		record.TimeIn = req.TimeIn
	}
	if req.TimeOut != nil {
		record.TimeOut = req.TimeOut
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance record")
	}
	s.invalidateStats(ctx)
	return record, nil
}

// Delete removes an attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance record")
	}
	s.invalidateStats(ctx)
	return nil
}

// Statistics aggregates per-status counts and integer percentage rates
// for the filtered record set. Results are cached when a cache is wired;
// the returned flag reports whether this call was served from cache.
func (s *AttendanceService) Statistics(ctx context.Context, filter models.AttendanceFilter) (*models.AttendanceStats, bool, error) {
	key := statsCacheKey(filter)
	var cached models.AttendanceStats
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	counts, err := s.repo.StatusCounts(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}

	stats := computeAttendanceStats(counts)
	if err := s.cache.Set(ctx, key, stats, 0); err != nil {
		s.logger.Warn("attendance stats cache write failed", zap.Error(err))
	}
	return stats, false, nil
}

func (s *AttendanceService) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "stats:attendance:*"); err != nil {
		s.logger.Warn("attendance stats cache invalidation failed", zap.Error(err))
	}
}

func statsCacheKey(filter models.AttendanceFilter) string {
	status := ""
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	from, to := "", ""
	if filter.DateFrom != nil {
		from = filter.DateFrom.Format("2006-01-02")
	}
	if filter.DateTo != nil {
		to = filter.DateTo.Format("2006-01-02")
	}
	return fmt.Sprintf("stats:attendance:%s:%s:%s:%s:%s", filter.ClassID, filter.StudentID, status, from, to)
}

// computeAttendanceStats turns status counts into totals and integer
// rates rounded to the nearest whole percent. An empty set yields zeros.
func computeAttendanceStats(counts []models.AttendanceStatusCount) *models.AttendanceStats {
	stats := &models.AttendanceStats{}
	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case models.AttendanceStatusPresent:
			stats.PresentCount = c.Count
		case models.AttendanceStatusAbsent:
			stats.AbsentCount = c.Count
		case models.AttendanceStatusLate:
			stats.LateCount = c.Count
		case models.AttendanceStatusExcused:
			stats.ExcusedCount = c.Count
		}
	}
	if stats.Total == 0 {
		return stats
	}
	rate := func(count int) int {
		return int(math.Round(float64(count) * 100 / float64(stats.Total)))
	}
	stats.PresentRate = rate(stats.PresentCount)
	stats.AbsentRate = rate(stats.AbsentCount)
	stats.LateRate = rate(stats.LateCount)
	stats.ExcusedRate = rate(stats.ExcusedCount)
	return stats
}
