package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/grading-service/internal/cache"
	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/grading"
	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"github.com/SAP-F-2025/grading-service/internal/validator"
)

const allYears = "all"

// AggregationService computes course and semester averages of a student
type AggregationService interface {
	// Transcript returns both roll-ups for studentID. An empty academicYear
	// covers every year.
	Transcript(ctx context.Context, studentID, academicYear string) (*models.Transcript, error)

	// Invalidate drops every cached transcript of studentID
	Invalidate(ctx context.Context, studentID string) error
}

type aggregationService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregationService creates the service. A nil cache disables memoization.
func NewAggregationService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	ttl time.Duration,
	logger *slog.Logger,
) AggregationService {
	return &aggregationService{
		repo:   repo,
		cache:  cacheService,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *aggregationService) Transcript(ctx context.Context, studentID, academicYear string) (*models.Transcript, error) {
	var errs apperrors.ValidationErrors
	if strings.TrimSpace(studentID) == "" {
		errs.Add("student_id", "is required", studentID)
	}
	if academicYear != "" && !validator.ValidAcademicYear(academicYear) {
		errs.Add("academic_year", "must be an academic year like 2024-2025", academicYear)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	compute := func() (*models.Transcript, error) {
		return s.compute(ctx, studentID, academicYear)
	}
	if s.cache == nil {
		return compute()
	}

	yearKey := academicYear
	if yearKey == "" {
		yearKey = allYears
	}
	return cache.GetOrCompute(ctx, s.cache, s.logger, cache.TranscriptKey(studentID, yearKey), s.ttl, compute)
}

func (s *aggregationService) Invalidate(ctx context.Context, studentID string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeletePattern(ctx, cache.StudentTranscriptsPattern(studentID)); err != nil {
		return fmt.Errorf("failed to invalidate transcripts of student %s: %w", studentID, err)
	}
	return nil
}

func (s *aggregationService) compute(ctx context.Context, studentID, academicYear string) (*models.Transcript, error) {
	s.logger.Info("Computing transcript", "student_id", studentID, "academic_year", academicYear)

	results, err := s.repo.Result().ListByStudent(ctx, nil, studentID, academicYear)
	if err != nil {
		return nil, err
	}
	courses, err := s.repo.Course().ListEnrolled(ctx, nil, studentID, academicYear)
	if err != nil {
		return nil, err
	}

	// A result may exist for a course the enrollment table no longer lists
	known := make(map[uint]bool, len(courses))
	for _, c := range courses {
		known[c.ID] = true
	}
	var missing []uint
	for _, r := range results {
		if r.CourseID != nil && !known[*r.CourseID] {
			known[*r.CourseID] = true
			missing = append(missing, *r.CourseID)
		}
	}
	if len(missing) > 0 {
		extra, err := s.repo.Course().ListByIDs(ctx, nil, missing)
		if err != nil {
			return nil, err
		}
		courses = append(courses, extra...)
	}

	courseAverages := grading.ComputeCourseAverages(results, courses)
	return &models.Transcript{
		StudentID:        studentID,
		AcademicYear:     academicYear,
		CourseAverages:   courseAverages,
		SemesterAverages: grading.ComputeSemesterAverages(courseAverages),
		ComputedAt:       s.now(),
	}, nil
}
