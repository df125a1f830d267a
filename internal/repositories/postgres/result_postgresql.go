package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultPostgreSQL struct {
	base
}

// Upsert writes result keyed by attempt id; re-finalization overwrites every graded field
func (r *ResultPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error {
	err := r.getDB(ctx, tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"exam_id", "student_id", "academic_year", "course_id", "exam_weight",
			"score", "max_score", "passing_score", "percentage", "passed", "letter_grade",
			"incident_summary", "feedback", "graded_by", "graded_at", "updated_at",
		}),
	}).Create(result).Error
	if err != nil {
		return fmt.Errorf("failed to save result of attempt %d: %w", result.AttemptID, err)
	}
	return nil
}

func (r *ResultPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID, academicYear string) ([]*models.ExamResult, error) {
	var results []*models.ExamResult
	query := r.getDB(ctx, tx).Where("student_id = ?", studentID)
	if academicYear != "" {
		query = query.Where("academic_year = ?", academicYear)
	}
	if err := query.Order("graded_at ASC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list results of student %s: %w", studentID, err)
	}
	return results, nil
}

func (r *ResultPostgreSQL) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ExamResult, error) {
	var results []*models.ExamResult
	if err := r.getDB(ctx, tx).
		Where("exam_id = ?", examID).
		Order("student_id ASC").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list results of exam %d: %w", examID, err)
	}
	return results, nil
}

type CoursePostgreSQL struct {
	base
}

func (c *CoursePostgreSQL) ListByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Course, error) {
	var courses []*models.Course
	if len(ids) == 0 {
		return courses, nil
	}
	if err := c.getDB(ctx, tx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (c *CoursePostgreSQL) ListEnrolled(ctx context.Context, tx *gorm.DB, studentID, academicYear string) ([]*models.Course, error) {
	var courses []*models.Course
	query := c.getDB(ctx, tx).
		Joins("JOIN course_enrollments ON course_enrollments.course_id = courses.id").
		Where("course_enrollments.student_id = ?", studentID)
	if academicYear != "" {
		query = query.Where("course_enrollments.academic_year = ?", academicYear)
	}
	if err := query.Distinct().Order("courses.semester ASC, courses.code ASC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses of student %s: %w", studentID, err)
	}
	return courses, nil
}
