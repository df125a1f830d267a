package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"gorm.io/gorm"
)

type ExamPostgreSQL struct {
	base
}

// GetByID loads an exam and resolves its course name
func (e *ExamPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	db := e.getDB(ctx, tx)

	var exam models.Exam
	if err := db.First(&exam, id).Error; err != nil {
		return nil, notFound(err, "exam", id)
	}

	if exam.CourseID != nil {
		var names []string
		if err := db.Model(&models.Course{}).Where("id = ?", *exam.CourseID).Pluck("name", &names).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve course of exam %d: %w", id, err)
		}
		if len(names) > 0 {
			exam.CourseName = &names[0]
		}
	}

	return &exam, nil
}

// UpdateStatus moves exam to status to, provided nobody changed it since it was read
func (e *ExamPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, exam *models.Exam, to models.ExamStatus) error {
	db := e.getDB(ctx, tx)

	res := db.Model(&models.Exam{}).
		Where("id = ? AND status = ? AND version = ?", exam.ID, exam.Status, exam.Version).
		Updates(map[string]interface{}{
			"status":  to,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update exam status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return versionConflict(db, &models.Exam{}, "exam", exam.ID, exam.Version)
	}

	exam.Status = to
	exam.Version++
	return nil
}

func (e *ExamPostgreSQL) UpdateTotalPoints(ctx context.Context, tx *gorm.DB, exam *models.Exam, totalPoints float64) error {
	db := e.getDB(ctx, tx)

	res := db.Model(&models.Exam{}).
		Where("id = ? AND version = ?", exam.ID, exam.Version).
		Updates(map[string]interface{}{
			"total_points": totalPoints,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update exam total points: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return versionConflict(db, &models.Exam{}, "exam", exam.ID, exam.Version)
	}

	exam.TotalPoints = totalPoints
	exam.Version++
	return nil
}
