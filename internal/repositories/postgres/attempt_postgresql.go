package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	base
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.getDB(ctx, tx).First(&attempt, id).Error; err != nil {
		return nil, notFound(err, "attempt", id)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	if err := a.getDB(ctx, tx).
		Where("exam_id = ?", examID).
		Order("id ASC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list attempts of exam %d: %w", examID, err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) CountByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error) {
	var count int64
	if err := a.getDB(ctx, tx).Model(&models.Attempt{}).Where("exam_id = ?", examID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count attempts of exam %d: %w", examID, err)
	}
	return count, nil
}

func (a *AttemptPostgreSQL) UpdateScore(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	db := a.getDB(ctx, tx)

	res := db.Model(&models.Attempt{}).
		Where("id = ? AND version = ?", attempt.ID, attempt.Version).
		Updates(map[string]interface{}{
			"graded":       attempt.Graded,
			"score":        attempt.Score,
			"max_score":    attempt.MaxScore,
			"percentage":   attempt.Percentage,
			"letter_grade": attempt.LetterGrade,
			"passed":       attempt.Passed,
			"graded_at":    attempt.GradedAt,
			"version":      attempt.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update attempt score: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return versionConflict(db, &models.Attempt{}, "attempt", attempt.ID, attempt.Version)
	}

	attempt.Version++
	return nil
}

func (a *AttemptPostgreSQL) MarkForRegrade(ctx context.Context, tx *gorm.DB, attemptIDs ...uint) error {
	if len(attemptIDs) == 0 {
		return nil
	}
	err := a.getDB(ctx, tx).Model(&models.Attempt{}).
		Where("id IN ?", attemptIDs).
		Updates(map[string]interface{}{
			"graded":  false,
			"version": gorm.Expr("version + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark attempts for regrading: %w", err)
	}
	return nil
}

type AnswerPostgreSQL struct {
	base
}

func (a *AnswerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := a.getDB(ctx, tx).First(&answer, id).Error; err != nil {
		return nil, notFound(err, "answer", id)
	}
	return &answer, nil
}

func (a *AnswerPostgreSQL) ListByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	if err := a.getDB(ctx, tx).
		Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to list answers of attempt %d: %w", attemptID, err)
	}
	return answers, nil
}

func (a *AnswerPostgreSQL) UpdateGrade(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := a.getDB(ctx, tx)

	res := db.Model(&models.Answer{}).
		Where("id = ? AND version = ?", answer.ID, answer.Version).
		Updates(map[string]interface{}{
			"is_correct": answer.IsCorrect,
			"grade":      answer.Grade,
			"feedback":   answer.Feedback,
			"graded_by":  answer.GradedBy,
			"graded_at":  answer.GradedAt,
			"version":    answer.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update answer grade: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return versionConflict(db, &models.Answer{}, "answer", answer.ID, answer.Version)
	}

	answer.Version++
	return nil
}

func (a *AnswerPostgreSQL) AttemptIDsByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]uint, error) {
	var ids []uint
	err := a.getDB(ctx, tx).Model(&models.Answer{}).
		Joins("JOIN exam_attempts ON exam_attempts.id = exam_answers.attempt_id").
		Where("exam_attempts.exam_id = ?", examID).
		Distinct().
		Order("exam_answers.attempt_id ASC").
		Pluck("exam_answers.attempt_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list answered attempts of exam %d: %w", examID, err)
	}
	return ids, nil
}

func (a *AnswerPostgreSQL) DeleteByQuestions(ctx context.Context, tx *gorm.DB, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	if err := a.getDB(ctx, tx).Where("question_id IN ?", questionIDs).Delete(&models.Answer{}).Error; err != nil {
		return fmt.Errorf("failed to delete answers of removed questions: %w", err)
	}
	return nil
}

func (a *AnswerPostgreSQL) ResetGrades(ctx context.Context, tx *gorm.DB, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	err := a.getDB(ctx, tx).Model(&models.Answer{}).
		Where("question_id IN ?", questionIDs).
		Updates(map[string]interface{}{
			"is_correct": nil,
			"grade":      nil,
			"feedback":   nil,
			"graded_by":  nil,
			"graded_at":  nil,
			"version":    gorm.Expr("version + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to reset answer grades: %w", err)
	}
	return nil
}

func (a *AnswerPostgreSQL) CreateBlank(ctx context.Context, tx *gorm.DB, attemptIDs, questionIDs []uint) error {
	if len(attemptIDs) == 0 || len(questionIDs) == 0 {
		return nil
	}
	answers := make([]*models.Answer, 0, len(attemptIDs)*len(questionIDs))
	for _, attemptID := range attemptIDs {
		for _, questionID := range questionIDs {
			answers = append(answers, &models.Answer{AttemptID: attemptID, QuestionID: questionID, Version: 1})
		}
	}
	if err := a.getDB(ctx, tx).Create(&answers).Error; err != nil {
		return fmt.Errorf("failed to create answers for added questions: %w", err)
	}
	return nil
}
