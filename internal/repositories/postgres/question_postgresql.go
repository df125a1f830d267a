package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionPostgreSQL struct {
	base
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.getDB(ctx, tx).First(&question, id).Error; err != nil {
		return nil, notFound(err, "question", id)
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := q.getDB(ctx, tx).
		Where("exam_id = ?", examID).
		Order("number ASC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to list questions of exam %d: %w", examID, err)
	}
	return questions, nil
}

// ReplaceForExam keeps question ids stable per number: numbers that disappear
// are deleted, the others are upserted on (exam_id, number).
func (q *QuestionPostgreSQL) ReplaceForExam(ctx context.Context, tx *gorm.DB, examID uint, questions []*models.Question) error {
	db := q.getDB(ctx, tx)

	numbers := make([]int, 0, len(questions))
	for _, question := range questions {
		question.ID = 0
		question.ExamID = examID
		numbers = append(numbers, question.Number)
	}

	stale := db.Where("exam_id = ?", examID)
	if len(numbers) > 0 {
		stale = stale.Where("number NOT IN ?", numbers)
	}
	if err := stale.Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete replaced questions of exam %d: %w", examID, err)
	}

	if len(questions) == 0 {
		return nil
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "text", "points", "options", "correct_answer", "updated_at"}),
	}).Create(&questions).Error; err != nil {
		return fmt.Errorf("failed to save questions of exam %d: %w", examID, err)
	}
	return nil
}
