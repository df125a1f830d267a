package grading

import (
	"time"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool { return &b }
func uintPtr(u uint) *uint { return &u }

func mcQuestion(id uint, number int, points float64, correct string) *models.Question {
	return &models.Question{
		ID:     id,
		ExamID: 1,
		Number: number,
		Type:   models.MultipleChoice,
		Text:   "Pick one",
		Points: points,
		Options: datatypes.JSONSlice[models.QuestionOption]{
			{ID: "a", Text: "Alpha"},
			{ID: "b", Text: "Beta"},
			{ID: "c", Text: "Gamma"},
		},
		CorrectAnswer: strPtr(correct),
	}
}

func essayQuestion(id uint, number int, points float64) *models.Question {
	return &models.Question{
		ID:     id,
		ExamID: 1,
		Number: number,
		Type:   models.Essay,
		Text:   "Discuss",
		Points: points,
	}
}

func publishableExam() *models.Exam {
	date := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	return &models.Exam{
		ID:              1,
		Title:           "Algorithms midterm",
		CourseID:        uintPtr(7),
		Type:            models.ExamTypeMidterm,
		TotalPoints:     20,
		PassingGrade:    10,
		Status:          models.ExamDraft,
		Date:            &date,
		DurationMinutes: 90,
		SessionID:       uintPtr(3),
		AcademicYear:    "2025-2026",
	}
}

func gradedAnswer(id, attemptID, questionID uint, grade float64) *models.Answer {
	return &models.Answer{
		ID:         id,
		AttemptID:  attemptID,
		QuestionID: questionID,
		Value:      strPtr("x"),
		Grade:      floatPtr(grade),
	}
}
