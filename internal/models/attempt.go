package models

import (
	"time"
)

type AttemptStatus string

const (
	AttemptNotStarted AttemptStatus = "not_started"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// Attempt is one student's participation in one exam
type Attempt struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	StudentID     string        `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_attempt_student_exam"`
	ExamID        uint          `json:"exam_id" gorm:"not null;uniqueIndex:idx_attempt_student_exam"`
	Status        AttemptStatus `json:"status" gorm:"not null;default:not_started;size:20;index"`
	HasIncidents  bool          `json:"has_incidents" gorm:"default:false"`
	IncidentCount int           `json:"incident_count" gorm:"default:0"`

	// Written by finalization only
	Graded      bool       `json:"graded" gorm:"default:false;index"`
	Score       *float64   `json:"score"`
	MaxScore    *float64   `json:"max_score"`
	Percentage  *float64   `json:"percentage"`
	LetterGrade *string    `json:"letter_grade" gorm:"size:2"`
	Passed      *bool      `json:"passed"`
	GradedAt    *time.Time `json:"graded_at"`

	StartedAt   *time.Time `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Version int `json:"version" gorm:"not null;default:1"`
}

func (Attempt) TableName() string {
	return "exam_attempts"
}

// Answer is the single answer row of an attempt for one question
type Answer struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	AttemptID  uint    `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	QuestionID uint    `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	Value      *string `json:"value" gorm:"type:text"`

	IsCorrect *bool      `json:"is_correct"`
	Grade     *float64   `json:"grade"`
	Feedback  *string    `json:"feedback" gorm:"type:text"`
	GradedBy  *string    `json:"graded_by" gorm:"size:255"`
	GradedAt  *time.Time `json:"graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Version int `json:"version" gorm:"not null;default:1"`
}

func (Answer) TableName() string {
	return "exam_answers"
}

// IsGraded reports whether the answer carries a grade
func (a *Answer) IsGraded() bool {
	return a.Grade != nil
}
