package models

import (
	"time"

	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamDraft      ExamStatus = "draft"
	ExamPublished  ExamStatus = "published"
	ExamInProgress ExamStatus = "in_progress"
	ExamGrading    ExamStatus = "grading"
	ExamCompleted  ExamStatus = "completed"
	ExamCancelled  ExamStatus = "cancelled"
)

// ExamStatuses lists every status in lifecycle order
var ExamStatuses = []ExamStatus{
	ExamDraft,
	ExamPublished,
	ExamInProgress,
	ExamGrading,
	ExamCompleted,
	ExamCancelled,
}

type ExamType string

const (
	ExamTypeQuiz      ExamType = "quiz"
	ExamTypeMidterm   ExamType = "midterm"
	ExamTypeFinal     ExamType = "final"
	ExamTypePractical ExamType = "practical"
	ExamTypeResit     ExamType = "resit"
)

type Exam struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Title           string     `json:"title" gorm:"not null;size:200;index"`
	CourseID        *uint      `json:"course_id" gorm:"index"`
	Type            ExamType   `json:"type" gorm:"size:20"`
	TotalPoints     float64    `json:"total_points" gorm:"not null;default:0"`
	PassingGrade    float64    `json:"passing_grade" gorm:"not null;default:0"`
	Status          ExamStatus `json:"status" gorm:"not null;default:draft;size:20;index"`
	Date            *time.Time `json:"date"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null;default:0"`
	SessionID       *uint      `json:"session_id" gorm:"index"`
	CenterID        *uint      `json:"center_id"`
	AcademicYear    string     `json:"academic_year" gorm:"size:9;index"`

	// Weight of the exam inside its course average; nil means 1
	Weight *float64 `json:"weight"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Version int `json:"version" gorm:"not null;default:1"`

	// Resolved by the repository, not stored
	CourseName *string `json:"course_name,omitempty" gorm:"-"`
}

func (Exam) TableName() string {
	return "exams"
}

// EffectiveWeight returns the exam weight, defaulting to 1
func (e *Exam) EffectiveWeight() float64 {
	if e.Weight == nil || *e.Weight <= 0 {
		return 1
	}
	return *e.Weight
}

// IsTerminal reports whether the exam can no longer change status
func (s ExamStatus) IsTerminal() bool {
	return s == ExamCompleted || s == ExamCancelled
}

// AcceptsGrading reports whether grade writes are allowed for exams in this status
func (s ExamStatus) AcceptsGrading() bool {
	switch s {
	case ExamPublished, ExamInProgress, ExamGrading:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is one of the known statuses
func (s ExamStatus) IsValid() bool {
	for _, known := range ExamStatuses {
		if s == known {
			return true
		}
	}
	return false
}
