package models

import (
	"time"
)

// ExamResult is the finalized projection of an attempt, upserted by attempt id
type ExamResult struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	AttemptID    uint    `json:"attempt_id" gorm:"not null;uniqueIndex"`
	ExamID       uint    `json:"exam_id" gorm:"not null;index"`
	StudentID    string  `json:"student_id" gorm:"not null;size:255;index:idx_result_student_year"`
	AcademicYear string  `json:"academic_year" gorm:"size:9;index:idx_result_student_year"`
	CourseID     *uint   `json:"course_id" gorm:"index"`
	ExamWeight   float64 `json:"exam_weight" gorm:"not null;default:1"`

	Score        *float64 `json:"score"`
	MaxScore     float64  `json:"max_score"`
	PassingScore float64  `json:"passing_score"`
	Percentage   float64  `json:"percentage"`
	Passed       bool     `json:"passed"`
	LetterGrade  string   `json:"letter_grade" gorm:"size:2"`

	IncidentSummary *string `json:"incident_summary" gorm:"type:text"`
	Feedback        *string `json:"feedback" gorm:"type:text"`

	GradedBy  *string   `json:"graded_by" gorm:"size:255"`
	GradedAt  time.Time `json:"graded_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ExamResult) TableName() string {
	return "exam_results"
}

// Course is the read-only course record needed by aggregation
type Course struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Code     string  `json:"code" gorm:"size:20;index"`
	Name     string  `json:"name" gorm:"size:200"`
	Semester int     `json:"semester" gorm:"not null;index"`
	Credits  float64 `json:"credits" gorm:"not null;default:0"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment links a student to a course for an academic year
type Enrollment struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	StudentID    string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_enrollment"`
	CourseID     uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment"`
	AcademicYear string `json:"academic_year" gorm:"not null;size:9;uniqueIndex:idx_enrollment"`
}

func (Enrollment) TableName() string {
	return "course_enrollments"
}

type AverageStatus string

const (
	AveragePassed  AverageStatus = "passed"
	AveragePending AverageStatus = "pending"
)

type CourseAverage struct {
	CourseID   uint          `json:"course_id"`
	CourseCode string        `json:"course_code,omitempty"`
	CourseName string        `json:"course_name,omitempty"`
	Average    *float64      `json:"average"`
	Semester   int           `json:"semester"`
	Status     AverageStatus `json:"status"`
	Credits    float64       `json:"credits"`
	ExamCount  int           `json:"exam_count"`
}

type SemesterAverage struct {
	Semester         int           `json:"semester"`
	Average          *float64      `json:"average"`
	ValidatedCredits float64       `json:"validated_credits"`
	TotalCredits     float64       `json:"total_credits"`
	Status           AverageStatus `json:"status"`
}

// Transcript bundles both roll-ups for one student and academic year
type Transcript struct {
	StudentID        string            `json:"student_id"`
	AcademicYear     string            `json:"academic_year"`
	CourseAverages   []*CourseAverage   `json:"course_averages"`
	SemesterAverages []*SemesterAverage `json:"semester_averages"`
	ComputedAt       time.Time         `json:"computed_at"`
}
