package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MockRepository hands out one testify mock per store. WithTransaction runs
// fn directly so expectations on the stores still apply.
type MockRepository struct {
	exams     *MockExamRepository
	questions *MockQuestionRepository
	attempts  *MockAttemptRepository
	answers   *MockAnswerRepository
	results   *MockResultRepository
	courses   *MockCourseRepository
	audit     *MockAuditRepository

	transactions int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		exams:     &MockExamRepository{},
		questions: &MockQuestionRepository{},
		attempts:  &MockAttemptRepository{},
		answers:   &MockAnswerRepository{},
		results:   &MockResultRepository{},
		courses:   &MockCourseRepository{},
		audit:     &MockAuditRepository{},
	}
}

func (m *MockRepository) Exam() repositories.ExamRepository         { return m.exams }
func (m *MockRepository) Question() repositories.QuestionRepository { return m.questions }
func (m *MockRepository) Attempt() repositories.AttemptRepository   { return m.attempts }
func (m *MockRepository) Answer() repositories.AnswerRepository     { return m.answers }
func (m *MockRepository) Result() repositories.ResultRepository     { return m.results }
func (m *MockRepository) Course() repositories.CourseRepository     { return m.courses }
func (m *MockRepository) Audit() repositories.AuditRepository       { return m.audit }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	m.transactions++
	return fn(nil)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

// MockAuditRepository records every entry instead of asserting on it
type MockAuditRepository struct {
	mock.Mock
	entries []*models.AuditLog
	err     error
}

func (m *MockAuditRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuditRepository) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.AuditLog, error) {
	args := m.Called(examID)
	entries, _ := args.Get(0).([]*models.AuditLog)
	return entries, args.Error(1)
}

func (m *MockAuditRepository) actions() []models.AuditAction {
	actions := make([]models.AuditAction, len(m.entries))
	for i, e := range m.entries {
		actions[i] = e.Action
	}
	return actions
}

type MockExamRepository struct{ mock.Mock }

func (m *MockExamRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	args := m.Called(id)
	if exam, ok := args.Get(0).(*models.Exam); ok {
		return exam, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockExamRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, exam *models.Exam, to models.ExamStatus) error {
	if err := m.Called(exam.ID, to).Error(0); err != nil {
		return err
	}
	exam.Status = to
	exam.Version++
	return nil
}

func (m *MockExamRepository) UpdateTotalPoints(ctx context.Context, tx *gorm.DB, exam *models.Exam, totalPoints float64) error {
	if err := m.Called(exam.ID, totalPoints).Error(0); err != nil {
		return err
	}
	exam.TotalPoints = totalPoints
	exam.Version++
	return nil
}

type MockQuestionRepository struct{ mock.Mock }

func (m *MockQuestionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	args := m.Called(id)
	if q, ok := args.Get(0).(*models.Question); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error) {
	args := m.Called(examID)
	questions, _ := args.Get(0).([]*models.Question)
	return questions, args.Error(1)
}

func (m *MockQuestionRepository) ReplaceForExam(ctx context.Context, tx *gorm.DB, examID uint, questions []*models.Question) error {
	return m.Called(examID, questions).Error(0)
}

// MockAttemptRepository records the attempts marked for regrading instead of
// asserting on them
type MockAttemptRepository struct {
	mock.Mock
	regraded []uint
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	args := m.Called(id)
	if a, ok := args.Get(0).(*models.Attempt); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAttemptRepository) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Attempt, error) {
	args := m.Called(examID)
	attempts, _ := args.Get(0).([]*models.Attempt)
	return attempts, args.Error(1)
}

func (m *MockAttemptRepository) CountByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error) {
	args := m.Called(examID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) UpdateScore(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	if err := m.Called(attempt).Error(0); err != nil {
		return err
	}
	attempt.Version++
	return nil
}

func (m *MockAttemptRepository) MarkForRegrade(ctx context.Context, tx *gorm.DB, attemptIDs ...uint) error {
	m.regraded = append(m.regraded, attemptIDs...)
	return nil
}

type MockAnswerRepository struct{ mock.Mock }

func (m *MockAnswerRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	args := m.Called(id)
	if a, ok := args.Get(0).(*models.Answer); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnswerRepository) ListByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	args := m.Called(attemptID)
	answers, _ := args.Get(0).([]*models.Answer)
	return answers, args.Error(1)
}

func (m *MockAnswerRepository) UpdateGrade(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	if err := m.Called(answer).Error(0); err != nil {
		return err
	}
	answer.Version++
	return nil
}

func (m *MockAnswerRepository) AttemptIDsByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]uint, error) {
	args := m.Called(examID)
	ids, _ := args.Get(0).([]uint)
	return ids, args.Error(1)
}

func (m *MockAnswerRepository) DeleteByQuestions(ctx context.Context, tx *gorm.DB, questionIDs []uint) error {
	return m.Called(questionIDs).Error(0)
}

func (m *MockAnswerRepository) ResetGrades(ctx context.Context, tx *gorm.DB, questionIDs []uint) error {
	return m.Called(questionIDs).Error(0)
}

func (m *MockAnswerRepository) CreateBlank(ctx context.Context, tx *gorm.DB, attemptIDs, questionIDs []uint) error {
	return m.Called(attemptIDs, questionIDs).Error(0)
}

type MockResultRepository struct{ mock.Mock }

func (m *MockResultRepository) Upsert(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error {
	return m.Called(result).Error(0)
}

func (m *MockResultRepository) ListByStudent(ctx context.Context, tx *gorm.DB, studentID, academicYear string) ([]*models.ExamResult, error) {
	args := m.Called(studentID, academicYear)
	results, _ := args.Get(0).([]*models.ExamResult)
	return results, args.Error(1)
}

func (m *MockResultRepository) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ExamResult, error) {
	args := m.Called(examID)
	results, _ := args.Get(0).([]*models.ExamResult)
	return results, args.Error(1)
}

type MockCourseRepository struct{ mock.Mock }

func (m *MockCourseRepository) ListByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Course, error) {
	args := m.Called(ids)
	courses, _ := args.Get(0).([]*models.Course)
	return courses, args.Error(1)
}

func (m *MockCourseRepository) ListEnrolled(ctx context.Context, tx *gorm.DB, studentID, academicYear string) ([]*models.Course, error) {
	args := m.Called(studentID, academicYear)
	courses, _ := args.Get(0).([]*models.Course)
	return courses, args.Error(1)
}

type MockAggregationService struct{ mock.Mock }

func (m *MockAggregationService) Transcript(ctx context.Context, studentID, academicYear string) (*models.Transcript, error) {
	args := m.Called(studentID, academicYear)
	if t, ok := args.Get(0).(*models.Transcript); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAggregationService) Invalidate(ctx context.Context, studentID string) error {
	return m.Called(studentID).Error(0)
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }
func uintPtr(u uint) *uint        { return &u }
func intPtr(i int) *int           { return &i }

const ownerID = "teacher-1"

func draftExam() *models.Exam {
	date := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	return &models.Exam{
		ID:              1,
		Title:           "Networks final",
		CourseID:        uintPtr(7),
		Type:            models.ExamTypeFinal,
		TotalPoints:     20,
		PassingGrade:    10,
		Status:          models.ExamDraft,
		Date:            &date,
		DurationMinutes: 120,
		SessionID:       uintPtr(3),
		AcademicYear:    "2025-2026",
		CreatedBy:       ownerID,
		Version:         1,
	}
}

func examIn(status models.ExamStatus) *models.Exam {
	exam := draftExam()
	exam.Status = status
	return exam
}

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
		},
		CorrectAnswer: strPtr(correct),
	}
}

func essayQuestion(id uint, number int, points float64) *models.Question {
	return &models.Question{ID: id, ExamID: 1, Number: number, Type: models.Essay, Text: "Discuss", Points: points}
}

func submittedAttempt(id uint, studentID string) *models.Attempt {
	return &models.Attempt{ID: id, ExamID: 1, StudentID: studentID, Status: models.AttemptSubmitted, Version: 1}
}
