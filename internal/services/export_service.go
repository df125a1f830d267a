package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const timeLayout = "2006-01-02 15:04:05"

// ExportService renders results and transcripts as Excel workbooks
type ExportService interface {
	ExportTranscript(ctx context.Context, studentID, academicYear string) ([]byte, error)
	ExportExamResults(ctx context.Context, examID uint) ([]byte, error)
}

type exportService struct {
	repo        repositories.Repository
	aggregation AggregationService
	logger      *slog.Logger
}

func NewExportService(repo repositories.Repository, aggregation AggregationService, logger *slog.Logger) ExportService {
	return &exportService{
		repo:        repo,
		aggregation: aggregation,
		logger:      logger,
	}
}

func (s *exportService) ExportTranscript(ctx context.Context, studentID, academicYear string) ([]byte, error) {
	transcript, err := s.aggregation.Transcript(ctx, studentID, academicYear)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exporting transcript",
		"student_id", studentID,
		"academic_year", academicYear,
		"courses", len(transcript.CourseAverages))

	f := excelize.NewFile()
	defer f.Close()

	courseRows := make([][]interface{}, 0, len(transcript.CourseAverages))
	for _, c := range transcript.CourseAverages {
		courseRows = append(courseRows, []interface{}{
			c.Semester, c.CourseCode, c.CourseName, c.Credits, c.ExamCount, optional(c.Average), string(c.Status),
		})
	}
	if err := writeSheet(f, "Courses", true,
		[]string{"Semester", "Code", "Course", "Credits", "Exams", "Average /20", "Status"},
		courseRows); err != nil {
		return nil, err
	}

	semesterRows := make([][]interface{}, 0, len(transcript.SemesterAverages))
	for _, sa := range transcript.SemesterAverages {
		semesterRows = append(semesterRows, []interface{}{
			sa.Semester, optional(sa.Average), sa.ValidatedCredits, sa.TotalCredits, string(sa.Status),
		})
	}
	if err := writeSheet(f, "Semesters", false,
		[]string{"Semester", "Average /20", "Validated Credits", "Total Credits", "Status"},
		semesterRows); err != nil {
		return nil, err
	}

	return toBytes(f)
}

func (s *exportService) ExportExamResults(ctx context.Context, examID uint) ([]byte, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		return nil, err
	}
	results, err := s.repo.Result().ListByExam(ctx, nil, examID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exporting exam results", "exam_id", exam.ID, "results", len(results))

	f := excelize.NewFile()
	defer f.Close()

	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		passed := "Fail"
		if r.Passed {
			passed = "Pass"
		}
		rows = append(rows, []interface{}{
			r.StudentID, r.AttemptID, optional(r.Score), r.MaxScore, r.Percentage,
			r.LetterGrade, passed, optional(r.IncidentSummary), r.GradedAt.Format(timeLayout),
		})
	}
	if err := writeSheet(f, "Results", true,
		[]string{"Student ID", "Attempt", "Score", "Max Score", "Percentage", "Grade", "Result", "Incidents", "Graded At"},
		rows); err != nil {
		return nil, err
	}

	return toBytes(f)
}

// writeSheet writes a header row followed by rows. The first sheet reuses the
// default sheet of a new workbook.
func writeSheet(f *excelize.File, name string, first bool, headers []string, rows [][]interface{}) error {
	if first {
		if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
			return fmt.Errorf("failed to create Excel sheet: %w", err)
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := writeRow(f, name, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(f, name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// optional dereferences p for a cell, leaving the cell empty when p is nil
func optional[T any](p *T) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
