package grading

import (
	"sort"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

// ComputeCourseAverages rolls exam results into one average per course. Every
// result is rescaled onto the 0-20 reference scale and weighted by its exam
// weight. Courses without a qualifying result get a nil average and stay
// pending. Results for courses not in courses are ignored.
func ComputeCourseAverages(results []*models.ExamResult, courses []*models.Course) []*models.CourseAverage {
	type acc struct {
		weighted float64
		weights  float64
		count    int
	}
	byCourse := make(map[uint]*acc, len(courses))

	for _, r := range results {
		if r.CourseID == nil || r.Score == nil || r.MaxScore <= 0 {
			continue
		}
		weight := r.ExamWeight
		if weight <= 0 {
			weight = 1
		}
		a := byCourse[*r.CourseID]
		if a == nil {
			a = &acc{}
			byCourse[*r.CourseID] = a
		}
		a.weighted += Normalize(*r.Score, r.MaxScore) * weight
		a.weights += weight
		a.count++
	}

	averages := make([]*models.CourseAverage, 0, len(courses))
	for _, c := range courses {
		ca := &models.CourseAverage{
			CourseID:   c.ID,
			CourseCode: c.Code,
			CourseName: c.Name,
			Semester:   c.Semester,
			Credits:    c.Credits,
			Status:     models.AveragePending,
		}
		if a := byCourse[c.ID]; a != nil && a.weights > 0 {
			avg := a.weighted / a.weights
			ca.Average = &avg
			ca.ExamCount = a.count
			if avg >= CoursePassMark {
				ca.Status = models.AveragePassed
			}
		}
		averages = append(averages, ca)
	}

	sort.SliceStable(averages, func(i, j int) bool {
		if averages[i].Semester != averages[j].Semester {
			return averages[i].Semester < averages[j].Semester
		}
		return averages[i].CourseCode < averages[j].CourseCode
	})
	return averages
}

// ComputeSemesterAverages rolls course averages into credit-weighted semester
// averages. A semester is validated when it carries credits and at least 80%
// of them belong to passed courses.
func ComputeSemesterAverages(courseAverages []*models.CourseAverage) []*models.SemesterAverage {
	bySemester := make(map[int]*models.SemesterAverage)
	weighted := make(map[int]float64)
	credited := make(map[int]float64)

	for _, ca := range courseAverages {
		s := bySemester[ca.Semester]
		if s == nil {
			s = &models.SemesterAverage{Semester: ca.Semester, Status: models.AveragePending}
			bySemester[ca.Semester] = s
		}
		s.TotalCredits += ca.Credits
		if ca.Status == models.AveragePassed {
			s.ValidatedCredits += ca.Credits
		}
		if ca.Average != nil {
			weighted[ca.Semester] += *ca.Average * ca.Credits
			credited[ca.Semester] += ca.Credits
		}
	}

	semesters := make([]*models.SemesterAverage, 0, len(bySemester))
	for n, s := range bySemester {
		if credited[n] > 0 {
			avg := weighted[n] / credited[n]
			s.Average = &avg
		}
		if s.TotalCredits > 0 && s.ValidatedCredits >= SemesterCreditRatio*s.TotalCredits {
			s.Status = models.AveragePassed
		}
		semesters = append(semesters, s)
	}

	sort.Slice(semesters, func(i, j int) bool {
		return semesters[i].Semester < semesters[j].Semester
	})
	return semesters
}
