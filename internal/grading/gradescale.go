// Package grading holds the exam lifecycle rules, the per-question grading
// contract, finalization and the course/semester roll-ups. Everything here is
// a pure function of its inputs; persistence and side effects live in the
// services package.
package grading

import "math"

// GradeBand maps every percentage at or above Min to Letter
type GradeBand struct {
	Min    float64 `json:"min"`
	Letter string  `json:"letter"`
}

// Scale is ordered from the highest band to the lowest
var Scale = []GradeBand{
	{Min: 90, Letter: "A"},
	{Min: 80, Letter: "B"},
	{Min: 70, Letter: "C"},
	{Min: 60, Letter: "D"},
	{Min: 50, Letter: "E"},
}

// FailingLetter is returned below the lowest band
const FailingLetter = "F"

const (
	// NormalizedScale is the reference scale every exam score is rescaled to
	NormalizedScale = 20.0
	// CoursePassMark is the normalized average a course needs to be validated
	CoursePassMark = 10.0
	// SemesterCreditRatio is the share of credits a semester needs to be validated
	SemesterCreditRatio = 0.8
)

// LetterGrade maps a percentage to its letter, first matching band wins
func LetterGrade(percentage float64) string {
	for _, band := range Scale {
		if percentage >= band.Min {
			return band.Letter
		}
	}
	return FailingLetter
}

// Percentage returns score / total × 100, or 0 when total is not positive
func Percentage(score, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return score / total * 100
}

// Passed applies the absolute pass rule: the raw score must reach the passing grade
func Passed(score, passingGrade float64) bool {
	return score >= passingGrade
}

// Normalize rescales score out of maxScore onto the 0-20 reference scale
func Normalize(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return score / maxScore * NormalizedScale
}

// Round2 rounds to two decimals for display
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
