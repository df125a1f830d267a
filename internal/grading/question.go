package grading

import (
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/models"
)

// ValidateQuestion checks the structural rules of a single question. Field
// names are prefixed with prefix so a whole question set can be reported at once.
func ValidateQuestion(q *models.Question, prefix string) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if !q.Type.IsValid() {
		errs.Add(prefix+"type", "must be a valid question type (multiple_choice, short_answer, essay)", q.Type)
		return errs
	}

	if q.Points <= 0 {
		errs.Add(prefix+"points", "must be greater than 0", q.Points)
	}

	if q.Type == models.MultipleChoice {
		errs = append(errs, validateOptions(q, prefix)...)
		return errs
	}

	if len(q.Options) > 0 {
		errs.Add(prefix+"options", fmt.Sprintf("must be empty for %s questions", q.Type), len(q.Options))
	}
	if q.CorrectAnswer != nil {
		errs.Add(prefix+"correct_answer", fmt.Sprintf("must be empty for %s questions", q.Type), *q.CorrectAnswer)
	}

	return errs
}

func validateOptions(q *models.Question, prefix string) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	ids := make(map[string]bool, len(q.Options))
	texts := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		id := strings.TrimSpace(opt.ID)
		text := strings.TrimSpace(opt.Text)
		if id == "" || text == "" {
			errs.Add(prefix+"options", "option id and text cannot be empty", opt)
			continue
		}
		if ids[id] {
			errs.Add(prefix+"options", fmt.Sprintf("duplicate option id %q", id), opt)
		}
		if texts[strings.ToLower(text)] {
			errs.Add(prefix+"options", fmt.Sprintf("duplicate option text %q", text), opt)
		}
		ids[id] = true
		texts[strings.ToLower(text)] = true
	}

	if len(q.Options) < 2 {
		errs.Add(prefix+"options", "must have at least 2 options", len(q.Options))
	}

	switch {
	case q.CorrectAnswer == nil || strings.TrimSpace(*q.CorrectAnswer) == "":
		errs.Add(prefix+"correct_answer", "is required for multiple_choice questions", nil)
	case !q.HasOption(*q.CorrectAnswer):
		errs.Add(prefix+"correct_answer", "must be one of the option ids", *q.CorrectAnswer)
	}

	return errs
}

// ValidateQuestionSet checks every question and that numbers run 1..N without gaps
func ValidateQuestionSet(questions []*models.Question) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	seen := make(map[int]bool, len(questions))
	for i, q := range questions {
		errs = append(errs, ValidateQuestion(q, fmt.Sprintf("questions[%d].", i))...)
		if seen[q.Number] {
			errs.Add(fmt.Sprintf("questions[%d].number", i), fmt.Sprintf("duplicate question number %d", q.Number), q.Number)
		}
		seen[q.Number] = true
	}

	for n := 1; n <= len(questions); n++ {
		if !seen[n] {
			errs.Add("questions", fmt.Sprintf("question numbers must run from 1 to %d, missing %d", len(questions), n), n)
			break
		}
	}

	return errs
}
