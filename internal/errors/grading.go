package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IncompleteGradingError is returned when an attempt is finalized before every
// question has a grade.
type IncompleteGradingError struct {
	AttemptID       uint  `json:"attempt_id"`
	QuestionNumbers []int `json:"question_numbers"`
}

func (e *IncompleteGradingError) Error() string {
	numbers := make([]string, len(e.QuestionNumbers))
	for i, n := range e.QuestionNumbers {
		numbers[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("attempt %d has ungraded questions: %s", e.AttemptID, strings.Join(numbers, ", "))
}

// NotFoundError reports a referenced exam, question, attempt or answer that does not exist
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       uint   `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NewNotFoundError creates a not found error for resource
func NewNotFoundError(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConcurrencyConflictError is returned when an optimistic version check fails
type ConcurrencyConflictError struct {
	Resource        string `json:"resource"`
	ID              uint   `json:"id"`
	ExpectedVersion int    `json:"expected_version"`
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s %d was modified concurrently (expected version %d)", e.Resource, e.ID, e.ExpectedVersion)
}

// NewConcurrencyConflictError creates a conflict error for resource
func NewConcurrencyConflictError(resource string, id uint, expectedVersion int) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{Resource: resource, ID: id, ExpectedVersion: expectedVersion}
}

// IsValidation checks if err carries validation errors
func IsValidation(err error) bool {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// IsIncompleteGrading checks if err is an IncompleteGradingError
func IsIncompleteGrading(err error) bool {
	var ige *IncompleteGradingError
	return errors.As(err, &ige)
}

// IsNotFound checks if err is a NotFoundError
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsConflict checks if err is a ConcurrencyConflictError
func IsConflict(err error) bool {
	var cce *ConcurrencyConflictError
	return errors.As(err, &cce)
}
