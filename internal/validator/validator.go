package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the struct tag validator with the custom tags of the grading domain
type Validator struct {
	structValidator *validator.Validate
}

// New creates a validator with every custom tag registered
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// ValidateStruct validates struct tags only and returns the raw validator error
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates s and converts tag failures into ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return ToValidationErrors(fieldErrs)
	}
	return err
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("exam_status", validateExamStatus)
	validate.RegisterValidation("academic_year", validateAcademicYear)

	// Report json field names so messages match the request body
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateExamStatus(fl validator.FieldLevel) bool {
	return models.ExamStatus(fl.Field().String()).IsValid()
}

var academicYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

func validateAcademicYear(fl validator.FieldLevel) bool {
	return ValidAcademicYear(fl.Field().String())
}

// ValidAcademicYear accepts "YYYY-YYYY" where the second year follows the first
func ValidAcademicYear(year string) bool {
	m := academicYearPattern.FindStringSubmatch(year)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) apperrors.ValidationErrors {
	return apperrors.ToValidationErrors(err)
}
