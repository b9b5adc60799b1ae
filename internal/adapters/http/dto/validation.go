package dto

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// jsonTagParts is the number of parts when splitting a JSON tag by comma.
const jsonTagParts = 2

// Validation errors.
var (
	// ErrValidation indicates a validation failure occurred.
	ErrValidation = errors.New("validation failed")

	// ErrBinding indicates the body could not be decoded.
	ErrBinding = errors.New("binding failed")
)

// datePattern is the accepted published date shape. Calendar validity is checked separately.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var (
	// validate is the singleton validator instance.
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the singleton validator instance.
// It initializes the validator with custom validations on first call.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use JSON tag names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", jsonTagParts)[0]
			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation("datepattern", validateDatePattern)
		_ = validate.RegisterValidation("calendardate", validateCalendarDate)
	})

	return validate
}

// Validate validates a struct using the validator instance.
func Validate(v any) error {
	err := Validator().Struct(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate binds the JSON body to v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	err := c.ShouldBindJSON(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// MessageOverrider lets a request type replace the generic validation
// messages. Keys are "field.tag".
type MessageOverrider interface {
	FieldMessages() map[string]string
}

// ValidationErrors extracts one message per failing field from a validator
// error. Overrides take precedence over the generic messages.
func ValidationErrors(err error, overrides map[string]string) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			fieldName := fieldErr.Field()
			if msg, ok := overrides[fieldName+"."+fieldErr.Tag()]; ok {
				fieldErrors[fieldName] = msg
				continue
			}
			fieldErrors[fieldName] = validationMessage(fieldErr)
		}
	}

	return fieldErrors
}

// IsValidationError checks if the error carries validator field errors.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

// validationMessages maps validation tags to message templates.
// Use {param} as placeholder for the validation parameter.
var validationMessages = map[string]string{
	"required":     "this field is required",
	"datepattern":  "must follow yyyy-MM-dd format",
	"calendardate": "must be a valid date",
	"gte":          "must be greater than or equal to {param}",
	"lte":          "must be less than or equal to {param}",
	"oneof":        "must be one of: {param}",
}

// validationMessage returns a human-readable message for a validation error.
func validationMessage(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	if tag == "min" || tag == "max" {
		return minMaxMessage(tag, param, fe.Type().Kind())
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", param)
	}

	return "failed validation: " + tag
}

// minMaxMessage returns the appropriate message for min/max validation.
func minMaxMessage(tag, param string, kind reflect.Kind) string {
	suffix := ""
	if kind == reflect.String {
		suffix = " characters"
	}

	if tag == "min" {
		return "must be at least " + param + suffix
	}

	return "must be at most " + param + suffix
}

// validateDatePattern checks the yyyy-MM-dd shape. Empty is left to "required".
func validateDatePattern(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || datePattern.MatchString(value)
}

// validateCalendarDate checks that the value names a real day, e.g. rejects 2023-13-45.
func validateCalendarDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	_, err := civil.ParseDate(value)

	return err == nil
}
