package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance. Field paths use koanf keys.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(validateStorage, StorageConfig{})

	return v
}

// validateStorage requires the connection settings of the selected driver only.
func validateStorage(sl validator.StructLevel) {
	s, ok := sl.Current().Interface().(StorageConfig)
	if !ok {
		return
	}

	switch s.Driver {
	case DriverPostgres:
		if s.Postgres.DSN == "" {
			sl.ReportError(s.Postgres.DSN, "postgres.dsn", "DSN", "required_if", "driver=postgres")
		}
	case DriverRedis:
		if s.Redis.Addr == "" {
			sl.ReportError(s.Redis.Addr, "redis.addr", "Addr", "required_if", "driver=redis")
		}
		if s.Redis.KeyPrefix == "" {
			sl.ReportError(s.Redis.KeyPrefix, "redis.key_prefix", "KeyPrefix", "required_if", "driver=redis")
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
// Validation fails fast - the service should not start with invalid config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator errors to a readable format.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// formatFieldError formats a single field validation error.
func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "timezone":
		return fmt.Sprintf("%s must be an IANA time zone name", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath converts "Config.server.read_timeout" to "server.read_timeout".
func formatFieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return strings.ToLower(namespace)
	}
	return path
}
