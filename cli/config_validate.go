package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ErrValidationFailed is returned when struct validation fails.
var ErrValidationFailed = errors.New("validation failed")

// configValidator is the package-level validator instance
var configValidator *validator.Validate

// extensionIDPattern matches marketplace identifiers such as
// "james-yu.latex-workshop".
var extensionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*\.[A-Za-z0-9][A-Za-z0-9._-]*(@[A-Za-z0-9.+-]+)?$`)

func init() {
	configValidator = validator.New()

	_ = configValidator.RegisterValidation("extensionid", validateExtensionID)
	_ = configValidator.RegisterValidation("envpair", validateEnvPair)
	_ = configValidator.RegisterValidation("loglevel", validateLogLevel)
}

// ValidateConfig validates a configuration struct using struct tags
func ValidateConfig(cfg any) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatValidationError(e))
	}
	return fmt.Errorf("%w:\n  %s", ErrValidationFailed, strings.Join(messages, "\n  "))
}

func formatValidationError(e validator.FieldError) string {
	field := e.Namespace()
	value := e.Value()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: required field is empty", field)
	case "gte":
		return fmt.Sprintf("%s: must be >= %s (got: %v)", field, e.Param(), value)
	case "url":
		return fmt.Sprintf("%s: must be a valid URL (got: %v)", field, value)
	case "extensionid":
		return fmt.Sprintf("%s: must be publisher.name or a .vsix path (got: %v)", field, value)
	case "envpair":
		return fmt.Sprintf("%s: must have the form KEY=VALUE (got: %v)", field, value)
	case "loglevel":
		return fmt.Sprintf("%s: unknown log level (got: %v)", field, value)
	default:
		return fmt.Sprintf("%s: validation '%s' failed (got: %v)", field, e.Tag(), value)
	}
}

// validateExtensionID accepts marketplace identifiers and local .vsix files
func validateExtensionID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.HasSuffix(strings.ToLower(value), ".vsix") {
		return true
	}
	return extensionIDPattern.MatchString(value)
}

func validateEnvPair(fl validator.FieldLevel) bool {
	key, _, ok := strings.Cut(fl.Field().String(), "=")
	return ok && strings.TrimSpace(key) != ""
}

func validateLogLevel(fl validator.FieldLevel) bool {
	_, err := logrus.ParseLevel(strings.ToLower(fl.Field().String()))
	return err == nil
}
