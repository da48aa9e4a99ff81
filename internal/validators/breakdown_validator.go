// Package validators checks domain models before they reach the store.
// Binding tags on the HTTP inputs catch missing fields; these run the
// stricter format rules.
package validators

import (
	"fmt"
	"regexp"
	"strings"

	"autoassist/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("request_status", validateRequestStatus)
	validate.RegisterValidation("position", validatePosition)
}

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

func validatePhoneNumber(fl validator.FieldLevel) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(fl.Field().String())
	return phonePattern.MatchString(cleaned)
}

func validateRequestStatus(fl validator.FieldLevel) bool {
	return models.RequestStatus(fl.Field().String()).IsValid()
}

func validatePosition(fl validator.FieldLevel) bool {
	switch models.EmployeePosition(fl.Field().String()) {
	case models.PositionDriver, models.PositionMechanic, models.PositionDispatcher, models.PositionManager:
		return true
	}
	return false
}

// ValidationError is one failed field rule.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every failed rule of one Validate call.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Message
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// Fields flattens the errors into the field → message shape the API
// response envelope carries.
func (e ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(e))
	for _, err := range e {
		fields[err.Field] = err.Message
	}
	return fields
}

func ValidateBreakdownRequest(request *models.BreakdownRequest) error {
	return translate(validate.Struct(request))
}

func ValidateEmployee(employee *models.Employee) error {
	return translate(validate.Struct(employee))
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	errors := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		errors = append(errors, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: messageFor(fe),
		})
	}
	return errors
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "phone_number":
		return fmt.Sprintf("%s must be a valid phone number", fe.Field())
	case "request_status":
		return fmt.Sprintf("%s is not a known status", fe.Field())
	case "position":
		return fmt.Sprintf("%s is not a known position", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
