package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// Global validator instance
var validate *Validator

// InitValidator initializes the global validator
func InitValidator() {
	v := validator.New()

	_ = v.RegisterValidation("lbkind", validateLeaderboardKind)
	_ = v.RegisterValidation("timerange", validateTimeRange)
	_ = v.RegisterValidation("spendingtype", validateSpendingType)

	validate = &Validator{validate: v}
}

// GetValidator returns the global validator instance
func GetValidator() *Validator {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError flattens validation errors into one user-facing
// message without leaking internal struct names.
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request format"
	}

	parts := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be greater than %s", field, e.Param()))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "lte":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		case "lbkind":
			parts = append(parts, fmt.Sprintf("%s must be a valid leaderboard kind", field))
		case "timerange":
			parts = append(parts, fmt.Sprintf("%s must be a valid time range", field))
		case "spendingtype":
			parts = append(parts, fmt.Sprintf("%s must be spend or transfer", field))
		case "url":
			parts = append(parts, fmt.Sprintf("%s must be a valid url", field))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(parts, "; ")
}

func validateLeaderboardKind(fl validator.FieldLevel) bool {
	return domain.ValidLeaderboardKind(domain.LeaderboardKind(fl.Field().String()))
}

func validateTimeRange(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return domain.ValidTimeRange(domain.TimeRange(value))
}

func validateSpendingType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == domain.SpendingSpend || value == domain.SpendingTransfer
}
