package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	// Schedules
	"Type":           "Schedule type",
	"Date":           "Date",
	"Slots":          "Time slots",
	"Days":           "Weekly days",
	"DayOfWeek":      "Day of week",
	"StartTime":      "Start time",
	"EndTime":        "End time",
	"EffectiveFrom":  "Effective from",
	"EffectiveUntil": "Effective until",
	"RuleID":         "Recurring rule",

	// Interviews
	"ApplicationID":  "Application",
	"JobSeekerID":    "Job seeker",
	"EmployerID":     "Employer",
	"JobID":          "Job",
	"Reason":         "Cancellation reason",
	"AdditionalInfo": "Additional information",
	"Result":         "Interview result",
	"Feedback":       "Feedback",
	"MeetingLink":    "Meeting link",
	"Notes":          "Notes",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var messages []string

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}

	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s: is required", label)
	case "min":
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s: at least %s entries", label, param)
		}
		return fmt.Sprintf("%s: minimum %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: maximum %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "url":
		return fmt.Sprintf("%s: invalid URL", label)
	case "calendar_date":
		return fmt.Sprintf("%s: must be a date in YYYY-MM-DD format", label)
	case "clock":
		return fmt.Sprintf("%s: must be a time in HH:MM format", label)
	case "weekday":
		return fmt.Sprintf("%s: must be a day name such as monday", label)
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", label, param)
	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
