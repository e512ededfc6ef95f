package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Zero-padded 24h clock, e.g. 09:00 or 17:30
	clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

var weekdayNames = map[string]bool{
	"sunday":    true,
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
}

// New returns a validator with every custom tag registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("calendar_date", CalendarDate)
	_ = v.RegisterValidation("clock", Clock)
	_ = v.RegisterValidation("weekday", Weekday)
}

// CalendarDate validates a YYYY-MM-DD date string
func CalendarDate(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	_, err := time.Parse("2006-01-02", val)
	return err == nil
}

// Clock validates an HH:MM time-of-day string
func Clock(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return clockRegex.MatchString(val)
}

// Weekday validates a lowercase English day name
func Weekday(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return weekdayNames[strings.ToLower(val)]
}
