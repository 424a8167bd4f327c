package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/schoolcore/internal/app/calendar"
)

// Custom validation tags
const (
	TagWeekday    = "weekday"
	TagSchoolDate = "schooldate"
)

// Validation rule patterns
var (
	// DatePattern matches the YYYY-MM-DD wire format
	DatePattern = `^\d{4}-\d{2}-\d{2}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Date *regexp.Regexp
}{
	Date: regexp.MustCompile(DatePattern),
}

// New returns a validator with the school rules registered
func New() *validator.Validate {
	v := validator.New()
	// The tags are constant, registration only fails on an empty tag name
	_ = Register(v)
	return v
}

// Register adds the school rules to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagWeekday, validateWeekday); err != nil {
		return err
	}
	return v.RegisterValidation(TagSchoolDate, validateSchoolDate)
}

// validateWeekday accepts a weekday name in any case, surrounding spaces ignored
func validateWeekday(fl validator.FieldLevel) bool {
	return calendar.ValidDayName(strings.ToLower(strings.TrimSpace(fl.Field().String())))
}

// validateSchoolDate accepts a real calendar date written as YYYY-MM-DD
func validateSchoolDate(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if !CompiledPatterns.Date.MatchString(value) {
		return false
	}
	_, err := calendar.ParseDate(value)
	return err == nil
}
