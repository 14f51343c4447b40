package reminder

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/lenswise/coachdesk/core"
)

var (
	patternRequiredTag  = "patternrequired"
	patternRequiredText = "a recurrence pattern is required for recurring reminders"

	// errors
	errReminderInPast  = errors.New("a reminder cannot be set in the past")
	errPatternRequired = errors.New(patternRequiredText)
)

// RegisterValidators registers reminder-specific validations on the given instance.
func RegisterValidators(validate *validator.Validate) {
	validate.RegisterStructValidation(newReminderStructValidation, NewReminder{})
	core.RegisterCustomTranslation(validate, patternRequiredTag, patternRequiredText)
}

// newReminderStructValidation checks that a recurring reminder comes with a pattern.
func newReminderStructValidation(sl validator.StructLevel) {
	if nr, ok := sl.Current().Interface().(NewReminder); ok {
		if nr.IsRecurring && nr.Pattern == "" {
			sl.ReportError(nr.Pattern, "recurring_pattern", "Pattern", patternRequiredTag, "")
		}
	}
}
