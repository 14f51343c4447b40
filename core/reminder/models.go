package reminder

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/timeutil"
)

// Recurrence patterns
const (
	PatternDaily   = "daily"
	PatternWeekly  = "weekly"
	PatternMonthly = "monthly"
	PatternYearly  = "yearly"
)

var Patterns = []string{PatternDaily, PatternWeekly, PatternMonthly, PatternYearly}

// NowFunc returns the current time; mockable in tests.
var NowFunc = time.Now

// Reminder is a scheduled, optionally recurring notification owned by one user.
// OccursAt is the canonical UTC instant the reminder fires at; the raw
// date/time strings submitted by users are resolved once on the way in
// (see timeutil.ResolveInstant) and never stored.
type Reminder struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	OccursAt    time.Time `json:"occurs_at" db:"occurs_at"` // UTC
	Timezone    string    `json:"timezone" db:"timezone"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	IsRecurring bool      `json:"is_recurring" db:"is_recurring"`
	Pattern     string    `json:"recurring_pattern,omitempty" db:"pattern"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// LocalOccurrence returns OccursAt as seen in the reminder's own timezone.
func (r *Reminder) LocalOccurrence() (timeutil.LocalDateTime, error) {
	return timeutil.UTCToLocal(r.OccursAt, r.Timezone)
}

// NewReminder contains information needed to create a new Reminder.
// Time accepts either a bare local "HH:MM" or a full RFC3339 instant;
// historical clients still send the bare form.
type NewReminder struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Date        string `json:"reminder_date" validate:"required"`
	Time        string `json:"reminder_time" validate:"required"`
	Timezone    string `json:"timezone" validate:"omitempty,timezone"`
	IsRecurring bool   `json:"is_recurring"`
	Pattern     string `json:"recurring_pattern" validate:"omitempty,oneof=daily weekly monthly yearly"`

	occursAt time.Time // resolved during Validate
}

func (nr *NewReminder) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	nr.Pattern = core.CleanString(nr.Pattern, true /* lower */)
	nr.Timezone = core.CleanString(nr.Timezone)
	if nr.Timezone == "" {
		nr.Timezone = timeutil.CurrentTimezone()
	}

	if err := validate.Struct(nr); err != nil {
		return err
	}

	occursAt, err := timeutil.ResolveInstant(nr.Date, nr.Time, nr.Timezone)
	if err != nil {
		return err
	}
	if !occursAt.After(NowFunc().UTC()) {
		return core.NewValidationError(errReminderInPast,
			core.FieldError{Field: "reminder_date", Error: errReminderInPast.Error()})
	}
	nr.occursAt = occursAt
	return nil
}

// OccursAt returns the canonical instant resolved by Validate.
func (nr *NewReminder) OccursAt() time.Time { return nr.occursAt }

// UpdateReminder defines what information may be provided to modify an
// existing Reminder. Date and Time only move the occurrence when both are
// supplied; they are then combined into the canonical instant before saving,
// so stored records converge on the instant representation over time.
type UpdateReminder struct {
	Title       string `json:"title" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Date        string `json:"reminder_date"`
	Time        string `json:"reminder_time"`
	Timezone    string `json:"timezone" validate:"omitempty,timezone"`
	IsActive    *bool  `json:"is_active"`
	IsRecurring *bool  `json:"is_recurring"`
	Pattern     string `json:"recurring_pattern" validate:"omitempty,oneof=daily weekly monthly yearly"`
}

func (ur *UpdateReminder) Validate(origRem Reminder, validate *validator.Validate) error {
	title := core.CleanString(ur.Title)
	if title != "" {
		ur.Title = title
	} else {
		ur.Title = origRem.Title
	}
	ur.Description = core.CleanString(ur.Description)
	ur.Pattern = core.CleanString(ur.Pattern, true /* lower */)
	ur.Timezone = core.CleanString(ur.Timezone)
	if ur.Timezone == "" {
		ur.Timezone = origRem.Timezone
	}

	if err := validate.Struct(ur); err != nil {
		return err
	}

	// a reminder that ends up recurring must end up with a pattern
	recurring := origRem.IsRecurring
	if ur.IsRecurring != nil {
		recurring = *ur.IsRecurring
	}
	pattern := origRem.Pattern
	if ur.Pattern != "" {
		pattern = ur.Pattern
	}
	if recurring && pattern == "" {
		return core.NewValidationError(errPatternRequired,
			core.FieldError{Field: "recurring_pattern", Error: errPatternRequired.Error()})
	}
	return nil
}

// QueryFilter filters reminders; fields are combined with AND.
type QueryFilter struct {
	UserID      string    `query:"user_id"`
	Search      string    `query:"search"`
	IsActive    *bool     `query:"is_active"`
	IsRecurring *bool     `query:"is_recurring"`
	OccursFrom  time.Time `query:"occurs_from"`
	OccursTo    time.Time `query:"occurs_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.UserID == "" && qf.Search == "" && qf.IsActive == nil && qf.IsRecurring == nil &&
		qf.OccursFrom.IsZero() && qf.OccursTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Stats are per-user reminder counts computed in memory with UTC day
// boundaries. Overdue and DueToday only count active reminders; an active
// reminder may be overdue, so Active+Completed is not guaranteed to equal
// the sum of the other buckets.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Recurring int `json:"recurring"`
	DueToday  int `json:"due_today"`
	Overdue   int `json:"overdue"`
	Completed int `json:"completed"`
}

// ProcessResult reports the outcome of a due-reminder sweep.
type ProcessResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
}
