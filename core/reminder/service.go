package reminder

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/timeutil"
)

var (
	// ErrNotFound is returned (or passed through from the store) when no
	// reminder matches the requested ID.
	ErrNotFound = errors.New("reminder not found")

	defaultDueWindow = 5 * time.Minute
)

type (
	Repository interface {
		CreateReminder(rem Reminder) (Reminder, error)
		GetReminderByID(id string) (Reminder, error)
		QueryAllReminders() ([]Reminder, error)
		QueryRemindersByUser(userID string) ([]Reminder, error)
		// FilterReminders applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Title or Description.
		FilterReminders(filter QueryFilter, orderings ...core.DBOrdering) ([]Reminder, error)
		UpdateReminder(rem Reminder, isActive *bool) (Reminder, error)
		DeleteRemindersByID(ids ...string) error
	}

	// Service orchestrates reminder validation, persistence, due-item
	// discovery and recurrence rollover. All durable state lives behind
	// Repository; a failed store call is wrapped and surfaced to the caller,
	// never retried.
	Service struct {
		validate  *validator.Validate
		repo      Repository
		notifier  core.Notifier
		logger    core.Logger
		dueWindow time.Duration
	}
)

func NewService(validate *validator.Validate, repo Repository, notifier core.Notifier, logger core.Logger, dueWindow time.Duration) *Service {
	if dueWindow <= 0 {
		dueWindow = defaultDueWindow
	}
	return &Service{
		validate:  validate,
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		dueWindow: dueWindow,
	}
}

// Create validates and persists a new reminder for ownerID. Validation
// failures are returned before any store call is made. On success a
// best-effort "scheduled" notification is dispatched asynchronously.
func (svc *Service) Create(ownerID string, nr NewReminder) (Reminder, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Reminder{}, err
	}

	now := NowFunc().UTC()
	rem := Reminder{
		UserID:      ownerID,
		Title:       nr.Title,
		Description: nr.Description,
		OccursAt:    nr.occursAt,
		Timezone:    nr.Timezone,
		IsActive:    true,
		IsRecurring: nr.IsRecurring,
		Pattern:     nr.Pattern,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	rem, err := svc.repo.CreateReminder(rem)
	if err != nil {
		return Reminder{}, errors.Wrap(err, "creating reminder")
	}

	svc.notifier.Notify(&core.Notification{
		UserID:   rem.UserID,
		Title:    "Reminder scheduled",
		Message:  fmt.Sprintf("%q is scheduled for %s", rem.Title, rem.OccursAt.Format(time.RFC3339)),
		Priority: core.NotificationPriorityLow,
	})
	return rem, nil
}

func (svc *Service) GetByID(id string) (Reminder, error) {
	return svc.repo.GetReminderByID(id)
}

func (svc *Service) QueryAll() ([]Reminder, error) {
	return svc.repo.QueryAllReminders()
}

func (svc *Service) Filter(filter QueryFilter, orderings ...core.DBOrdering) ([]Reminder, error) {
	return svc.repo.FilterReminders(filter, orderings...)
}

// Update applies the provided partial fields. When both a date and a time are
// supplied they are combined into the canonical UTC instant before saving.
func (svc *Service) Update(id string, ur UpdateReminder) (Reminder, error) {
	origRem, err := svc.repo.GetReminderByID(id)
	if err != nil {
		return Reminder{}, err
	}
	if err := ur.Validate(origRem, svc.validate); err != nil {
		return Reminder{}, err
	}

	rem := origRem
	rem.Title = ur.Title
	if ur.Description != "" {
		rem.Description = ur.Description
	}
	rem.Timezone = ur.Timezone
	if ur.IsRecurring != nil {
		rem.IsRecurring = *ur.IsRecurring
	}
	if ur.Pattern != "" {
		rem.Pattern = ur.Pattern
	}
	if ur.Date != "" && ur.Time != "" {
		occursAt, err := timeutil.ResolveInstant(ur.Date, ur.Time, rem.Timezone)
		if err != nil {
			return Reminder{}, err
		}
		rem.OccursAt = occursAt
	}
	rem.UpdatedAt = NowFunc().UTC()

	rem, err = svc.repo.UpdateReminder(rem, ur.IsActive)
	if err != nil {
		return Reminder{}, errors.Wrap(err, "updating reminder")
	}
	return rem, nil
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteRemindersByID(ids...)
}

// Due returns the active reminders whose instant falls in (now, now+window].
// The full active set is fetched and filtered in memory; no store-side time
// filter is assumed reliable.
func (svc *Service) Due(window ...time.Duration) ([]Reminder, error) {
	win := svc.dueWindow
	if len(window) > 0 && window[0] > 0 {
		win = window[0]
	}

	active := true
	rems, err := svc.repo.FilterReminders(QueryFilter{IsActive: &active})
	if err != nil {
		return nil, errors.Wrap(err, "fetching active reminders")
	}

	now := NowFunc().UTC()
	deadline := now.Add(win)
	var due []Reminder
	for _, rem := range rems {
		if rem.OccursAt.After(now) && !rem.OccursAt.After(deadline) {
			due = append(due, rem)
		}
	}
	return due, nil
}

// ProcessDue dispatches a notification for every due reminder, then rolls
// recurring reminders forward to their next occurrence and deactivates
// one-shot reminders. A failure on one reminder is logged and skipped;
// it never aborts the rest of the batch.
func (svc *Service) ProcessDue() (ProcessResult, error) {
	due, err := svc.Due()
	if err != nil {
		return ProcessResult{}, err
	}

	var res ProcessResult
	for _, rem := range due {
		res.Processed++

		svc.notifier.Notify(&core.Notification{
			UserID:   rem.UserID,
			Title:    rem.Title,
			Message:  rem.Description,
			Priority: core.NotificationPriorityHigh,
		})
		res.Sent++

		if rem.IsRecurring {
			next, err := NextOccurrence(rem.OccursAt, rem.Pattern)
			if err != nil {
				svc.logger.Error(fmt.Sprintf("rolling reminder %s forward: %v", rem.ID, err), err)
				continue
			}
			rem.OccursAt = next
			rem.UpdatedAt = NowFunc().UTC()
			if _, err := svc.repo.UpdateReminder(rem, nil); err != nil {
				svc.logger.Error(fmt.Sprintf("saving next occurrence of reminder %s: %v", rem.ID, err), err)
			}
			continue
		}

		// one-shot reminders go inactive once fired
		inactive := false
		rem.UpdatedAt = NowFunc().UTC()
		if _, err := svc.repo.UpdateReminder(rem, &inactive); err != nil {
			svc.logger.Error(fmt.Sprintf("deactivating fired reminder %s: %v", rem.ID, err), err)
		}
	}
	return res, nil
}

// Stats computes per-user reminder counts in memory, using a UTC day
// boundary for "today".
func (svc *Service) Stats(userID string) (Stats, error) {
	rems, err := svc.repo.QueryRemindersByUser(userID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "fetching user reminders")
	}

	now := NowFunc().UTC()
	dayStart := now.Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var stats Stats
	for _, rem := range rems {
		stats.Total++
		if rem.IsRecurring {
			stats.Recurring++
		}
		if !rem.IsActive {
			stats.Completed++
			continue
		}
		stats.Active++
		if rem.OccursAt.Before(now) {
			stats.Overdue++
		}
		if !rem.OccursAt.Before(dayStart) && rem.OccursAt.Before(dayEnd) {
			stats.DueToday++
		}
	}
	return stats, nil
}
