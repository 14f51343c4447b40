package dummydb

import (
	"strings"

	"github.com/google/uuid"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/reminder"
)

type reminderRepository struct {
	db *reminderTable
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *DB) reminder.Repository {
	return &reminderRepository{db: db.reminder}
}

func (repo *reminderRepository) query() []reminder.Reminder {
	rems := make([]reminder.Reminder, 0, len(repo.db.table))
	for _, rem := range repo.db.table {
		rems = append(rems, *rem)
	}
	return rems
}

func (repo *reminderRepository) CreateReminder(rem reminder.Reminder) (reminder.Reminder, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rem.ID = uuid.NewString()
	repo.db.table[rem.ID] = &rem
	return rem, nil
}

func (repo *reminderRepository) GetReminderByID(id string) (reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rem, ok := repo.db.table[id]; ok {
		return *rem, nil
	}
	return reminder.Reminder{}, reminder.ErrNotFound
}

func (repo *reminderRepository) QueryAllReminders() ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *reminderRepository) QueryRemindersByUser(userID string) ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rems []reminder.Reminder
	for _, rem := range repo.query() {
		if rem.UserID == userID {
			rems = append(rems, rem)
		}
	}
	return rems, nil
}

func (repo *reminderRepository) FilterReminders(filter reminder.QueryFilter, _ ...core.DBOrdering) ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rems := repo.query()

	if filter.UserID != "" {
		var filtered []reminder.Reminder
		for _, rem := range rems {
			if rem.UserID == filter.UserID {
				filtered = append(filtered, rem)
			}
		}
		rems = filtered
	}
	if rems != nil && filter.Search != "" {
		search := strings.ToLower(filter.Search)
		var filtered []reminder.Reminder
		for _, rem := range rems {
			if strings.Contains(strings.ToLower(rem.Title), search) ||
				strings.Contains(strings.ToLower(rem.Description), search) {
				filtered = append(filtered, rem)
			}
		}
		rems = filtered
	}
	if rems != nil && filter.IsActive != nil {
		var filtered []reminder.Reminder
		for _, rem := range rems {
			if rem.IsActive == *filter.IsActive {
				filtered = append(filtered, rem)
			}
		}
		rems = filtered
	}
	if rems != nil && filter.IsRecurring != nil {
		var filtered []reminder.Reminder
		for _, rem := range rems {
			if rem.IsRecurring == *filter.IsRecurring {
				filtered = append(filtered, rem)
			}
		}
		rems = filtered
	}
	if rems != nil && !filter.OccursFrom.IsZero() {
		timeUTC := filter.OccursFrom.UTC()
		var filtered []reminder.Reminder
		for _, rem := range rems {
			if !rem.OccursAt.Before(timeUTC) {
				filtered = append(filtered, rem)
			}
		}
		rems = filtered
	}
	if rems != nil && !filter.OccursTo.IsZero() {
		timeUTC := filter.OccursTo.UTC()
		var filtered []reminder.Reminder
		for _, rem := range rems {
			if !rem.OccursAt.After(timeUTC) {
				filtered = append(filtered, rem)
			}
		}
		rems = filtered
	}

	return rems, nil
}

func (repo *reminderRepository) UpdateReminder(rem reminder.Reminder, isActive *bool) (reminder.Reminder, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origRem, ok := repo.db.table[rem.ID]
	if !ok {
		return reminder.Reminder{}, reminder.ErrNotFound
	}
	if isActive != nil {
		origRem.IsActive = *isActive
	}
	origRem.Title = rem.Title
	origRem.Description = rem.Description
	origRem.OccursAt = rem.OccursAt
	origRem.Timezone = rem.Timezone
	origRem.IsRecurring = rem.IsRecurring
	origRem.Pattern = rem.Pattern
	origRem.UpdatedAt = rem.UpdatedAt

	repo.db.table[rem.ID] = origRem
	return *origRem, nil
}

func (repo *reminderRepository) DeleteRemindersByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
