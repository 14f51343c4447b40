package sqlxrepos

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/reminder"
)

type reminderRepository struct {
	db *sqlx.DB
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *sqlx.DB) reminder.Repository {
	return &reminderRepository{db: db}
}

const reminderColumns = `id, user_id, title, description, occurs_at, timezone, is_active, is_recurring, pattern, created_at, updated_at`

func (repo *reminderRepository) CreateReminder(rem reminder.Reminder) (reminder.Reminder, error) {
	rem.ID = uuid.NewString()
	q := `INSERT INTO reminder (id, user_id, title, description, occurs_at, timezone, is_active, is_recurring, pattern, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.Exec(q,
		rem.ID, rem.UserID, rem.Title, rem.Description, rem.OccursAt,
		rem.Timezone, rem.IsActive, rem.IsRecurring, rem.Pattern, rem.CreatedAt, rem.UpdatedAt,
	)
	if err != nil {
		return reminder.Reminder{}, err
	}
	return rem, nil
}

func (repo *reminderRepository) GetReminderByID(id string) (reminder.Reminder, error) {
	var rem reminder.Reminder
	err := repo.db.Get(&rem, `SELECT `+reminderColumns+` FROM reminder WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return reminder.Reminder{}, reminder.ErrNotFound
		}
		return reminder.Reminder{}, err
	}
	return rem, nil
}

func (repo *reminderRepository) QueryAllReminders() ([]reminder.Reminder, error) {
	var rems []reminder.Reminder
	if err := repo.db.Select(&rems, `SELECT `+reminderColumns+` FROM reminder`); err != nil {
		return nil, err
	}
	return rems, nil
}

func (repo *reminderRepository) QueryRemindersByUser(userID string) ([]reminder.Reminder, error) {
	var rems []reminder.Reminder
	err := repo.db.Select(&rems, `SELECT `+reminderColumns+` FROM reminder WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	return rems, nil
}

func (repo *reminderRepository) FilterReminders(filter reminder.QueryFilter, orderings ...core.DBOrdering) ([]reminder.Reminder, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		conds = append(conds, "user_id = "+arg(filter.UserID))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}
	if filter.IsRecurring != nil {
		conds = append(conds, "is_recurring = "+arg(*filter.IsRecurring))
	}
	if !filter.OccursFrom.IsZero() {
		conds = append(conds, "occurs_at >= "+arg(filter.OccursFrom.UTC()))
	}
	if !filter.OccursTo.IsZero() {
		conds = append(conds, "occurs_at <= "+arg(filter.OccursTo.UTC()))
	}

	q := `SELECT ` + reminderColumns + ` FROM reminder` + whereClause(conds) + orderClause(orderings)
	var rems []reminder.Reminder
	if err := repo.db.Select(&rems, q, args...); err != nil {
		return nil, err
	}
	return rems, nil
}

func (repo *reminderRepository) UpdateReminder(rem reminder.Reminder, isActive *bool) (reminder.Reminder, error) {
	q := `UPDATE reminder
	      SET title = $2, description = $3, occurs_at = $4, timezone = $5,
	          is_recurring = $6, pattern = $7, is_active = COALESCE($8, is_active), updated_at = $9
	      WHERE id = $1
	      RETURNING ` + reminderColumns
	var saved reminder.Reminder
	err := repo.db.Get(&saved, q,
		rem.ID, rem.Title, rem.Description, rem.OccursAt, rem.Timezone,
		rem.IsRecurring, rem.Pattern, isActive, rem.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return reminder.Reminder{}, reminder.ErrNotFound
		}
		return reminder.Reminder{}, err
	}
	return saved, nil
}

func (repo *reminderRepository) DeleteRemindersByID(ids ...string) error {
	_, err := repo.db.Exec(`DELETE FROM reminder WHERE id = ANY($1)`, pq.Array(ids))
	return err
}
