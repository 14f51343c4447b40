package sqlxrepos

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/todo"
)

type todoRepository struct {
	db *sqlx.DB
}

var _ todo.Repository = (*todoRepository)(nil) // interface compliance check

func NewTodoRepository(db *sqlx.DB) todo.Repository {
	return &todoRepository{db: db}
}

const todoColumns = `id, title, description, category, priority, status, due_at, assigned_to, assigned_by, completed_at, created_at, updated_at`

func (repo *todoRepository) CreateTodo(td todo.Todo) (todo.Todo, error) {
	td.ID = uuid.NewString()
	q := `INSERT INTO todo (id, title, description, category, priority, status, due_at, assigned_to, assigned_by, completed_at, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repo.db.Exec(q,
		td.ID, td.Title, td.Description, td.Category, td.Priority, td.Status,
		td.DueAt, td.AssignedTo, td.AssignedBy, td.CompletedAt, td.CreatedAt, td.UpdatedAt,
	)
	if err != nil {
		return todo.Todo{}, err
	}
	return td, nil
}

func (repo *todoRepository) GetTodoByID(id string) (todo.Todo, error) {
	var td todo.Todo
	err := repo.db.Get(&td, `SELECT `+todoColumns+` FROM todo WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return todo.Todo{}, todo.ErrNotFound
		}
		return todo.Todo{}, err
	}
	return td, nil
}

func (repo *todoRepository) QueryAllTodos() ([]todo.Todo, error) {
	var tds []todo.Todo
	if err := repo.db.Select(&tds, `SELECT `+todoColumns+` FROM todo`); err != nil {
		return nil, err
	}
	return tds, nil
}

func (repo *todoRepository) FilterTodos(filter todo.QueryFilter, orderings ...core.DBOrdering) ([]todo.Todo, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AssignedTo != "" {
		conds = append(conds, "assigned_to = "+arg(filter.AssignedTo))
	}
	if filter.AssignedBy != "" {
		conds = append(conds, "assigned_by = "+arg(filter.AssignedBy))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = "+arg(filter.Priority))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if !filter.DueFrom.IsZero() {
		conds = append(conds, "due_at >= "+arg(filter.DueFrom.UTC()))
	}
	if !filter.DueTo.IsZero() {
		conds = append(conds, "due_at <= "+arg(filter.DueTo.UTC()))
	}

	q := `SELECT ` + todoColumns + ` FROM todo` + whereClause(conds) + orderClause(orderings)
	var tds []todo.Todo
	if err := repo.db.Select(&tds, q, args...); err != nil {
		return nil, err
	}
	return tds, nil
}

func (repo *todoRepository) UpdateTodo(td todo.Todo) (todo.Todo, error) {
	q := `UPDATE todo
	      SET title = $2, description = $3, category = $4, priority = $5, status = $6,
	          due_at = $7, assigned_to = $8, completed_at = $9, updated_at = $10
	      WHERE id = $1
	      RETURNING ` + todoColumns
	var saved todo.Todo
	err := repo.db.Get(&saved, q,
		td.ID, td.Title, td.Description, td.Category, td.Priority, td.Status,
		td.DueAt, td.AssignedTo, td.CompletedAt, td.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return todo.Todo{}, todo.ErrNotFound
		}
		return todo.Todo{}, err
	}
	return saved, nil
}

func (repo *todoRepository) DeleteTodosByID(ids ...string) error {
	_, err := repo.db.Exec(`DELETE FROM todo WHERE id = ANY($1)`, pq.Array(ids))
	return err
}
