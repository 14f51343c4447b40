package dummydb

import (
	"strings"

	"github.com/google/uuid"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/todo"
)

type todoRepository struct {
	db *todoTable
}

var _ todo.Repository = (*todoRepository)(nil) // interface compliance check

func NewTodoRepository(db *DB) todo.Repository {
	return &todoRepository{db: db.todo}
}

func (repo *todoRepository) query() []todo.Todo {
	tds := make([]todo.Todo, 0, len(repo.db.table))
	for _, td := range repo.db.table {
		tds = append(tds, *td)
	}
	return tds
}

func (repo *todoRepository) CreateTodo(td todo.Todo) (todo.Todo, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	td.ID = uuid.NewString()
	repo.db.table[td.ID] = &td
	return td, nil
}

func (repo *todoRepository) GetTodoByID(id string) (todo.Todo, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if td, ok := repo.db.table[id]; ok {
		return *td, nil
	}
	return todo.Todo{}, todo.ErrNotFound
}

func (repo *todoRepository) QueryAllTodos() ([]todo.Todo, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *todoRepository) FilterTodos(filter todo.QueryFilter, _ ...core.DBOrdering) ([]todo.Todo, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tds := repo.query()

	if filter.AssignedTo != "" {
		var filtered []todo.Todo
		for _, td := range tds {
			if td.AssignedTo == filter.AssignedTo {
				filtered = append(filtered, td)
			}
		}
		tds = filtered
	}
	if tds != nil && filter.AssignedBy != "" {
		var filtered []todo.Todo
		for _, td := range tds {
			if td.AssignedBy == filter.AssignedBy {
				filtered = append(filtered, td)
			}
		}
		tds = filtered
	}
	if tds != nil && filter.Search != "" {
		search := strings.ToLower(filter.Search)
		var filtered []todo.Todo
		for _, td := range tds {
			if strings.Contains(strings.ToLower(td.Title), search) ||
				strings.Contains(strings.ToLower(td.Description), search) {
				filtered = append(filtered, td)
			}
		}
		tds = filtered
	}
	if tds != nil && filter.Category != "" {
		var filtered []todo.Todo
		for _, td := range tds {
			if td.Category == filter.Category {
				filtered = append(filtered, td)
			}
		}
		tds = filtered
	}
	if tds != nil && filter.Priority != "" {
		var filtered []todo.Todo
		for _, td := range tds {
			if td.Priority == filter.Priority {
				filtered = append(filtered, td)
			}
		}
		tds = filtered
	}
	if tds != nil && filter.Status != "" {
		var filtered []todo.Todo
		for _, td := range tds {
			if td.Status == filter.Status {
				filtered = append(filtered, td)
			}
		}
		tds = filtered
	}
	if tds != nil && !filter.DueFrom.IsZero() {
		timeUTC := filter.DueFrom.UTC()
		var filtered []todo.Todo
		for _, td := range tds {
			if !td.DueAt.Before(timeUTC) {
				filtered = append(filtered, td)
			}
		}
		tds = filtered
	}
	if tds != nil && !filter.DueTo.IsZero() {
		timeUTC := filter.DueTo.UTC()
		var filtered []todo.Todo
		for _, td := range tds {
			if !td.DueAt.After(timeUTC) {
				filtered = append(filtered, td)
			}
		}
		tds = filtered
	}

	return tds, nil
}

func (repo *todoRepository) UpdateTodo(td todo.Todo) (todo.Todo, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[td.ID]; !ok {
		return todo.Todo{}, todo.ErrNotFound
	}
	repo.db.table[td.ID] = &td
	return td, nil
}

func (repo *todoRepository) DeleteTodosByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
