package todo

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/lenswise/coachdesk/core"
)

// ErrNotFound is returned when no todo matches the requested ID.
var ErrNotFound = errors.New("todo not found")

type (
	Repository interface {
		CreateTodo(td Todo) (Todo, error)
		GetTodoByID(id string) (Todo, error)
		QueryAllTodos() ([]Todo, error)
		// FilterTodos applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Title or Description.
		FilterTodos(filter QueryFilter, orderings ...core.DBOrdering) ([]Todo, error)
		UpdateTodo(td Todo) (Todo, error)
		DeleteTodosByID(ids ...string) error
	}

	Service struct {
		validate *validator.Validate
		repo     Repository
	}
)

func NewService(validate *validator.Validate, repo Repository) *Service {
	return &Service{validate: validate, repo: repo}
}

func (svc *Service) Create(assignedBy string, nt NewTodo) (Todo, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return Todo{}, err
	}

	now := NowFunc().UTC()
	td := Todo{
		Title:       nt.Title,
		Description: nt.Description,
		Category:    nt.Category,
		Priority:    nt.Priority,
		Status:      StatusPending,
		DueAt:       nt.DueAt.UTC(),
		AssignedTo:  nt.AssignedTo,
		AssignedBy:  assignedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	td, err := svc.repo.CreateTodo(td)
	if err != nil {
		return Todo{}, errors.Wrap(err, "creating todo")
	}
	return td, nil
}

func (svc *Service) GetByID(id string) (Todo, error) {
	return svc.repo.GetTodoByID(id)
}

func (svc *Service) QueryAll() ([]Todo, error) {
	return svc.repo.QueryAllTodos()
}

func (svc *Service) Filter(filter QueryFilter, orderings ...core.DBOrdering) ([]Todo, error) {
	return svc.repo.FilterTodos(filter, orderings...)
}

// Update applies the provided partial fields. CompletedAt is stamped when the
// status transitions into completed and cleared when it transitions out.
func (svc *Service) Update(id string, ut UpdateTodo) (Todo, error) {
	origTodo, err := svc.repo.GetTodoByID(id)
	if err != nil {
		return Todo{}, err
	}
	if err := ut.Validate(origTodo, svc.validate); err != nil {
		return Todo{}, err
	}

	td := origTodo
	td.Title = ut.Title
	if ut.Description != "" {
		td.Description = ut.Description
	}
	if ut.Category != "" {
		td.Category = ut.Category
	}
	if ut.Priority != "" {
		td.Priority = ut.Priority
	}
	if ut.AssignedTo != "" {
		td.AssignedTo = ut.AssignedTo
	}
	if ut.DueAt != nil {
		td.DueAt = ut.DueAt.UTC()
	}

	now := NowFunc().UTC()
	if ut.Status != "" && ut.Status != origTodo.Status {
		td.Status = ut.Status
		switch {
		case ut.Status == StatusCompleted:
			td.CompletedAt = &now
		case origTodo.Status == StatusCompleted:
			td.CompletedAt = nil
		}
	}
	td.UpdatedAt = now

	td, err = svc.repo.UpdateTodo(td)
	if err != nil {
		return Todo{}, errors.Wrap(err, "updating todo")
	}
	return td, nil
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteTodosByID(ids...)
}

// Overdue returns the open todos assigned to userID whose due date has passed.
func (svc *Service) Overdue(userID string) ([]Todo, error) {
	todos, err := svc.repo.FilterTodos(QueryFilter{AssignedTo: userID})
	if err != nil {
		return nil, errors.Wrap(err, "fetching user todos")
	}

	now := NowFunc().UTC()
	var overdue []Todo
	for _, td := range todos {
		if td.IsOpen() && td.DueAt.Before(now) {
			overdue = append(overdue, td)
		}
	}
	return overdue, nil
}
