// Package dummydb provides in-memory repositories for local development and tests.
package dummydb

import (
	"sync"

	"github.com/lenswise/coachdesk/core/reminder"
	"github.com/lenswise/coachdesk/core/todo"
	"github.com/lenswise/coachdesk/core/user"
)

type (
	DB struct {
		user     *userTable
		reminder *reminderTable
		todo     *todoTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	reminderTable struct {
		sync.RWMutex
		table map[string]*reminder.Reminder
	}

	todoTable struct {
		sync.RWMutex
		table map[string]*todo.Todo
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		reminder: &reminderTable{table: make(map[string]*reminder.Reminder)},
		todo:     &todoTable{table: make(map[string]*todo.Todo)},
	}
	return db, nil
}
