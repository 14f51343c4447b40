package todo

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lenswise/coachdesk/core"
)

// Categories
const (
	CategoryGeneral   = "general"
	CategoryCoaching  = "coaching"
	CategorySales     = "sales"
	CategoryAdmin     = "admin"
	CategoryFollowUp  = "follow_up"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// NowFunc returns the current time; mockable in tests.
var NowFunc = time.Now

// Todo is a unit of work assigned by one user to another (or to themselves).
// CompletedAt is set exactly when Status transitions to completed and cleared
// when it leaves completed.
type Todo struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Category    string     `json:"category" db:"category"`
	Priority    string     `json:"priority" db:"priority"`
	Status      string     `json:"status" db:"status"`
	DueAt       time.Time  `json:"due_at" db:"due_at"` // UTC
	AssignedTo  string     `json:"assigned_to" db:"assigned_to"`
	AssignedBy  string     `json:"assigned_by" db:"assigned_by"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"` // UTC
}

func (td *Todo) IsOpen() bool {
	return td.Status == StatusPending || td.Status == StatusInProgress
}

// NewTodo contains information needed to create a new Todo.
type NewTodo struct {
	Title       string    `json:"title" validate:"required,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	Category    string    `json:"category" validate:"omitempty,oneof=general coaching sales admin follow_up"`
	Priority    string    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueAt       time.Time `json:"due_at" validate:"required"`
	AssignedTo  string    `json:"assigned_to" validate:"required"`
}

func (nt *NewTodo) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Category = core.CleanString(nt.Category, true /* lower */)
	nt.Priority = core.CleanString(nt.Priority, true /* lower */)
	if nt.Category == "" {
		nt.Category = CategoryGeneral
	}
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	return validate.Struct(nt)
}

// UpdateTodo defines what information may be provided to modify an existing Todo.
type UpdateTodo struct {
	Title       string     `json:"title" validate:"omitempty,max=100"`
	Description string     `json:"description" validate:"omitempty,max=500"`
	Category    string     `json:"category" validate:"omitempty,oneof=general coaching sales admin follow_up"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	DueAt       *time.Time `json:"due_at"`
	AssignedTo  string     `json:"assigned_to"`
}

func (ut *UpdateTodo) Validate(origTodo Todo, validate *validator.Validate) error {
	title := core.CleanString(ut.Title)
	if title != "" {
		ut.Title = title
	} else {
		ut.Title = origTodo.Title
	}
	ut.Description = core.CleanString(ut.Description)
	ut.Category = core.CleanString(ut.Category, true /* lower */)
	ut.Priority = core.CleanString(ut.Priority, true /* lower */)
	ut.Status = core.CleanString(ut.Status, true /* lower */)
	return validate.Struct(ut)
}

// QueryFilter filters todos; fields are combined with AND.
type QueryFilter struct {
	AssignedTo string    `query:"assigned_to"`
	AssignedBy string    `query:"assigned_by"`
	Search     string    `query:"search"`
	Category   string    `query:"category"`
	Priority   string    `query:"priority"`
	Status     string    `query:"status"`
	DueFrom    time.Time `query:"due_from"`
	DueTo      time.Time `query:"due_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.AssignedTo == "" && qf.AssignedBy == "" && qf.Search == "" &&
		qf.Category == "" && qf.Priority == "" && qf.Status == "" &&
		qf.DueFrom.IsZero() && qf.DueTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.Priority = core.CleanString(qf.Priority, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
