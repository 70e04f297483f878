package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultProjectColor is used when a project has no colour of its own
const DefaultProjectColor = "#4f46e5"

// DateLayout is the wire format for due dates
const DateLayout = "2006-01-02"

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// TaskStatuses lists the statuses in board order
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

func (s TaskStatus) IsValid() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// Label returns the human readable name of the status
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Next returns the following status, wrapping around after done
func (s TaskStatus) Next() TaskStatus {
	for i, st := range TaskStatuses {
		if st == s {
			return TaskStatuses[(i+1)%len(TaskStatuses)]
		}
	}
	return StatusTodo
}

// TaskPriority is the urgency of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskPriorities lists the priorities from lowest to highest
var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p TaskPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Date is a calendar day. It decodes both YYYY-MM-DD and RFC 3339 and
// always encodes as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (YYYY-MM-DD): %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// User is the authenticated identity mirrored from the backend
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Initials returns the upper-cased first letters of the user's names
func (u User) Initials() string {
	var out []rune
	for _, name := range []string{u.FirstName, u.LastName} {
		for _, r := range name {
			out = append(out, r)
			break
		}
	}
	if len(out) == 0 {
		return "??"
	}
	return strings.ToUpper(string(out))
}

// UserPatch carries the user fields a backend response actually contained.
// Nil fields were absent and must be left alone when applied.
type UserPatch struct {
	ID        *string    `json:"id"`
	Email     *string    `json:"email"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// Apply merges the patch into a copy of u
func (p UserPatch) Apply(u User) User {
	if p.ID != nil {
		u.ID = *p.ID
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.CreatedAt != nil {
		u.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		u.UpdatedAt = *p.UpdatedAt
	}
	return u
}

// Registration is the payload for creating an account
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProjectRef is the project summary embedded in a task
type ProjectRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DisplayColor falls back to the default project colour
func (r ProjectRef) DisplayColor() string { return displayColor(r.Color) }

// Task represents a single task
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority,omitempty"`
	DueDate     *Date        `json:"due_date,omitempty"`
	ProjectID   *string      `json:"project_id,omitempty"`
	Project     *ProjectRef  `json:"project,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (t Task) Key() string { return t.ID }

// DisplayPriority falls back to medium when the backend sent no priority
func (t Task) DisplayPriority() TaskPriority {
	if t.Priority == "" {
		return PriorityMedium
	}
	return t.Priority
}

// TaskInput is the create/update payload for a task
type TaskInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status,omitempty"`
	DueDate     *string      `json:"due_date"`
	ProjectID   *string      `json:"project_id"`
}

// TaskFilter narrows a task listing. Empty fields are not sent.
type TaskFilter struct {
	Status    TaskStatus
	Priority  TaskPriority
	ProjectID string
	Search    string
}

// IsZero reports whether no filter is set
func (f TaskFilter) IsZero() bool {
	return f == TaskFilter{}
}

// Project represents a task management project
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Color          string    `json:"color"`
	TotalTasks     int       `json:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p Project) Key() string { return p.ID }

func (p Project) DisplayColor() string { return displayColor(p.Color) }

func displayColor(c string) string {
	if c == "" {
		return DefaultProjectColor
	}
	return c
}

// ProjectInput is the create/update payload for a project
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}
