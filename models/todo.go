package models

import (
	"strings"
	"time"
)

// Todo statuses.
const (
	TodoPending    = "pending"
	TodoInProgress = "in_progress"
	TodoCompleted  = "completed"
	TodoCancelled  = "cancelled"
)

// Todo priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Todo is a follow-up task, optionally linked to an invoice.
type Todo struct {
	ID            int        `json:"id"`
	InvoiceID     *int       `json:"invoice_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	DueDate       *Date      `json:"due_date"`
	CompletedDate *time.Time `json:"completed_date"`
	Assignee      string     `json:"assignee"`
	Tags          string     `json:"tags"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TodoInput is used for creating todos.
type TodoInput struct {
	InvoiceID   *int   `json:"invoice_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     *Date  `json:"due_date"`
	Assignee    string `json:"assignee"`
	Tags        string `json:"tags"`
}

func (t *TodoInput) Validate() string {
	t.Title = strings.TrimSpace(t.Title)
	if t.InvoiceID != nil && *t.InvoiceID <= 0 {
		t.InvoiceID = nil
	}
	if t.Status == "" {
		t.Status = TodoPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return t.Todo().Validate()
}

// Todo builds the record stored for this input.
func (t *TodoInput) Todo() Todo {
	return Todo{
		InvoiceID:   t.InvoiceID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Assignee:    t.Assignee,
		Tags:        t.Tags,
	}
}

// TodoPatch carries the fields supplied on update. CompletedDate is not
// patchable; it follows status transitions.
type TodoPatch struct {
	InvoiceID   *int    `json:"invoice_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *Date   `json:"due_date"`
	Assignee    *string `json:"assignee"`
	Tags        *string `json:"tags"`
}

// Apply merges the patch into t without touching CompletedDate.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.InvoiceID != nil {
		// 0 unlinks the todo.
		if id := *p.InvoiceID; id > 0 {
			t.InvoiceID = &id
		} else {
			t.InvoiceID = nil
		}
	}
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			d := *p.DueDate
			t.DueDate = &d
		}
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	return t
}

// Validate checks a record before it is written.
func (t Todo) Validate() string {
	if strings.TrimSpace(t.Title) == "" {
		return "title is required"
	}
	if !ValidTodoStatus(t.Status) {
		return "status must be one of: pending, in_progress, completed, cancelled"
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
	default:
		return "priority must be one of: low, medium, high, urgent"
	}
	return ""
}

func ValidTodoStatus(s string) bool {
	switch s {
	case TodoPending, TodoInProgress, TodoCompleted, TodoCancelled:
		return true
	}
	return false
}

// CompletedDateAfter returns the completed date for a transition from the
// stored status prev to next. Entering completed stamps now, leaving it
// clears the date, anything else keeps current.
func CompletedDateAfter(prev, next string, current *time.Time, now time.Time) *time.Time {
	switch {
	case next == TodoCompleted && prev != TodoCompleted:
		ts := now
		return &ts
	case next != TodoCompleted && prev == TodoCompleted:
		return nil
	default:
		return current
	}
}

// TodoFilter narrows todo listings. Kinds combine with AND; the search text
// matches title OR description.
type TodoFilter struct {
	Status    string
	Priority  string
	Search    string
	InvoiceID *int
}

func (f TodoFilter) Match(t Todo) bool {
	if f.Status != "" && f.Status != "all" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && f.Priority != "all" && t.Priority != f.Priority {
		return false
	}
	if f.InvoiceID != nil && (t.InvoiceID == nil || *t.InvoiceID != *f.InvoiceID) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	}
	return true
}
