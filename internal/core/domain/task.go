package domain

import "time"

// Task statuses as reported by the Tasks API.
const (
	TaskStatusNeedsAction = "needsAction"
	TaskStatusCompleted   = "completed"
)

// TaskList is a named collection of tasks within one account.
type TaskList struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Updated time.Time `json:"updated,omitempty"`
}

// Task is a single to-do item.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	Due       time.Time `json:"due,omitempty"`
	Completed time.Time `json:"completed,omitempty"`
	Parent    string    `json:"parent,omitempty"`
	Position  string    `json:"position,omitempty"`
	Updated   time.Time `json:"updated,omitempty"`
}

// IsCompleted returns true if the task has been marked done.
func (t Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	// ShowCompleted includes completed tasks in the result.
	ShowCompleted bool
	// Status keeps only tasks in this exact state (if set). Asking for
	// completed tasks implies showing them.
	Status string
	// DueBefore keeps only tasks due strictly before this time (if set).
	DueBefore time.Time
	// DueAfter keeps only tasks due strictly after this time (if set).
	DueAfter time.Time
}

// Matches reports whether a task passes the filter.
func (f TaskFilter) Matches(t Task) bool {
	if f.Status != "" {
		if t.Status != f.Status {
			return false
		}
	} else if !f.ShowCompleted && t.IsCompleted() {
		return false
	}
	if !f.DueBefore.IsZero() {
		if t.Due.IsZero() || !t.Due.Before(f.DueBefore) {
			return false
		}
	}
	if !f.DueAfter.IsZero() {
		if t.Due.IsZero() || !t.Due.After(f.DueAfter) {
			return false
		}
	}
	return true
}

// TaskChanges describes a partial task update. Nil fields are left unchanged.
type TaskChanges struct {
	Title      *string
	Notes      *string
	Due        *time.Time
	ClearDue   bool
	ClearNotes bool
}

// AccountTask is a task annotated with the account and list it came from,
// produced by cross-account aggregation.
type AccountTask struct {
	Account   string `json:"account"`
	ListID    string `json:"listId"`
	ListTitle string `json:"listTitle"`
	Task
}

// AccountTaskList is a task list annotated with its owning account.
type AccountTaskList struct {
	Account string `json:"account"`
	TaskList
	// TaskCount is the number of open tasks, when counting was requested.
	TaskCount int `json:"taskCount,omitempty"`
}

// AccountSummary is one account's slice of an aggregate summary.
type AccountSummary struct {
	Account   string        `json:"account"`
	Status    AccountStatus `json:"status"`
	Lists     int           `json:"lists"`
	Tasks     int           `json:"tasks"`
	Pending   int           `json:"pending"`
	Completed int           `json:"completed"`
	Overdue   int           `json:"overdue"`
	// Err records a per-account failure without failing the whole summary.
	Err string `json:"error,omitempty"`
}
