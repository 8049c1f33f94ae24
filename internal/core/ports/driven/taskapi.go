package driven

import (
	"context"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

// TaskAPI is the per-account Tasks resource capability. Every call obtains
// a currently-valid credential for the named account through the lifecycle
// manager, so callers never deal with expiry or refresh.
type TaskAPI interface {
	// ListTaskLists returns all task lists for the account.
	ListTaskLists(ctx context.Context, email string) ([]domain.TaskList, error)

	// GetTaskList returns one task list by ID.
	GetTaskList(ctx context.Context, email, listID string) (*domain.TaskList, error)

	// CreateTaskList creates a task list with the given title.
	CreateTaskList(ctx context.Context, email, title string) (*domain.TaskList, error)

	// RenameTaskList changes a task list's title.
	RenameTaskList(ctx context.Context, email, listID, title string) (*domain.TaskList, error)

	// DeleteTaskList deletes a task list and all tasks in it.
	DeleteTaskList(ctx context.Context, email, listID string) error

	// ListTasks returns the tasks in a list, filtered.
	ListTasks(ctx context.Context, email, listID string, filter domain.TaskFilter) ([]domain.Task, error)

	// GetTask returns one task by ID.
	GetTask(ctx context.Context, email, listID, taskID string) (*domain.Task, error)

	// CreateTask adds a task to a list, optionally under a parent task.
	CreateTask(ctx context.Context, email, listID string, task domain.Task, parent string) (*domain.Task, error)

	// UpdateTask applies a partial update to a task.
	UpdateTask(ctx context.Context, email, listID, taskID string, changes domain.TaskChanges) (*domain.Task, error)

	// SetTaskStatus marks a task completed or open.
	SetTaskStatus(ctx context.Context, email, listID, taskID, status string) (*domain.Task, error)

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, email, listID, taskID string) error

	// MoveTask repositions a task within its list or under a new parent.
	MoveTask(ctx context.Context, email, listID, taskID, parent, previous string) (*domain.Task, error)
}
