package google

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gtasks-cli/internal/logger"
)

// Ensure the adapters implement their ports.
var (
	_ driven.TaskAPI     = (*TasksAPI)(nil)
	_ driven.ResourceAPI = (*ResourceClient)(nil)
)

const pageSize = 100

// TasksAPI is the Google Tasks client. Every call obtains a valid access
// token for the named account through the credential lifecycle manager, so
// callers never see an expired token.
type TasksAPI struct {
	creds   driving.CredentialService
	limiter *RateLimiter
	opts    []option.ClientOption
}

// NewTasksAPI creates a Tasks client backed by the credential lifecycle
// manager. Extra client options are passed through to the underlying
// service, which lets tests point it at a local server.
func NewTasksAPI(creds driving.CredentialService, opts ...option.ClientOption) *TasksAPI {
	return &TasksAPI{
		creds:   creds,
		limiter: NewRateLimiter(),
		opts:    opts,
	}
}

// service builds a Tasks API service bound to one account's credentials.
func (a *TasksAPI) service(ctx context.Context, email string) (*tasks.Service, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(NewTokenSource(ctx, a.creds, email)),
	}, a.opts...)

	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create tasks service: %w", err)
	}
	return svc, nil
}

// wrap classifies an API error and records any rate limit backoff.
func (a *TasksAPI) wrap(err error) error {
	if err == nil {
		return nil
	}
	if IsRateLimited(err) {
		a.limiter.RecordRateLimitError(retryAfterSeconds(err))
		logger.Warn("tasks API rate limited, backing off")
	}
	return WrapError(err)
}

// retryAfterSeconds extracts the Retry-After header from a Google API error.
func retryAfterSeconds(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Header != nil {
		if secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After")); convErr == nil {
			return secs
		}
	}
	return 0
}

// ListTaskLists returns all task lists for the account.
func (a *TasksAPI) ListTaskLists(ctx context.Context, email string) ([]domain.TaskList, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}

	var out []domain.TaskList
	pageToken := ""
	for {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := svc.Tasklists.List().MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, a.wrap(err)
		}

		for _, item := range res.Items {
			out = append(out, taskListFromAPI(item))
		}
		if res.NextPageToken == "" {
			return out, nil
		}
		pageToken = res.NextPageToken
	}
}

// GetTaskList returns one task list by ID.
func (a *TasksAPI) GetTaskList(ctx context.Context, email, listID string) (*domain.TaskList, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := svc.Tasklists.Get(listID).Context(ctx).Do()
	if err != nil {
		return nil, a.wrap(err)
	}
	list := taskListFromAPI(res)
	return &list, nil
}

// CreateTaskList creates a task list with the given title.
func (a *TasksAPI) CreateTaskList(ctx context.Context, email, title string) (*domain.TaskList, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, a.wrap(err)
	}
	list := taskListFromAPI(res)
	return &list, nil
}

// RenameTaskList changes a task list's title.
func (a *TasksAPI) RenameTaskList(ctx context.Context, email, listID, title string) (*domain.TaskList, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := svc.Tasklists.Patch(listID, &tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, a.wrap(err)
	}
	list := taskListFromAPI(res)
	return &list, nil
}

// DeleteTaskList deletes a task list and all tasks in it.
func (a *TasksAPI) DeleteTaskList(ctx context.Context, email, listID string) error {
	svc, err := a.service(ctx, email)
	if err != nil {
		return err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := svc.Tasklists.Delete(listID).Context(ctx).Do(); err != nil {
		return a.wrap(err)
	}
	return nil
}

// ListTasks returns the tasks in a list, filtered. The completion flag is
// pushed down to the API; the due-date window is applied client-side since
// the API's dueMin/dueMax have inclusive edge semantics the filter does not.
func (a *TasksAPI) ListTasks(ctx context.Context, email, listID string, filter domain.TaskFilter) ([]domain.Task, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}

	var out []domain.Task
	pageToken := ""
	for {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		withCompleted := filter.ShowCompleted || filter.Status == domain.TaskStatusCompleted
		call := svc.Tasks.List(listID).
			MaxResults(pageSize).
			ShowCompleted(withCompleted).
			ShowHidden(withCompleted).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, a.wrap(err)
		}

		for _, item := range res.Items {
			task := taskFromAPI(item)
			if filter.Matches(task) {
				out = append(out, task)
			}
		}
		if res.NextPageToken == "" {
			return out, nil
		}
		pageToken = res.NextPageToken
	}
}

// GetTask returns one task by ID.
func (a *TasksAPI) GetTask(ctx context.Context, email, listID, taskID string) (*domain.Task, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := svc.Tasks.Get(listID, taskID).Context(ctx).Do()
	if err != nil {
		return nil, a.wrap(err)
	}
	task := taskFromAPI(res)
	return &task, nil
}

// CreateTask adds a task to a list, optionally under a parent task.
func (a *TasksAPI) CreateTask(ctx context.Context, email, listID string, task domain.Task, parent string) (*domain.Task, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload := &tasks.Task{
		Title: task.Title,
		Notes: task.Notes,
	}
	if !task.Due.IsZero() {
		payload.Due = task.Due.Format(time.RFC3339)
	}

	call := svc.Tasks.Insert(listID, payload).Context(ctx)
	if parent != "" {
		call = call.Parent(parent)
	}
	res, err := call.Do()
	if err != nil {
		return nil, a.wrap(err)
	}
	created := taskFromAPI(res)
	return &created, nil
}

// UpdateTask applies a partial update to a task. Nil change fields are left
// untouched; explicit clears are sent as nulls.
func (a *TasksAPI) UpdateTask(ctx context.Context, email, listID, taskID string, changes domain.TaskChanges) (*domain.Task, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	patch := &tasks.Task{}
	if changes.Title != nil {
		patch.Title = *changes.Title
		if patch.Title == "" {
			patch.ForceSendFields = append(patch.ForceSendFields, "Title")
		}
	}
	if changes.Notes != nil {
		patch.Notes = *changes.Notes
		if patch.Notes == "" {
			patch.ForceSendFields = append(patch.ForceSendFields, "Notes")
		}
	}
	if changes.Due != nil {
		patch.Due = changes.Due.Format(time.RFC3339)
	}
	if changes.ClearDue {
		patch.NullFields = append(patch.NullFields, "Due")
	}
	if changes.ClearNotes {
		patch.NullFields = append(patch.NullFields, "Notes")
	}

	res, err := svc.Tasks.Patch(listID, taskID, patch).Context(ctx).Do()
	if err != nil {
		return nil, a.wrap(err)
	}
	updated := taskFromAPI(res)
	return &updated, nil
}

// SetTaskStatus marks a task completed or open. Reopening a task also
// clears its completion timestamp, which the API requires.
func (a *TasksAPI) SetTaskStatus(ctx context.Context, email, listID, taskID, status string) (*domain.Task, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	patch := &tasks.Task{Status: status}
	if status == domain.TaskStatusNeedsAction {
		patch.NullFields = append(patch.NullFields, "Completed")
	}

	res, err := svc.Tasks.Patch(listID, taskID, patch).Context(ctx).Do()
	if err != nil {
		return nil, a.wrap(err)
	}
	updated := taskFromAPI(res)
	return &updated, nil
}

// DeleteTask removes a task.
func (a *TasksAPI) DeleteTask(ctx context.Context, email, listID, taskID string) error {
	svc, err := a.service(ctx, email)
	if err != nil {
		return err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := svc.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
		return a.wrap(err)
	}
	return nil
}

// MoveTask repositions a task within its list or under a new parent.
func (a *TasksAPI) MoveTask(ctx context.Context, email, listID, taskID, parent, previous string) (*domain.Task, error) {
	svc, err := a.service(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := svc.Tasks.Move(listID, taskID).Context(ctx)
	if parent != "" {
		call = call.Parent(parent)
	}
	if previous != "" {
		call = call.Previous(previous)
	}
	res, err := call.Do()
	if err != nil {
		return nil, a.wrap(err)
	}
	moved := taskFromAPI(res)
	return &moved, nil
}

// ResourceClient performs the minimal authenticated call used for
// connectivity testing. It takes a raw access token rather than going
// through the lifecycle manager, so the manager can use it without
// recursing into itself.
type ResourceClient struct {
	limiter *RateLimiter
	opts    []option.ClientOption
}

// NewResourceClient creates a connectivity test client.
func NewResourceClient(opts ...option.ClientOption) *ResourceClient {
	return &ResourceClient{
		limiter: NewRateLimiter(),
		opts:    opts,
	}
}

// Ping performs a cheap authenticated call with the given access token.
func (c *ResourceClient) Ping(ctx context.Context, accessToken string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})),
	}, c.opts...)

	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create tasks service: %w", err)
	}

	if _, err := svc.Tasklists.List().MaxResults(1).Context(ctx).Do(); err != nil {
		return WrapError(err)
	}
	return nil
}

// taskListFromAPI converts an API task list to the domain type.
func taskListFromAPI(l *tasks.TaskList) domain.TaskList {
	return domain.TaskList{
		ID:      l.Id,
		Title:   l.Title,
		Updated: parseTime(l.Updated),
	}
}

// taskFromAPI converts an API task to the domain type.
func taskFromAPI(t *tasks.Task) domain.Task {
	return domain.Task{
		ID:        t.Id,
		Title:     t.Title,
		Notes:     t.Notes,
		Status:    t.Status,
		Due:       parseTime(t.Due),
		Completed: parseTimePtr(t.Completed),
		Parent:    t.Parent,
		Position:  t.Position,
		Updated:   parseTime(t.Updated),
	}
}

// parseTime parses an RFC 3339 timestamp, returning the zero time for
// empty or malformed input.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s *string) time.Time {
	if s == nil {
		return time.Time{}
	}
	return parseTime(*s)
}
