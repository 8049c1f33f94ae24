package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gtasks-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driving"
)

// fakeTaskAPI serves canned lists and tasks per account.
type fakeTaskAPI struct {
	lists map[string][]domain.TaskList // email -> lists
	tasks map[string][]domain.Task     // email/listID -> tasks
	fail  map[string]error             // email -> error
}

func (a *fakeTaskAPI) key(email, listID string) string { return email + "/" + listID }

func (a *fakeTaskAPI) ListTaskLists(ctx context.Context, email string) ([]domain.TaskList, error) {
	if err := a.fail[email]; err != nil {
		return nil, err
	}
	return a.lists[email], nil
}

func (a *fakeTaskAPI) ListTasks(ctx context.Context, email, listID string, filter domain.TaskFilter) ([]domain.Task, error) {
	if err := a.fail[email]; err != nil {
		return nil, err
	}
	var out []domain.Task
	for _, task := range a.tasks[a.key(email, listID)] {
		if filter.Matches(task) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (a *fakeTaskAPI) GetTaskList(ctx context.Context, email, listID string) (*domain.TaskList, error) {
	return nil, errors.New("not used")
}

func (a *fakeTaskAPI) CreateTaskList(ctx context.Context, email, title string) (*domain.TaskList, error) {
	return nil, errors.New("not used")
}

func (a *fakeTaskAPI) RenameTaskList(ctx context.Context, email, listID, title string) (*domain.TaskList, error) {
	return nil, errors.New("not used")
}

func (a *fakeTaskAPI) DeleteTaskList(ctx context.Context, email, listID string) error {
	return errors.New("not used")
}

func (a *fakeTaskAPI) GetTask(ctx context.Context, email, listID, taskID string) (*domain.Task, error) {
	return nil, errors.New("not used")
}

func (a *fakeTaskAPI) CreateTask(ctx context.Context, email, listID string, task domain.Task, parent string) (*domain.Task, error) {
	return nil, errors.New("not used")
}

func (a *fakeTaskAPI) UpdateTask(ctx context.Context, email, listID, taskID string, changes domain.TaskChanges) (*domain.Task, error) {
	return nil, errors.New("not used")
}

func (a *fakeTaskAPI) SetTaskStatus(ctx context.Context, email, listID, taskID, status string) (*domain.Task, error) {
	return nil, errors.New("not used")
}

func (a *fakeTaskAPI) DeleteTask(ctx context.Context, email, listID, taskID string) error {
	return errors.New("not used")
}

func (a *fakeTaskAPI) MoveTask(ctx context.Context, email, listID, taskID, parent, previous string) (*domain.Task, error) {
	return nil, errors.New("not used")
}

func aggregateFixture(t *testing.T) (*memory.ConfigStore, *fakeTaskAPI) {
	t.Helper()
	store := memory.NewConfigStore()
	addAccount(t, store, "a@x.com")
	addAccount(t, store, "b@x.com")

	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }

	api := &fakeTaskAPI{
		lists: map[string][]domain.TaskList{
			"a@x.com": {{ID: "l1", Title: "Inbox"}},
			"b@x.com": {{ID: "l2", Title: "Work"}},
		},
		tasks: map[string][]domain.Task{
			"a@x.com/l1": {
				{ID: "t1", Title: "late", Status: domain.TaskStatusNeedsAction, Due: day(20)},
				{ID: "t2", Title: "undated", Status: domain.TaskStatusNeedsAction},
				{ID: "t3", Title: "done", Status: domain.TaskStatusCompleted, Due: day(1)},
			},
			"b@x.com/l2": {
				{ID: "t4", Title: "soon", Status: domain.TaskStatusNeedsAction, Due: day(10)},
			},
		},
		fail: map[string]error{},
	}
	return store, api
}

func TestAggregateTasks_MergesSortedByDue(t *testing.T) {
	store, api := aggregateFixture(t)
	svc := NewAggregateService(store, api)

	tasks, err := svc.Tasks(context.Background(), driving.AggregateOptions{})

	require.NoError(t, err)
	require.Len(t, tasks, 3, "completed tasks are excluded by default")

	assert.Equal(t, "soon", tasks[0].Title)
	assert.Equal(t, "b@x.com", tasks[0].Account)
	assert.Equal(t, "late", tasks[1].Title)
	assert.Equal(t, "undated", tasks[2].Title, "undated tasks sort last")
	assert.Equal(t, "Inbox", tasks[1].ListTitle)
}

func TestAggregateTasks_Limit(t *testing.T) {
	store, api := aggregateFixture(t)
	svc := NewAggregateService(store, api)

	tasks, err := svc.Tasks(context.Background(), driving.AggregateOptions{Limit: 1})

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "soon", tasks[0].Title)
}

func TestAggregateTasks_AccountFilter(t *testing.T) {
	store, api := aggregateFixture(t)
	svc := NewAggregateService(store, api)

	tasks, err := svc.Tasks(context.Background(), driving.AggregateOptions{
		Accounts: []string{"A@X.com"},
	})

	require.NoError(t, err)
	for _, task := range tasks {
		assert.Equal(t, "a@x.com", task.Account)
	}
}

func TestAggregateTasks_FailingAccountSkipped(t *testing.T) {
	store, api := aggregateFixture(t)
	api.fail["a@x.com"] = errors.New("backend unavailable")
	svc := NewAggregateService(store, api)

	tasks, err := svc.Tasks(context.Background(), driving.AggregateOptions{})

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "b@x.com", tasks[0].Account)
}

func TestAggregateTasks_NoAccounts(t *testing.T) {
	svc := NewAggregateService(memory.NewConfigStore(), &fakeTaskAPI{fail: map[string]error{}})

	_, err := svc.Tasks(context.Background(), driving.AggregateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoAccountsConfigured)
}

func TestAggregateLists_WithCounts(t *testing.T) {
	store, api := aggregateFixture(t)
	svc := NewAggregateService(store, api)

	lists, err := svc.Lists(context.Background(), driving.AggregateOptions{WithCounts: true})

	require.NoError(t, err)
	require.Len(t, lists, 2)

	assert.Equal(t, "a@x.com", lists[0].Account)
	assert.Equal(t, "Inbox", lists[0].Title)
	assert.Equal(t, 2, lists[0].TaskCount, "counts cover open tasks only")
	assert.Equal(t, "b@x.com", lists[1].Account)
	assert.Equal(t, 1, lists[1].TaskCount)
}

func TestAggregateSummary(t *testing.T) {
	store, api := aggregateFixture(t)
	svc := NewAggregateService(store, api)

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	summaries, err := svc.Summary(context.Background(), driving.AggregateOptions{Now: now})

	require.NoError(t, err)
	require.Len(t, summaries, 2)

	a := summaries[0]
	assert.Equal(t, "a@x.com", a.Account)
	assert.Equal(t, domain.StatusActive, a.Status)
	assert.Equal(t, 1, a.Lists)
	assert.Equal(t, 3, a.Tasks)
	assert.Equal(t, 2, a.Pending)
	assert.Equal(t, 1, a.Completed)
	assert.Equal(t, 0, a.Overdue, "undated tasks are never overdue")

	b := summaries[1]
	assert.Equal(t, 1, b.Pending)
	assert.Equal(t, 1, b.Overdue, "due 10 June is overdue on 15 June")
}

func TestAggregateSummary_FailingAccountReportsInline(t *testing.T) {
	store, api := aggregateFixture(t)
	api.fail["b@x.com"] = errors.New("quota exceeded")
	svc := NewAggregateService(store, api)

	summaries, err := svc.Summary(context.Background(), driving.AggregateOptions{})

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, domain.StatusError, summaries[1].Status)
	assert.Contains(t, summaries[1].Err, "quota exceeded")
}
