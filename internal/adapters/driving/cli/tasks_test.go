package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

func fixtureTasks() []domain.Task {
	return []domain.Task{
		{ID: "t1", Title: "Buy milk", Status: domain.TaskStatusNeedsAction,
			Due: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "t2", Title: "File taxes", Status: domain.TaskStatusCompleted},
		{ID: "t3", Title: "Pick up kids", Status: domain.TaskStatusNeedsAction, Parent: "t1"},
	}
}

func TestTasksList_HidesCompletedByDefault(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{tasks: fixtureTasks()})
	seedAccount(t, store, "alice@example.com")

	out, err := execute(t, "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Pick up kids")
	assert.NotContains(t, out, "File taxes")
}

func TestTasksList_ShowCompleted(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{tasks: fixtureTasks()})
	seedAccount(t, store, "alice@example.com")
	t.Cleanup(func() { tasksShowCompleted = false })

	out, err := execute(t, "tasks", "list", "--show-completed")
	require.NoError(t, err)
	assert.Contains(t, out, "File taxes")
	assert.Contains(t, out, "[x]")
}

func TestTasksList_NoAccounts(t *testing.T) {
	setupTestServices(t, &stubTaskAPI{})

	_, err := execute(t, "tasks", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoAccountsConfigured)
	assert.Contains(t, err.Error(), "gtasks accounts add")
}

func TestTasksCreate(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{})
	seedAccount(t, store, "alice@example.com")

	out, err := execute(t, "tasks", "create", "Water plants")
	require.NoError(t, err)
	assert.Contains(t, out, `Created task "Water plants" (new-task)`)
}

func TestTasksCreate_InvalidDue(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{})
	seedAccount(t, store, "alice@example.com")
	t.Cleanup(func() { tasksDue = "" })

	_, err := execute(t, "tasks", "create", "Water plants", "--due", "tomorrow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestTasksCompleteAndUncomplete(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{})
	seedAccount(t, store, "alice@example.com")

	out, err := execute(t, "tasks", "complete", "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed")

	out, err = execute(t, "tasks", "uncomplete", "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "Reopened")
}

func TestTasksUpdate_NothingToUpdate(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{})
	seedAccount(t, store, "alice@example.com")

	_, err := execute(t, "tasks", "update", "t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestParseDue(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2026-08-30", want: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)},
		{input: "2026-08-30T12:00:00Z", want: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)},
		{input: "next week", wantErr: true},
		{input: "30/08/2026", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDue(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want))
		})
	}
}
