package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

func fixtureLists() []domain.TaskList {
	return []domain.TaskList{
		{ID: "l1", Title: "My Tasks", Updated: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "l2", Title: "Groceries"},
	}
}

func TestTasklistsList(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{lists: fixtureLists()})
	seedAccount(t, store, "alice@example.com")

	out, err := execute(t, "tasklists", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "My Tasks")
	assert.Contains(t, out, "Groceries")
}

func TestTasklistsList_ListsAlias(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{lists: fixtureLists()})
	seedAccount(t, store, "alice@example.com")

	out, err := execute(t, "lists")
	require.NoError(t, err)
	assert.Contains(t, out, "My Tasks")
}

func TestTasklistsGet(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{lists: fixtureLists()})
	seedAccount(t, store, "alice@example.com")

	out, err := execute(t, "tasklists", "get", "l2")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "l2")
}

func TestTasklistsCreate(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{})
	seedAccount(t, store, "alice@example.com")

	out, err := execute(t, "tasklists", "create", "Weekend")
	require.NoError(t, err)
	assert.Contains(t, out, `Created task list "Weekend" (new-list)`)
}

func TestTasklistsRename(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{lists: fixtureLists()})
	seedAccount(t, store, "alice@example.com")

	out, err := execute(t, "tasklists", "rename", "l2", "Errands")
	require.NoError(t, err)
	assert.Contains(t, out, `Renamed task list to "Errands"`)
}

func TestTasklistsDelete(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{lists: fixtureLists()})
	seedAccount(t, store, "alice@example.com")

	out, err := execute(t, "tasklists", "delete", "l1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task list l1")
}

func TestTasklists_ExplicitUnknownAccount(t *testing.T) {
	store := setupTestServices(t, &stubTaskAPI{lists: fixtureLists()})
	seedAccount(t, store, "alice@example.com")
	t.Cleanup(func() { tasklistsAccount = "" })

	_, err := execute(t, "tasklists", "list", "-a", "nobody@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
