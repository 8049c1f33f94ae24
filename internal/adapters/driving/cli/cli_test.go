package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/gtasks-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gtasks-cli/internal/core/services"
)

// stubCredentials satisfies driving.CredentialService for command tests.
type stubCredentials struct {
	connectivityErr error
}

func (s *stubCredentials) GetValidCredential(context.Context, string) (*domain.Credential, error) {
	return &domain.Credential{AccessToken: "access"}, nil
}

func (s *stubCredentials) StoreNewCredential(context.Context, string, string, domain.Credential) error {
	return nil
}

func (s *stubCredentials) TestConnectivity(context.Context, string) error {
	return s.connectivityErr
}

// stubTaskAPI satisfies driven.TaskAPI with canned data.
type stubTaskAPI struct {
	lists []domain.TaskList
	tasks []domain.Task
}

func (s *stubTaskAPI) ListTaskLists(context.Context, string) ([]domain.TaskList, error) {
	return s.lists, nil
}

func (s *stubTaskAPI) GetTaskList(_ context.Context, _, listID string) (*domain.TaskList, error) {
	for i := range s.lists {
		if s.lists[i].ID == listID {
			return &s.lists[i], nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubTaskAPI) CreateTaskList(_ context.Context, _, title string) (*domain.TaskList, error) {
	return &domain.TaskList{ID: "new-list", Title: title}, nil
}

func (s *stubTaskAPI) RenameTaskList(_ context.Context, _, listID, title string) (*domain.TaskList, error) {
	return &domain.TaskList{ID: listID, Title: title}, nil
}

func (s *stubTaskAPI) DeleteTaskList(context.Context, string, string) error { return nil }

func (s *stubTaskAPI) ListTasks(_ context.Context, _, _ string, filter domain.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range s.tasks {
		if filter.Matches(task) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *stubTaskAPI) GetTask(_ context.Context, _, _, taskID string) (*domain.Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			return &s.tasks[i], nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubTaskAPI) CreateTask(_ context.Context, _, _ string, task domain.Task, _ string) (*domain.Task, error) {
	task.ID = "new-task"
	return &task, nil
}

func (s *stubTaskAPI) UpdateTask(_ context.Context, _, _, taskID string, _ domain.TaskChanges) (*domain.Task, error) {
	return &domain.Task{ID: taskID, Title: "updated"}, nil
}

func (s *stubTaskAPI) SetTaskStatus(_ context.Context, _, _, taskID, status string) (*domain.Task, error) {
	return &domain.Task{ID: taskID, Title: "task", Status: status}, nil
}

func (s *stubTaskAPI) DeleteTask(context.Context, string, string, string) error { return nil }

func (s *stubTaskAPI) MoveTask(_ context.Context, _, _, taskID, _, _ string) (*domain.Task, error) {
	return &domain.Task{ID: taskID, Title: "moved"}, nil
}

// setupTestServices replaces the wired services with in-memory fakes and
// restores them when the test finishes.
func setupTestServices(t *testing.T, api driven.TaskAPI) *memory.ConfigStore {
	t.Helper()

	store := memory.NewConfigStore()
	origStore, origCreds := configStore, credentialService
	origAccounts, origAggregate, origAPI := accountService, aggregateService, taskAPI

	configStore = store
	credentialService = &stubCredentials{}
	accountService = services.NewAccountsService(store, nil, nil)
	taskAPI = api
	aggregateService = services.NewAggregateService(store, api)

	t.Cleanup(func() {
		configStore, credentialService = origStore, origCreds
		accountService, aggregateService, taskAPI = origAccounts, origAggregate, origAPI
		flagFormat = ""
	})
	return store
}

var _ driving.CredentialService = (*stubCredentials)(nil)
var _ driven.TaskAPI = (*stubTaskAPI)(nil)

// execute runs the root command with args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
