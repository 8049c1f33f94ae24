package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gtasks-cli/internal/logger"
)

// Ensure AggregateService implements the interface.
var _ driving.AggregateService = (*AggregateService)(nil)

// AggregateService fans Tasks API reads out across accounts. Accounts run
// concurrently; within one account, calls stay sequential, and the
// credential lifecycle's per-account mutex serializes any refresh they
// trigger.
type AggregateService struct {
	store driven.ConfigStore
	api   driven.TaskAPI
}

// NewAggregateService creates a cross-account aggregation service.
func NewAggregateService(store driven.ConfigStore, api driven.TaskAPI) *AggregateService {
	return &AggregateService{
		store: store,
		api:   api,
	}
}

// selectAccounts applies the --accounts filter over the configured set.
func (s *AggregateService) selectAccounts(filter []string) ([]domain.Account, error) {
	accounts, err := s.store.List()
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, domain.ErrNoAccountsConfigured
	}
	if len(filter) == 0 {
		return accounts, nil
	}

	wanted := make(map[string]bool, len(filter))
	for _, email := range filter {
		wanted[domain.NormalizeEmail(email)] = true
	}

	var selected []domain.Account
	for _, account := range accounts {
		if wanted[domain.NormalizeEmail(account.Email)] {
			selected = append(selected, account)
		}
	}
	if len(selected) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return selected, nil
}

// Tasks merges tasks from every selected account, sorted by due date with
// undated tasks last. Accounts that fail are skipped with a warning rather
// than failing the whole aggregation.
func (s *AggregateService) Tasks(ctx context.Context, opts driving.AggregateOptions) ([]domain.AccountTask, error) {
	accounts, err := s.selectAccounts(opts.Accounts)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		merged []domain.AccountTask
	)

	for _, account := range accounts {
		wg.Add(1)
		go func(account domain.Account) {
			defer wg.Done()

			tasks, err := s.accountTasks(ctx, account.Email, opts.Filter)
			if err != nil {
				logger.Warn("failed to fetch tasks from %s: %v", account.Email, err)
				return
			}

			mu.Lock()
			merged = append(merged, tasks...)
			mu.Unlock()
		}(account)
	}
	wg.Wait()

	sortTasksByDue(merged)

	if opts.Limit > 0 && len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}
	return merged, nil
}

// accountTasks collects the filtered tasks from every list in one account.
func (s *AggregateService) accountTasks(ctx context.Context, email string, filter domain.TaskFilter) ([]domain.AccountTask, error) {
	lists, err := s.api.ListTaskLists(ctx, email)
	if err != nil {
		return nil, err
	}

	var out []domain.AccountTask
	for _, list := range lists {
		tasks, err := s.api.ListTasks(ctx, email, list.ID, filter)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			out = append(out, domain.AccountTask{
				Account:   email,
				ListID:    list.ID,
				ListTitle: list.Title,
				Task:      task,
			})
		}
	}
	return out, nil
}

// Lists merges task lists from every selected account.
func (s *AggregateService) Lists(ctx context.Context, opts driving.AggregateOptions) ([]domain.AccountTaskList, error) {
	accounts, err := s.selectAccounts(opts.Accounts)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		merged []domain.AccountTaskList
	)

	for _, account := range accounts {
		wg.Add(1)
		go func(account domain.Account) {
			defer wg.Done()

			lists, err := s.api.ListTaskLists(ctx, account.Email)
			if err != nil {
				logger.Warn("failed to fetch lists from %s: %v", account.Email, err)
				return
			}

			annotated := make([]domain.AccountTaskList, 0, len(lists))
			for _, list := range lists {
				entry := domain.AccountTaskList{Account: account.Email, TaskList: list}
				if opts.WithCounts {
					tasks, err := s.api.ListTasks(ctx, account.Email, list.ID, domain.TaskFilter{})
					if err != nil {
						logger.Warn("failed to count tasks in %s/%s: %v", account.Email, list.Title, err)
					} else {
						entry.TaskCount = len(tasks)
					}
				}
				annotated = append(annotated, entry)
			}

			mu.Lock()
			merged = append(merged, annotated...)
			mu.Unlock()
		}(account)
	}
	wg.Wait()

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Account != merged[j].Account {
			return merged[i].Account < merged[j].Account
		}
		return strings.ToLower(merged[i].Title) < strings.ToLower(merged[j].Title)
	})
	return merged, nil
}

// Summary returns per-account task statistics. A failing account reports
// its error inline with status error instead of failing the whole summary.
func (s *AggregateService) Summary(ctx context.Context, opts driving.AggregateOptions) ([]domain.AccountSummary, error) {
	accounts, err := s.selectAccounts(opts.Accounts)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	summaries := make([]domain.AccountSummary, len(accounts))
	var wg sync.WaitGroup

	for i, account := range accounts {
		wg.Add(1)
		go func(i int, account domain.Account) {
			defer wg.Done()
			summaries[i] = s.accountSummary(ctx, account, now)
		}(i, account)
	}
	wg.Wait()

	return summaries, nil
}

func (s *AggregateService) accountSummary(ctx context.Context, account domain.Account, now time.Time) domain.AccountSummary {
	summary := domain.AccountSummary{
		Account: account.Email,
		Status:  account.Status,
	}
	if summary.Status == "" {
		summary.Status = domain.StatusUnknown
	}

	lists, err := s.api.ListTaskLists(ctx, account.Email)
	if err != nil {
		summary.Status = domain.StatusError
		summary.Err = err.Error()
		return summary
	}
	summary.Lists = len(lists)

	for _, list := range lists {
		tasks, err := s.api.ListTasks(ctx, account.Email, list.ID, domain.TaskFilter{ShowCompleted: true})
		if err != nil {
			summary.Status = domain.StatusError
			summary.Err = err.Error()
			return summary
		}

		summary.Tasks += len(tasks)
		for _, task := range tasks {
			if task.IsCompleted() {
				summary.Completed++
				continue
			}
			summary.Pending++
			if !task.Due.IsZero() && task.Due.Before(now) {
				summary.Overdue++
			}
		}
	}

	summary.Status = domain.StatusActive
	return summary
}

// sortTasksByDue orders tasks by due date ascending, undated tasks last.
func sortTasksByDue(tasks []domain.AccountTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].Due, tasks[j].Due
		switch {
		case a.IsZero() && b.IsZero():
			return false
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})
}
