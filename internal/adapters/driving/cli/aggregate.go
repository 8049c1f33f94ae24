package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driving"
)

var aggregateCmd = &cobra.Command{
	Use:     "aggregate",
	Aliases: []string{"all"},
	Short:   "Work across every connected account at once",
	Long: `Merge tasks, lists, or statistics from all connected accounts.

Accounts are queried concurrently. An account that fails (revoked access,
network trouble) is skipped with a warning rather than failing the whole
command; summaries report the failure inline.

Examples:
  gtasks aggregate tasks --limit 20
  gtasks aggregate tasks --accounts alice@gmail.com,bob@gmail.com
  gtasks aggregate tasks --status completed
  gtasks aggregate lists --counts
  gtasks aggregate summary`,
}

var aggregateTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Merged tasks from all accounts, sorted by due date",
	RunE:  runAggregateTasks,
}

var aggregateListsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Task lists from all accounts",
	RunE:  runAggregateLists,
}

var aggregateSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Per-account task statistics",
	RunE:  runAggregateSummary,
}

// Flags for aggregate commands.
var (
	aggregateAccounts      []string
	aggregateLimit         int
	aggregateShowCompleted bool
	aggregateStatus        string
	aggregateDueBefore     string
	aggregateDueAfter      string
	aggregateCounts        bool
)

func init() {
	aggregateCmd.PersistentFlags().StringSliceVar(&aggregateAccounts, "accounts", nil,
		"Limit to these accounts (comma-separated emails)")

	aggregateTasksCmd.Flags().IntVar(&aggregateLimit, "limit", 0, "Maximum number of tasks (0 = all)")
	aggregateTasksCmd.Flags().BoolVar(&aggregateShowCompleted, "show-completed", false, "Include completed tasks")
	aggregateTasksCmd.Flags().StringVar(&aggregateStatus, "status", "",
		"Only tasks in this state (needsAction or completed)")
	aggregateTasksCmd.Flags().StringVar(&aggregateDueBefore, "due-before", "", "Only tasks due before this date (YYYY-MM-DD)")
	aggregateTasksCmd.Flags().StringVar(&aggregateDueAfter, "due-after", "", "Only tasks due after this date (YYYY-MM-DD)")

	aggregateListsCmd.Flags().BoolVar(&aggregateCounts, "counts", false, "Include open-task counts (one extra API call per list)")

	aggregateCmd.AddCommand(aggregateTasksCmd)
	aggregateCmd.AddCommand(aggregateListsCmd)
	aggregateCmd.AddCommand(aggregateSummaryCmd)
	rootCmd.AddCommand(aggregateCmd)
}

func aggregateOptions() (driving.AggregateOptions, error) {
	opts := driving.AggregateOptions{
		Accounts: aggregateAccounts,
		Limit:    aggregateLimit,
	}
	opts.Filter.ShowCompleted = aggregateShowCompleted
	switch aggregateStatus {
	case "", domain.TaskStatusNeedsAction, domain.TaskStatusCompleted:
		opts.Filter.Status = aggregateStatus
	default:
		return opts, fmt.Errorf("invalid status %q: must be %s or %s",
			aggregateStatus, domain.TaskStatusNeedsAction, domain.TaskStatusCompleted)
	}
	if aggregateDueBefore != "" {
		t, err := parseDue(aggregateDueBefore)
		if err != nil {
			return opts, err
		}
		opts.Filter.DueBefore = t
	}
	if aggregateDueAfter != "" {
		t, err := parseDue(aggregateDueAfter)
		if err != nil {
			return opts, err
		}
		opts.Filter.DueAfter = t
	}
	return opts, nil
}

func runAggregateTasks(cmd *cobra.Command, _ []string) error {
	if aggregateService == nil {
		return errors.New("aggregate service not configured")
	}

	opts, err := aggregateOptions()
	if err != nil {
		return err
	}

	merged, err := aggregateService.Tasks(cmd.Context(), opts)
	if err != nil {
		return friendlyError(err, "")
	}

	format, err := resolveFormat()
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		return printJSON(cmd, merged)
	case FormatMinimal:
		for _, task := range merged {
			cmd.Printf("%s\t%s\t%s\n", task.Account, task.ID, task.Title)
		}
		return nil
	default:
		if len(merged) == 0 {
			cmd.Println("No tasks.")
			return nil
		}
		rows := make([][]string, 0, len(merged))
		for _, task := range merged {
			rows = append(rows, []string{
				checkbox(task.IsCompleted()), task.Title, formatDate(task.Due),
				dimStyle.Render(task.ListTitle), dimStyle.Render(task.Account),
			})
		}
		renderTable(cmd, []string{"", "TITLE", "DUE", "LIST", "ACCOUNT"}, rows)
		return nil
	}
}

func runAggregateLists(cmd *cobra.Command, _ []string) error {
	if aggregateService == nil {
		return errors.New("aggregate service not configured")
	}

	opts, err := aggregateOptions()
	if err != nil {
		return err
	}
	opts.WithCounts = aggregateCounts

	lists, err := aggregateService.Lists(cmd.Context(), opts)
	if err != nil {
		return friendlyError(err, "")
	}

	format, err := resolveFormat()
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		return printJSON(cmd, lists)
	case FormatMinimal:
		for _, list := range lists {
			cmd.Printf("%s\t%s\t%s\n", list.Account, list.ID, list.Title)
		}
		return nil
	default:
		if len(lists) == 0 {
			cmd.Println("No task lists.")
			return nil
		}
		headers := []string{"TITLE", "ID", "ACCOUNT"}
		if aggregateCounts {
			headers = append(headers, "OPEN")
		}
		rows := make([][]string, 0, len(lists))
		for _, list := range lists {
			row := []string{list.Title, list.ID, dimStyle.Render(list.Account)}
			if aggregateCounts {
				row = append(row, strconv.Itoa(list.TaskCount))
			}
			rows = append(rows, row)
		}
		renderTable(cmd, headers, rows)
		return nil
	}
}

func runAggregateSummary(cmd *cobra.Command, _ []string) error {
	if aggregateService == nil {
		return errors.New("aggregate service not configured")
	}

	opts, err := aggregateOptions()
	if err != nil {
		return err
	}

	summaries, err := aggregateService.Summary(cmd.Context(), opts)
	if err != nil {
		return friendlyError(err, "")
	}

	format, err := resolveFormat()
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return printJSON(cmd, summaries)
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		detail := ""
		if s.Err != "" {
			detail = statusStyles[domain.StatusError].Render(s.Err)
		}
		rows = append(rows, []string{
			s.Account, renderStatus(s.Status),
			strconv.Itoa(s.Lists), strconv.Itoa(s.Tasks),
			strconv.Itoa(s.Pending), strconv.Itoa(s.Completed),
			strconv.Itoa(s.Overdue), detail,
		})
	}
	renderTable(cmd, []string{"ACCOUNT", "STATUS", "LISTS", "TASKS", "PENDING", "DONE", "OVERDUE", ""}, rows)
	return nil
}
