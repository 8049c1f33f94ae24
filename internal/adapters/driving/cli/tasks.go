package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

// defaultListID addresses the account's primary list without looking it up.
const defaultListID = "@default"

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks",
	Long: `List, create, update, and complete tasks in one account.

Tasks live in a task list; commands default to the account's primary list
unless --list names another one.

Examples:
  gtasks tasks list
  gtasks tasks list --show-completed --due-before 2026-09-01
  gtasks tasks create "Buy milk" --due 2026-08-30
  gtasks tasks complete <task-id>
  gtasks tasks move <task-id> --parent <other-task-id>`,
	RunE: runTasksList,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTasksList,
}

var tasksGetCmd = &cobra.Command{
	Use:   "get [task-id]",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksGet,
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksCreate,
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update a task's title, notes, or due date",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksUpdate,
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksComplete,
}

var tasksUncompleteCmd = &cobra.Command{
	Use:   "uncomplete [task-id]",
	Short: "Reopen a completed task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksUncomplete,
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDelete,
}

var tasksMoveCmd = &cobra.Command{
	Use:   "move [task-id]",
	Short: "Reposition a task within its list",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksMove,
}

// Flags for task commands.
var (
	tasksAccount       string
	tasksList          string
	tasksShowCompleted bool
	tasksDueBefore     string
	tasksDueAfter      string
	tasksNotes         string
	tasksDue           string
	tasksParent        string
	tasksPrevious      string
	tasksTitle         string
	tasksClearDue      bool
	tasksClearNotes    bool
)

func init() {
	tasksCmd.PersistentFlags().StringVarP(&tasksAccount, "account", "a", "", "Account email (default: the default account)")
	tasksCmd.PersistentFlags().StringVarP(&tasksList, "list", "l", defaultListID, "Task list ID")

	tasksListCmd.Flags().BoolVar(&tasksShowCompleted, "show-completed", false, "Include completed tasks")
	tasksListCmd.Flags().StringVar(&tasksDueBefore, "due-before", "", "Only tasks due before this date (YYYY-MM-DD)")
	tasksListCmd.Flags().StringVar(&tasksDueAfter, "due-after", "", "Only tasks due after this date (YYYY-MM-DD)")

	tasksCreateCmd.Flags().StringVar(&tasksNotes, "notes", "", "Task notes")
	tasksCreateCmd.Flags().StringVar(&tasksDue, "due", "", "Due date (YYYY-MM-DD)")
	tasksCreateCmd.Flags().StringVar(&tasksParent, "parent", "", "Parent task ID (creates a subtask)")

	tasksUpdateCmd.Flags().StringVar(&tasksTitle, "title", "", "New title")
	tasksUpdateCmd.Flags().StringVar(&tasksNotes, "notes", "", "New notes")
	tasksUpdateCmd.Flags().StringVar(&tasksDue, "due", "", "New due date (YYYY-MM-DD)")
	tasksUpdateCmd.Flags().BoolVar(&tasksClearDue, "clear-due", false, "Remove the due date")
	tasksUpdateCmd.Flags().BoolVar(&tasksClearNotes, "clear-notes", false, "Remove the notes")

	tasksMoveCmd.Flags().StringVar(&tasksParent, "parent", "", "New parent task ID")
	tasksMoveCmd.Flags().StringVar(&tasksPrevious, "previous", "", "Task ID to position after")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksGetCmd)
	tasksCmd.AddCommand(tasksCreateCmd)
	tasksCmd.AddCommand(tasksUpdateCmd)
	tasksCmd.AddCommand(tasksCompleteCmd)
	tasksCmd.AddCommand(tasksUncompleteCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
	tasksCmd.AddCommand(tasksMoveCmd)
	rootCmd.AddCommand(tasksCmd)
}

// parseDue parses a due date as YYYY-MM-DD or RFC 3339.
func parseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

func buildTaskFilter() (domain.TaskFilter, error) {
	filter := domain.TaskFilter{ShowCompleted: tasksShowCompleted}
	if tasksDueBefore != "" {
		t, err := parseDue(tasksDueBefore)
		if err != nil {
			return filter, err
		}
		filter.DueBefore = t
	}
	if tasksDueAfter != "" {
		t, err := parseDue(tasksDueAfter)
		if err != nil {
			return filter, err
		}
		filter.DueAfter = t
	}
	return filter, nil
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasksAccount)
	if err != nil {
		return err
	}
	filter, err := buildTaskFilter()
	if err != nil {
		return err
	}

	list, err := taskAPI.ListTasks(cmd.Context(), email, tasksList, filter)
	if err != nil {
		return friendlyError(err, email)
	}

	format, err := resolveFormat()
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		return printJSON(cmd, list)
	case FormatMinimal:
		for _, task := range list {
			cmd.Printf("%s\t%s\n", task.ID, task.Title)
		}
		return nil
	default:
		if len(list) == 0 {
			cmd.Println("No tasks.")
			return nil
		}
		rows := make([][]string, 0, len(list))
		for _, task := range list {
			title := task.Title
			if task.Parent != "" {
				title = "  " + title
			}
			rows = append(rows, []string{checkbox(task.IsCompleted()), task.ID, title, formatDate(task.Due)})
		}
		renderTable(cmd, []string{"", "ID", "TITLE", "DUE"}, rows)
		return nil
	}
}

func runTasksGet(cmd *cobra.Command, args []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasksAccount)
	if err != nil {
		return err
	}

	task, err := taskAPI.GetTask(cmd.Context(), email, tasksList, args[0])
	if err != nil {
		return friendlyError(err, email)
	}

	format, err := resolveFormat()
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return printJSON(cmd, task)
	}

	cmd.Printf("ID:     %s\n", task.ID)
	cmd.Printf("Title:  %s\n", task.Title)
	cmd.Printf("Status: %s\n", task.Status)
	cmd.Printf("Due:    %s\n", formatDate(task.Due))
	if task.Notes != "" {
		cmd.Printf("Notes:  %s\n", task.Notes)
	}
	if task.Parent != "" {
		cmd.Printf("Parent: %s\n", task.Parent)
	}
	if !task.Completed.IsZero() {
		cmd.Printf("Completed: %s\n", formatDateTime(task.Completed))
	}
	return nil
}

func runTasksCreate(cmd *cobra.Command, args []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasksAccount)
	if err != nil {
		return err
	}

	task := domain.Task{Title: args[0], Notes: tasksNotes}
	if tasksDue != "" {
		due, err := parseDue(tasksDue)
		if err != nil {
			return err
		}
		task.Due = due
	}

	created, err := taskAPI.CreateTask(cmd.Context(), email, tasksList, task, tasksParent)
	if err != nil {
		return friendlyError(err, email)
	}
	cmd.Printf("Created task %q (%s)\n", created.Title, created.ID)
	return nil
}

func runTasksUpdate(cmd *cobra.Command, args []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasksAccount)
	if err != nil {
		return err
	}

	changes := domain.TaskChanges{
		ClearDue:   tasksClearDue,
		ClearNotes: tasksClearNotes,
	}
	if cmd.Flags().Changed("title") {
		changes.Title = &tasksTitle
	}
	if cmd.Flags().Changed("notes") {
		changes.Notes = &tasksNotes
	}
	if tasksDue != "" {
		due, err := parseDue(tasksDue)
		if err != nil {
			return err
		}
		changes.Due = &due
	}
	if changes.Title == nil && changes.Notes == nil && changes.Due == nil &&
		!changes.ClearDue && !changes.ClearNotes {
		return errors.New("nothing to update: pass --title, --notes, --due, --clear-due, or --clear-notes")
	}

	updated, err := taskAPI.UpdateTask(cmd.Context(), email, tasksList, args[0], changes)
	if err != nil {
		return friendlyError(err, email)
	}
	cmd.Printf("Updated task %q\n", updated.Title)
	return nil
}

func runTasksComplete(cmd *cobra.Command, args []string) error {
	return setTaskStatus(cmd, args[0], domain.TaskStatusCompleted, "Completed")
}

func runTasksUncomplete(cmd *cobra.Command, args []string) error {
	return setTaskStatus(cmd, args[0], domain.TaskStatusNeedsAction, "Reopened")
}

func setTaskStatus(cmd *cobra.Command, taskID, status, verb string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasksAccount)
	if err != nil {
		return err
	}

	task, err := taskAPI.SetTaskStatus(cmd.Context(), email, tasksList, taskID, status)
	if err != nil {
		return friendlyError(err, email)
	}
	cmd.Printf("%s %q\n", verb, task.Title)
	return nil
}

func runTasksDelete(cmd *cobra.Command, args []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasksAccount)
	if err != nil {
		return err
	}

	if err := taskAPI.DeleteTask(cmd.Context(), email, tasksList, args[0]); err != nil {
		return friendlyError(err, email)
	}
	cmd.Println("Deleted task " + args[0])
	return nil
}

func runTasksMove(cmd *cobra.Command, args []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasksAccount)
	if err != nil {
		return err
	}

	task, err := taskAPI.MoveTask(cmd.Context(), email, tasksList, args[0], tasksParent, tasksPrevious)
	if err != nil {
		return friendlyError(err, email)
	}
	cmd.Printf("Moved task %q\n", task.Title)
	return nil
}
