package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var tasklistsCmd = &cobra.Command{
	Use:     "tasklists",
	Aliases: []string{"lists"},
	Short:   "Manage task lists",
	Long: `List, create, rename, and delete task lists in one account.

Examples:
  gtasks tasklists list
  gtasks tasklists create "Groceries"
  gtasks tasklists rename <list-id> "Weekend"
  gtasks tasklists delete <list-id> --account alice@gmail.com`,
	RunE: runTasklistsList,
}

var tasklistsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List task lists",
	RunE:  runTasklistsList,
}

var tasklistsGetCmd = &cobra.Command{
	Use:   "get [list-id]",
	Short: "Show one task list",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasklistsGet,
}

var tasklistsCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a task list",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasklistsCreate,
}

var tasklistsRenameCmd = &cobra.Command{
	Use:   "rename [list-id] [title]",
	Short: "Rename a task list",
	Args:  cobra.ExactArgs(2),
	RunE:  runTasklistsRename,
}

var tasklistsDeleteCmd = &cobra.Command{
	Use:   "delete [list-id]",
	Short: "Delete a task list and all its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasklistsDelete,
}

var tasklistsAccount string

func init() {
	tasklistsCmd.PersistentFlags().StringVarP(&tasklistsAccount, "account", "a", "", "Account email (default: the default account)")

	tasklistsCmd.AddCommand(tasklistsListCmd)
	tasklistsCmd.AddCommand(tasklistsGetCmd)
	tasklistsCmd.AddCommand(tasklistsCreateCmd)
	tasklistsCmd.AddCommand(tasklistsRenameCmd)
	tasklistsCmd.AddCommand(tasklistsDeleteCmd)
	rootCmd.AddCommand(tasklistsCmd)
}

// resolveAccountEmail resolves the --account flag (or the default account)
// to a connected account's email.
func resolveAccountEmail(explicit string) (string, error) {
	if accountService == nil {
		return "", errors.New("account service not configured")
	}
	account, err := accountService.Resolve(explicit)
	if err != nil {
		return "", friendlyError(err, explicit)
	}
	return account.Email, nil
}

func runTasklistsList(cmd *cobra.Command, _ []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasklistsAccount)
	if err != nil {
		return err
	}

	lists, err := taskAPI.ListTaskLists(cmd.Context(), email)
	if err != nil {
		return friendlyError(err, email)
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
			cmd.Printf("%s\t%s\n", list.ID, list.Title)
		}
		return nil
	default:
		if len(lists) == 0 {
			cmd.Println("No task lists.")
			return nil
		}
		rows := make([][]string, 0, len(lists))
		for _, list := range lists {
			rows = append(rows, []string{list.ID, list.Title, formatDateTime(list.Updated)})
		}
		renderTable(cmd, []string{"ID", "TITLE", "UPDATED"}, rows)
		return nil
	}
}

func runTasklistsGet(cmd *cobra.Command, args []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasklistsAccount)
	if err != nil {
		return err
	}

	list, err := taskAPI.GetTaskList(cmd.Context(), email, args[0])
	if err != nil {
		return friendlyError(err, email)
	}

	format, err := resolveFormat()
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return printJSON(cmd, list)
	}
	cmd.Printf("ID:      %s\n", list.ID)
	cmd.Printf("Title:   %s\n", list.Title)
	cmd.Printf("Updated: %s\n", formatDateTime(list.Updated))
	return nil
}

func runTasklistsCreate(cmd *cobra.Command, args []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasklistsAccount)
	if err != nil {
		return err
	}

	list, err := taskAPI.CreateTaskList(cmd.Context(), email, args[0])
	if err != nil {
		return friendlyError(err, email)
	}
	cmd.Printf("Created task list %q (%s)\n", list.Title, list.ID)
	return nil
}

func runTasklistsRename(cmd *cobra.Command, args []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasklistsAccount)
	if err != nil {
		return err
	}

	list, err := taskAPI.RenameTaskList(cmd.Context(), email, args[0], args[1])
	if err != nil {
		return friendlyError(err, email)
	}
	cmd.Printf("Renamed task list to %q\n", list.Title)
	return nil
}

func runTasklistsDelete(cmd *cobra.Command, args []string) error {
	if taskAPI == nil {
		return errors.New("task API not configured")
	}

	email, err := resolveAccountEmail(tasklistsAccount)
	if err != nil {
		return err
	}

	if err := taskAPI.DeleteTaskList(cmd.Context(), email, args[0]); err != nil {
		return friendlyError(err, email)
	}
	cmd.Println("Deleted task list " + args[0])
	return nil
}
