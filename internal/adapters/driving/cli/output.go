package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

// Output formats.
const (
	FormatTable   = "table"
	FormatJSON    = "json"
	FormatMinimal = "minimal"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	statusStyles = map[domain.AccountStatus]lipgloss.Style{
		domain.StatusActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		domain.StatusExpired: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		domain.StatusRevoked: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		domain.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		domain.StatusUnknown: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	}
)

// resolveFormat picks the output format: the --format flag wins, then the
// stored default, then table.
func resolveFormat() (string, error) {
	format := flagFormat
	if format == "" && configStore != nil {
		if settings, err := configStore.Settings(); err == nil && settings.OutputFormat != "" {
			format = settings.OutputFormat
		}
	}
	if format == "" {
		format = FormatTable
	}
	switch format {
	case FormatTable, FormatJSON, FormatMinimal:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, or minimal)", format)
	}
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// renderTable writes an aligned table with a styled header row.
func renderTable(cmd *cobra.Command, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(headerStyle.Render(pad(h, widths[i])))
		if i < len(headers)-1 {
			b.WriteString("  ")
		}
	}
	cmd.Println(b.String())

	for _, row := range rows {
		b.Reset()
		for i, cell := range row {
			b.WriteString(pad(cell, widths[i]))
			if i < len(row)-1 {
				b.WriteString("  ")
			}
		}
		cmd.Println(b.String())
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// renderStatus colors an account status for table output.
func renderStatus(status domain.AccountStatus) string {
	if style, ok := statusStyles[status]; ok {
		return style.Render(string(status))
	}
	return string(status)
}

// formatDate formats a timestamp for table output, rendering the zero
// time as a dash.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

// formatDateTime is formatDate with minute precision.
func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// checkbox renders a completion marker for task rows.
func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// friendlyError rewrites lifecycle errors into actionable messages.
func friendlyError(err error, email string) error {
	switch {
	case errors.Is(err, domain.ErrAccessRevoked):
		return fmt.Errorf("access for %s has been revoked; remove and re-add the account: %w", email, err)
	case errors.Is(err, domain.ErrCredentialExpired):
		return fmt.Errorf("credentials for %s have expired; re-add the account to re-authorize: %w", email, err)
	case errors.Is(err, domain.ErrNoAccountsConfigured):
		return fmt.Errorf("no accounts connected; run 'gtasks accounts add' first: %w", err)
	default:
		return err
	}
}
