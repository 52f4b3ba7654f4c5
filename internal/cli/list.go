package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/secassess/pkg/store"
)

// listCommand creates the list command for browsing stored assessments.
func (c *CLI) listCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored assessments, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd.Context(), cmd.OutOrStdout(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print summaries as JSON")

	return cmd
}

func (c *CLI) runList(ctx context.Context, w io.Writer, asJSON bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := st.List(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		if list == nil {
			list = []store.Summary{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	if len(list) == 0 {
		printInfo("No assessments in the %s store", cfg.Store.Driver)
		return nil
	}
	fmt.Fprintln(w, summaryTable(list, time.Now()))
	return nil
}

// summaryTable renders summaries as a bordered table.
func summaryTable(list []store.Summary, now time.Time) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{
			s.ID,
			s.OrgName,
			s.Environment,
			strconv.Itoa(s.Score) + "%",
			s.Status,
			formatRelativeTime(s.UpdatedAt, now),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Organization", "Environment", "Score", "Status", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return StyleHeader
			}
			if row < 0 || row >= len(list) {
				return lipgloss.NewStyle()
			}
			switch col {
			case 0, 5:
				return StyleDim
			case 3:
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}

// formatRelativeTime renders t relative to now for recent times and as
// a date otherwise.
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
