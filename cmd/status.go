package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/stella/internal/fetcher"
	"github.com/StinkyLord/stella/internal/generator"
	"github.com/StinkyLord/stella/internal/model"
	"github.com/StinkyLord/stella/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which dependency working copies have local changes",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	layout := model.DefaultLayout()
	f := fetcher.New(cfg.Workspace, layout)

	g := generator.New(cfg.Workspace, f)
	g.Layout = layout
	resolved, err := g.Resolve(cmd.Context())
	if err != nil {
		return err
	}

	statuses := status.Check(cmd.Context(), resolved, f)

	var rows [][]string
	for _, d := range resolved.Dependencies() {
		rows = append(rows, []string{d.Identity, string(statuses[d.Identity]), d.LocalPath})
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), statusTable(rows).String())
	return err
}

func statusTable(rows [][]string) *table.Table {
	return table.New().
		Headers("DEPENDENCY", "STATUS", "PATH").
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 2, 0, 0)
			}
			if col == 1 && row >= 0 && row < len(rows) && rows[row][col] == string(status.Dirty) {
				return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Padding(0, 2, 0, 0)
			}
			return lipgloss.NewStyle().Padding(0, 2, 0, 0)
		})
}
