package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"despesas/internal/core"
)

func newCalendarCommand() *cobra.Command {
	var month string
	now := time.Now

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Mostra a grade do mês no terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := now()
			if month != "" {
				key, err := core.ParseMonthKey(month)
				if err != nil {
					return fmt.Errorf("mês inválido, use AAAA-MM: %w", err)
				}
				ref = key.Time()
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMonth(ref, now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "mês a exibir (AAAA-MM), padrão: mês atual")
	return cmd
}

// renderMonth draws the Sunday-first grid of ref's month. Days outside the
// month are dimmed and today is highlighted.
func renderMonth(ref, today time.Time) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(core.MonthLabel(ref)))
	b.WriteString("\n")

	headers := make([]string, 0, len(core.WeekdayLabels))
	for _, label := range core.WeekdayLabels {
		headers = append(headers, headerStyle.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...))

	for _, week := range core.BuildMonthGrid(ref) {
		cells := make([]string, 0, len(week))
		for _, day := range week {
			style := dayStyle
			switch {
			case core.SameDay(day, today):
				style = todayStyle
			case !core.InMonth(day, ref):
				style = outsideStyle
			}
			cells = append(cells, style.Render(strconv.Itoa(day.Day())))
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return b.String()
}
