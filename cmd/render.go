package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"charityfund/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3AA99F")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6F6E69"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D14D41"))
)

func money(d decimal.Decimal) string {
	return d.StringFixed(models.MoneyScale)
}

func renderTable(title string, headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if title == "" {
		return t.Render()
	}
	return titleStyle.Render(title) + "\n" + t.Render()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func allocationRows(allocations []*models.Allocation) [][]string {
	rows := make([][]string, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.ID),
			string(a.TargetType()),
			fmt.Sprintf("%d", a.TargetID()),
			money(a.Amount),
		})
	}
	return rows
}

var allocationHeaders = []string{"ID", "Target", "Target ID", "Amount"}
