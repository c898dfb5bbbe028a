package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Shared console styles for the search, recipe, filters and diets commands.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// formatNutrient renders a "name: value unit" line, skipping zero values.
func formatNutrient(name string, value float64, unit string) string {
	if value == 0 {
		return ""
	}
	return fmt.Sprintf("  %s: %.1f%s\n", name, value, unit)
}

// joinOrDash joins list values for display, with a dash for empty lists.
func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
