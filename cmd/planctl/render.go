package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Lipgloss styles for the plan table.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	headerRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			PaddingRight(2)

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			PaddingLeft(5)

	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}
)

// renderPlan renders a plan as a styled task table with the description
// under each row.
func renderPlan(p *plan) string {
	if p == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Plan: "+p.Goal) + "\n")
	b.WriteString(metaStyle.Render(fmt.Sprintf("%s | source: %s | %d tasks | created %s",
		p.ID, p.Source, len(p.Tasks), p.CreatedAt.Format("2006-01-02 15:04"))) + "\n")
	if p.Source == "fallback" {
		b.WriteString(metaStyle.Render("Generated without a model backend; tasks are generic.") + "\n")
	}
	b.WriteString("\n")

	if len(p.Tasks) == 0 {
		b.WriteString("No tasks\n")
		return b.String()
	}

	widths := columnWidths(p)
	header := []string{"#", "Task", "Duration", "Depends On", "Phase", "Priority"}
	for i, h := range header {
		b.WriteString(headerRowStyle.Render(pad(h, widths[i])))
	}
	b.WriteString("\n")

	for i, t := range p.Tasks {
		cells := []string{
			fmt.Sprintf("%d", i+1),
			t.TaskName,
			t.Duration,
			t.Dependencies,
			t.Phase,
			t.Priority,
		}
		for j, cell := range cells {
			padded := pad(cell, widths[j])
			if j == len(cells)-1 {
				if style, ok := priorityStyles[t.Priority]; ok {
					padded = style.Render(padded)
				}
			}
			b.WriteString(cellStyle.Render(padded))
		}
		b.WriteString("\n")
		if t.Description != "" {
			b.WriteString(descStyle.Render(t.Description) + "\n")
		}
	}

	return b.String()
}

// columnWidths sizes each column to its widest cell, header included.
func columnWidths(p *plan) []int {
	widths := []int{
		len("#"),
		len("Task"),
		len("Duration"),
		len("Depends On"),
		len("Phase"),
		len("Priority"),
	}

	for i, t := range p.Tasks {
		cells := []string{
			fmt.Sprintf("%d", i+1),
			t.TaskName,
			t.Duration,
			t.Dependencies,
			t.Phase,
			t.Priority,
		}
		for j, cell := range cells {
			if w := lipgloss.Width(cell); w > widths[j] {
				widths[j] = w
			}
		}
	}

	return widths
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
