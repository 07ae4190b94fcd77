package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tacticalops/armalaunch/pkg/planner"
)

// Plan rendering styles. Adaptive colors keep output readable on both
// light and dark terminals; lipgloss drops the escapes when stdout is
// not a terminal.
var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleChange = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "41"})
	styleNoop = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "243", Dark: "245"})
	styleWarn = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"})
	styleError = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"})
)

func renderPlanText(p planner.Plan) string {
	var b strings.Builder

	b.WriteString(styleHeader.Render("Plan") + "\n")
	for _, note := range p.Notes {
		b.WriteString("  " + styleNoop.Render(note) + "\n")
	}

	for _, a := range p.Actions {
		b.WriteString("  " + renderAction(a) + "\n")
	}

	changes := 0
	for _, a := range p.Actions {
		if a.WillChange {
			changes++
		}
	}
	summary := fmt.Sprintf("%d actions, %d will change", len(p.Actions), changes)
	if !p.OK {
		summary += ", " + styleError.Render("config errors present")
	}
	b.WriteString(styleHeader.Render("Summary") + " " + summary + "\n")

	return b.String()
}

func renderAction(a planner.Action) string {
	marker := styleNoop.Render("·")
	if a.WillChange {
		marker = styleChange.Render("+")
	}

	line := fmt.Sprintf("%s %-20s %s", marker, a.Kind, a.Target)
	if a.Detail != "" {
		line += "  " + styleNoop.Render(a.Detail)
	}

	switch a.Severity {
	case planner.SeverityWarn:
		line += "  " + styleWarn.Render("[warn]")
	case planner.SeverityError:
		line += "  " + styleError.Render("[error]")
	}
	return line
}
