// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// lipgloss styles shared by the client commands.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	subjectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// renderScore formats a relevance score for display.
func renderScore(score float64) string {
	return scoreStyle.Render(fmt.Sprintf("[%.2f]", score))
}
