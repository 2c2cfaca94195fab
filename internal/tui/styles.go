/*
Copyright © 2024-2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("205")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	tabStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("240"))
	activeTab  = tabStyle.Foreground(lipgloss.Color("0")).Background(accent)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	errorPanelStyle  = panelStyle.BorderForeground(lipgloss.Color("204"))
	resultPanelStyle = panelStyle.BorderForeground(lipgloss.Color("86"))

	thumbStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(18).
			Height(3).
			Padding(0, 1)

	dialogStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)
)

// character counter thresholds
const (
	counterWarn   = 800
	counterDanger = 900
	maxPromptLen  = 1000
)

func counterStyle(n int) lipgloss.Style {
	switch {
	case n > counterDanger:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545"))
	case n > counterWarn:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#fd7e14"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	}
}
