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

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(level Level, message string) tea.Cmd
}

type toast struct {
	id      int
	level   Level
	message string
}

type toastExpiredMsg struct{ id int }

// Toasts is the default Notifier. Each toast is removed after its TTL elapses.
type Toasts struct {
	ttl   time.Duration
	seq   int
	items []toast
}

func NewToasts(ttl time.Duration) *Toasts {
	return &Toasts{ttl: ttl}
}

func (t *Toasts) Notify(level Level, message string) tea.Cmd {
	t.seq++
	id := t.seq
	t.items = append(t.items, toast{id: id, level: level, message: message})
	return tea.Tick(t.ttl, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// Expire removes the toast with the given id, if it is still shown.
func (t *Toasts) Expire(id int) {
	for i, item := range t.items {
		if item.id == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// Messages returns the currently visible messages, oldest first.
func (t *Toasts) Messages() []string {
	out := make([]string, 0, len(t.items))
	for _, item := range t.items {
		out = append(out, item.message)
	}
	return out
}

func (t *Toasts) View() string {
	if len(t.items) == 0 {
		return ""
	}
	var rows []string
	for _, item := range t.items {
		rows = append(rows, toastStyle(item.level).Render(item.message))
	}
	return strings.Join(rows, "\n")
}

func toastStyle(l Level) lipgloss.Style {
	color := lipgloss.Color("39")
	switch l {
	case LevelSuccess:
		color = lipgloss.Color("42")
	case LevelError:
		color = lipgloss.Color("204")
	}
	return lipgloss.NewStyle().
		Width(36).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color)
}
