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
	"context"

	"github.com/blacktop/texttoimage/internal/api"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	recentLimit = 6

	msgNoImages     = "No images generated yet. Create your first masterpiece!"
	msgRecentFailed = "Unable to load recent images."
)

type recentState int

const (
	recentLoading recentState = iota
	recentReady
	recentEmpty
	recentFailed
)

type recentLoadedMsg struct {
	images []api.Image
	err    error
}

// recentStrip is the thumbnail strip of the newest images on the generate page.
type recentStrip struct {
	state  recentState
	images []api.Image
}

func loadRecent(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		p, err := b.Images(ctx, 1, 0)
		if err != nil {
			return recentLoadedMsg{err: err}
		}
		return recentLoadedMsg{images: p.Images}
	}
}

func (r *recentStrip) apply(msg recentLoadedMsg) {
	r.images = nil
	switch {
	case msg.err != nil:
		log.Error("Error loading recent images", "err", msg.err)
		r.state = recentFailed
	case len(msg.images) == 0:
		r.state = recentEmpty
	default:
		r.state = recentReady
		r.images = msg.images[:min(len(msg.images), recentLimit)]
	}
}

func (r recentStrip) view(width int) string {
	header := titleStyle.Render("Recent images")
	switch r.state {
	case recentLoading:
		return lipgloss.JoinVertical(lipgloss.Left, header, mutedStyle.Render("Loading..."))
	case recentEmpty:
		return lipgloss.JoinVertical(lipgloss.Left, header, mutedStyle.Render(msgNoImages))
	case recentFailed:
		return lipgloss.JoinVertical(lipgloss.Left, header, mutedStyle.Render(msgRecentFailed))
	}

	perRow := max(1, width/(thumbStyle.GetWidth()+2))
	var rows []string
	for start := 0; start < len(r.images); start += perRow {
		end := min(start+perRow, len(r.images))
		var cells []string
		for _, img := range r.images[start:end] {
			cells = append(cells, thumbnail(img))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, rows...)...)
}

// thumbnail renders the simplified card for one image: its title and source.
func thumbnail(img api.Image) string {
	w := thumbStyle.GetWidth() - 2
	return thumbStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		truncate(img.Title(), w),
		mutedStyle.Render(truncate(img.Filename, w)),
	))
}
