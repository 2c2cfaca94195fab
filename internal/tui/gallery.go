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
	"fmt"
	"time"

	"github.com/blacktop/texttoimage/internal/api"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	msgDeleted        = "Image deleted successfully"
	msgDeleteFailed   = "Failed to delete image"
	msgDeleteNetwork  = "Network error while deleting image"
	msgGalleryEmpty   = "No images yet. Generate one from the Generate page."
	msgGalleryFailed  = "Unable to load the gallery."
	msgGalleryLoading = "Loading gallery..."
)

type galleryLoadedMsg struct {
	page *api.ImagePage
	err  error
}

type deletedMsg struct {
	id  api.ID
	err error
}

type reloadGalleryMsg struct{}

type galleryItem struct {
	api.Image
}

func (i galleryItem) Description() string {
	return fmt.Sprintf("%s · %s", i.ModelName, i.CreatedAt.Display())
}

func (i galleryItem) FilterValue() string { return i.Prompt }

// deleteTarget is the armed-delete state machine: idle -> armed(id) -> idle.
// Arming records the id only; the confirm completion returns it to idle.
type deleteTarget struct {
	id       api.ID
	armed    bool
	inFlight bool
}

func (d *deleteTarget) Arm(id api.ID) {
	d.id = id
	d.armed = true
}

func (d *deleteTarget) Armed() (api.ID, bool) {
	return d.id, d.armed
}

func (d *deleteTarget) clear() {
	*d = deleteTarget{}
}

type galleryPage struct {
	list    list.Model
	page    int
	pages   int
	total   int
	loading bool
	err     error
	target  deleteTarget
}

func newGalleryPage() galleryPage {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Gallery"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	return galleryPage{list: l, page: 1, loading: true}
}

func (g *galleryPage) apply(msg galleryLoadedMsg) {
	g.loading = false
	if msg.err != nil {
		log.Error("Error loading gallery", "err", msg.err)
		g.err = msg.err
		return
	}
	g.err = nil
	g.page = max(1, msg.page.Page)
	g.pages = msg.page.Pages
	g.total = msg.page.Total

	items := make([]list.Item, 0, len(msg.page.Images))
	for _, img := range msg.page.Images {
		items = append(items, galleryItem{img})
	}
	g.list.SetItems(items)
	g.list.ResetSelected()
}

func (g *galleryPage) selected() (api.Image, bool) {
	item, ok := g.list.SelectedItem().(galleryItem)
	if !ok {
		return api.Image{}, false
	}
	return item.Image, true
}

// remove drops the entry with the given id and reports whether one was found.
func (g *galleryPage) remove(id api.ID) bool {
	for i, item := range g.list.Items() {
		if gi, ok := item.(galleryItem); ok && gi.ID == id {
			g.list.RemoveItem(i)
			g.total = max(0, g.total-1)
			return true
		}
	}
	return false
}

func (g *galleryPage) count() int {
	return len(g.list.Items())
}

func (m *Model) handleGalleryKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.GalleryQuit):
		return tea.Quit
	case key.Matches(msg, m.keys.View):
		if img, ok := m.gallery.selected(); ok {
			m.dialogs.Show(DialogDetail, img)
		}
		return nil
	case key.Matches(msg, m.keys.Delete):
		if img, ok := m.gallery.selected(); ok {
			m.gallery.target.Arm(img.ID)
			m.dialogs.Show(DialogConfirmDelete, img)
		}
		return nil
	case key.Matches(msg, m.keys.PrevPage):
		if m.gallery.page > 1 && !m.gallery.loading {
			m.gallery.loading = true
			return loadGallery(m.ctx, m.backend, m.gallery.page-1, m.opts.PerPage)
		}
		return nil
	case key.Matches(msg, m.keys.NextPage):
		if m.gallery.page < m.gallery.pages && !m.gallery.loading {
			m.gallery.loading = true
			return loadGallery(m.ctx, m.backend, m.gallery.page+1, m.opts.PerPage)
		}
		return nil
	}
	var cmd tea.Cmd
	m.gallery.list, cmd = m.gallery.list.Update(msg)
	return cmd
}

func (m *Model) handleDialogKey(kind DialogKind, img api.Image, msg tea.KeyMsg) tea.Cmd {
	switch kind {
	case DialogDetail:
		switch {
		case key.Matches(msg, m.keys.Save):
			return downloadImage(m.ctx, m.backend, img.Download(), m.opts.OutputFolder)
		case key.Matches(msg, m.keys.Cancel):
			m.dialogs.Dismiss()
		}
	case DialogConfirmDelete:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.confirmDelete()
		case key.Matches(msg, m.keys.Cancel):
			m.dialogs.Dismiss()
		}
	}
	return nil
}

// confirmDelete issues the delete for the armed target. Without an armed target,
// or while a delete is already in flight, it does nothing.
func (m *Model) confirmDelete() tea.Cmd {
	id, ok := m.gallery.target.Armed()
	if !ok || m.gallery.target.inFlight {
		return nil
	}
	m.gallery.target.inFlight = true
	log.Debug("Deleting image", "id", id)
	return deleteImage(m.ctx, m.backend, id)
}

// finishDelete applies a delete result. The armed target is cleared on every outcome.
func (m *Model) finishDelete(msg deletedMsg) tea.Cmd {
	defer m.gallery.target.clear()

	if msg.err != nil {
		log.Error("Delete error", "id", msg.id, "err", msg.err)
		if api.IsAppError(msg.err) {
			return m.notify.Notify(LevelError, msgDeleteFailed)
		}
		return m.notify.Notify(LevelError, msgDeleteNetwork)
	}

	m.gallery.remove(msg.id)
	m.dialogs.Dismiss()
	cmds := []tea.Cmd{m.notify.Notify(LevelSuccess, msgDeleted)}
	if m.gallery.count() == 0 {
		cmds = append(cmds, tea.Tick(m.opts.ReloadDelay, func(time.Time) tea.Msg {
			return reloadGalleryMsg{}
		}))
	}
	return tea.Batch(cmds...)
}

func loadGallery(ctx context.Context, b Backend, page, perPage int) tea.Cmd {
	return func() tea.Msg {
		p, err := b.Images(ctx, page, perPage)
		return galleryLoadedMsg{page: p, err: err}
	}
}

func deleteImage(ctx context.Context, b Backend, id api.ID) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: b.Delete(ctx, id)}
	}
}

func (m Model) galleryView() string {
	switch {
	case m.gallery.loading && m.gallery.count() == 0:
		return mutedStyle.Render(msgGalleryLoading)
	case m.gallery.err != nil:
		return errorPanelStyle.Render(msgGalleryFailed + "\n" + mutedStyle.Render(m.gallery.err.Error()))
	case m.gallery.count() == 0:
		return mutedStyle.Render(msgGalleryEmpty)
	}
	footer := mutedStyle.Render(fmt.Sprintf("page %d of %d · %s", m.gallery.page, max(1, m.gallery.pages), plural(m.gallery.total, "image")))
	return lipgloss.JoinVertical(lipgloss.Left, m.gallery.list.View(), footer)
}
