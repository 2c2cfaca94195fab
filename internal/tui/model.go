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
	"strings"
	"time"

	"github.com/blacktop/texttoimage/internal/api"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Backend is the subset of the image API the interface depends on.
type Backend interface {
	Generate(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error)
	Images(ctx context.Context, page, perPage int) (*api.ImagePage, error)
	Delete(ctx context.Context, id api.ID) error
	Models(ctx context.Context) ([]api.ModelInfo, error)
	Fetch(ctx context.Context, ref string) ([]byte, error)
	Download(ctx context.Context, ref, dir string) (string, error)
}

type Page int

const (
	PageGenerate Page = iota
	PageGallery
)

type Options struct {
	Context      context.Context
	Backend      Backend
	Notifier     Notifier // defaults to Toasts
	Dialogs      Dialogs  // defaults to Modal
	Model        string
	Prompt       string
	Page         Page
	ShowRecent   bool
	OutputFolder string
	Protocol     string
	PerPage      int

	RefreshDelay     time.Duration // gallery refresh after a successful generation
	ReloadDelay      time.Duration // gallery reload after the last entry is deleted
	ToastTTL         time.Duration
	ProgressInterval time.Duration
}

func (o *Options) setDefaults() {
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.RefreshDelay == 0 {
		o.RefreshDelay = time.Second
	}
	if o.ReloadDelay == 0 {
		o.ReloadDelay = time.Second
	}
	if o.ToastTTL == 0 {
		o.ToastTTL = 5 * time.Second
	}
	if o.ProgressInterval == 0 {
		o.ProgressInterval = 800 * time.Millisecond
	}
}

// features records which optional parts of the interface are wired.
type features struct {
	form    bool
	recent  bool
	gallery bool
}

type Model struct {
	ctx      context.Context
	opts     Options
	backend  Backend
	features features
	page     Page
	width    int
	height   int

	prompt    textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	models    []api.ModelInfo
	modelName string

	gen     generation
	result  resultPanel
	recent  recentStrip
	gallery galleryPage

	notify  Notifier
	toasts  *Toasts
	dialogs Dialogs
	keys    keyMap
	help    help.Model
}

// New builds the interface and detects which page features to wire.
func New(opts Options) Model {
	opts.setDefaults()

	ti := textinput.New()
	ti.Placeholder = "Describe the image you want to create..."
	ti.CharLimit = maxPromptLen
	ti.Width = 60
	ti.SetValue(opts.Prompt)
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	m := Model{
		ctx:       opts.Context,
		opts:      opts,
		backend:   opts.Backend,
		page:      opts.Page,
		prompt:    ti,
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		modelName: opts.Model,
		gen:       newGeneration(),
		recent:    recentStrip{state: recentLoading},
		gallery:   newGalleryPage(),
		dialogs:   opts.Dialogs,
		notify:    opts.Notifier,
		keys:      defaultKeyMap(),
		help:      help.New(),
	}
	if m.notify == nil {
		m.toasts = NewToasts(opts.ToastTTL)
		m.notify = m.toasts
	}
	if m.dialogs == nil {
		m.dialogs = NewModal()
	}

	switch opts.Page {
	case PageGallery:
		m.features.gallery = true
	default:
		m.features.form = true
		m.features.recent = opts.ShowRecent
	}
	return m
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.features.form {
		cmds = append(cmds, textinput.Blink, loadModels(m.ctx, m.backend))
	}
	if m.features.recent {
		cmds = append(cmds, loadRecent(m.ctx, m.backend))
	}
	if m.features.gallery {
		cmds = append(cmds, loadGallery(m.ctx, m.backend, 1, m.opts.PerPage))
	}
	return tea.Batch(cmds...)
}

// Session returns the state of the most recent successful generation.
func (m Model) Session() Session {
	return m.gen.session
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd
	case generatedMsg:
		cmd := m.finishGeneration(msg)
		return m, cmd
	case progressMsg:
		cmd := m.advanceProgress(msg)
		return m, cmd
	case spinner.TickMsg:
		if !m.gen.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case previewMsg:
		m.applyPreview(msg)
		return m, nil
	case refreshRecentMsg:
		if !m.features.recent {
			return m, nil
		}
		return m, loadRecent(m.ctx, m.backend)
	case recentLoadedMsg:
		m.recent.apply(msg)
		return m, nil
	case modelsLoadedMsg:
		m.applyModels(msg)
		return m, nil
	case galleryLoadedMsg:
		m.gallery.apply(msg)
		return m, nil
	case deletedMsg:
		cmd := m.finishDelete(msg)
		return m, cmd
	case reloadGalleryMsg:
		m.gallery.loading = true
		return m, loadGallery(m.ctx, m.backend, m.gallery.page, m.opts.PerPage)
	case downloadedMsg:
		if msg.err != nil {
			log.Error("Download failed", "err", msg.err)
			return m, m.notify.Notify(LevelError, "Download failed: "+msg.err.Error())
		}
		return m, m.notify.Notify(LevelSuccess, "Image saved: "+msg.path)
	case toastExpiredMsg:
		if m.toasts != nil {
			m.toasts.Expire(msg.id)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.prompt.Width = max(20, int(float64(width)*0.4)-8)
	m.progress.Width = max(10, int(float64(width)*0.4)-8)
	m.gallery.list.SetSize(width, max(5, height-6))
	m.help.Width = width
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if kind, img := m.dialogs.Active(); kind != DialogNone {
		return m.handleDialogKey(kind, img, msg)
	}
	if key.Matches(msg, m.keys.SwitchPage) {
		return m.switchPage()
	}
	if m.page == PageGallery {
		return m.handleGalleryKey(msg)
	}
	return m.handleGenerateKey(msg)
}

// switchPage toggles between the generation form and the gallery, wiring the
// target page's features on first visit.
func (m *Model) switchPage() tea.Cmd {
	if m.page == PageGallery {
		m.page = PageGenerate
		var cmds []tea.Cmd
		if !m.features.form {
			m.features.form = true
			m.features.recent = m.opts.ShowRecent
			cmds = append(cmds, textinput.Blink, loadModels(m.ctx, m.backend))
		}
		if m.features.recent {
			cmds = append(cmds, loadRecent(m.ctx, m.backend))
		}
		m.prompt.Focus()
		return tea.Batch(cmds...)
	}

	m.page = PageGallery
	m.prompt.Blur()
	if !m.features.gallery {
		m.features.gallery = true
		m.gallery.loading = true
		return loadGallery(m.ctx, m.backend, 1, m.opts.PerPage)
	}
	return nil
}

func (m Model) View() string {
	header := m.headerView()
	var body string
	if kind, img := m.dialogs.Active(); kind != DialogNone && m.page == PageGallery {
		body = lipgloss.Place(max(m.width, 1), max(m.height-4, 1), lipgloss.Center, lipgloss.Center,
			renderDialog(kind, img, m.width-10))
	} else if m.page == PageGallery {
		body = m.galleryView()
	} else {
		body = m.generateView()
	}

	view := lipgloss.JoinVertical(lipgloss.Left, header, body, m.helpView())
	if m.toasts != nil {
		if t := m.toasts.View(); t != "" {
			view = lipgloss.JoinVertical(lipgloss.Right, t, view)
		}
	}
	return view
}

func (m Model) headerView() string {
	gen, gal := tabStyle, tabStyle
	if m.page == PageGallery {
		gal = activeTab
	} else {
		gen = activeTab
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("texttoimage "),
		gen.Render("Generate"),
		gal.Render("Gallery"),
	) + "\n"
}

func (m Model) helpView() string {
	var bindings []key.Binding
	switch kind, _ := m.dialogs.Active(); {
	case m.page == PageGallery && kind == DialogDetail:
		bindings = m.keys.detailHelp()
	case m.page == PageGallery && kind == DialogConfirmDelete:
		bindings = m.keys.confirmHelp()
	case m.page == PageGallery:
		bindings = m.keys.galleryHelp()
	default:
		bindings = m.keys.generateHelp()
	}
	return "\n" + m.help.ShortHelpView(bindings)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
