package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blacktop/texttoimage/internal/api"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

var errTransport = errors.New("error sending request: connection refused")

type fakeBackend struct {
	generateReqs []api.GenerateRequest
	generateResp *api.GenerateResponse
	generateErr  error

	imagesCalls []int
	images      []api.Image
	pages       int
	imagesErr   error

	deleteCalls []api.ID
	deleteErr   error

	fetchData []byte
	fetchErr  error

	downloads []string
}

func (f *fakeBackend) Generate(_ context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
	f.generateReqs = append(f.generateReqs, req)
	return f.generateResp, f.generateErr
}

func (f *fakeBackend) Images(_ context.Context, page, _ int) (*api.ImagePage, error) {
	f.imagesCalls = append(f.imagesCalls, page)
	if f.imagesErr != nil {
		return nil, f.imagesErr
	}
	return &api.ImagePage{Success: true, Images: f.images, Page: page, Pages: max(1, f.pages), Total: len(f.images)}, nil
}

func (f *fakeBackend) Delete(_ context.Context, id api.ID) error {
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeBackend) Models(context.Context) ([]api.ModelInfo, error) {
	return []api.ModelInfo{{ID: "a/one", Name: "One"}, {ID: "b/two", Name: "Two"}}, nil
}

func (f *fakeBackend) Fetch(context.Context, string) ([]byte, error) {
	return f.fetchData, f.fetchErr
}

func (f *fakeBackend) Download(_ context.Context, ref, dir string) (string, error) {
	f.downloads = append(f.downloads, ref)
	return dir + "/saved.png", nil
}

type note struct {
	level   Level
	message string
}

type recordingNotifier struct {
	notes []note
}

func (r *recordingNotifier) Notify(level Level, message string) tea.Cmd {
	r.notes = append(r.notes, note{level: level, message: message})
	return nil
}

type recordingDialogs struct {
	Modal
	dismissed int
}

func (d *recordingDialogs) Dismiss() {
	d.dismissed++
	d.Modal.Dismiss()
}

func newTestModel(t *testing.T, b *fakeBackend, page Page) (Model, *recordingNotifier, *recordingDialogs) {
	t.Helper()
	n := &recordingNotifier{}
	d := &recordingDialogs{}
	m := New(Options{
		Backend:          b,
		Notifier:         n,
		Dialogs:          d,
		Model:            "stabilityai/stable-diffusion-2-1",
		Page:             page,
		ShowRecent:       true,
		RefreshDelay:     time.Millisecond,
		ReloadDelay:      time.Millisecond,
		ToastTTL:         time.Millisecond,
		ProgressInterval: time.Millisecond,
	})
	return m, n, d
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

// collect runs cmd, flattening batches, and returns every message produced.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func keyEsc() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEsc} }

func keyTab() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyTab} }

func keyCtrl(s string) tea.KeyMsg {
	types := map[string]tea.KeyType{
		"g": tea.KeyCtrlG,
		"n": tea.KeyCtrlN,
		"s": tea.KeyCtrlS,
	}
	return tea.KeyMsg{Type: types[s]}
}
