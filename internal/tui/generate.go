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
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/blacktop/texttoimage/internal/api"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	msgEmptyPrompt    = "Please enter a prompt for your image."
	msgGenerateFailed = "Failed to generate image. Please try again."
	msgNetworkError   = "Network error. Please check your connection and try again."

	progressStep = 0.15
	progressCap  = 0.9
)

type generatedMsg struct {
	resp *api.GenerateResponse
	err  error
}

type progressMsg struct{ seq int }

type refreshRecentMsg struct{}

type modelsLoadedMsg struct {
	models []api.ModelInfo
	err    error
}

type downloadedMsg struct {
	path string
	err  error
}

// generation is the state of the prompt form and its panels.
type generation struct {
	loading       bool
	submitEnabled bool
	errMsg        string
	showResult    bool
	percent       float64
	seq           int
	session       Session
}

func newGeneration() generation {
	return generation{submitEnabled: true}
}

func (g *generation) startLoading() {
	g.loading = true
	g.submitEnabled = false
	g.percent = 0
	g.seq++
}

func (g *generation) stopLoading() {
	g.loading = false
	g.submitEnabled = true
	g.percent = 0
}

func (g *generation) showError(msg string) { g.errMsg = msg }
func (g *generation) hideError()           { g.errMsg = "" }
func (g *generation) hideResult()          { g.showResult = false }

func (m *Model) handleGenerateKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Model):
		m.cycleModel()
		return nil
	case key.Matches(msg, m.keys.Download):
		return m.downloadCurrent()
	case key.Matches(msg, m.keys.Another):
		m.gen.hideResult()
		m.prompt.SetValue("")
		m.prompt.Focus()
		return textinput.Blink
	case key.Matches(msg, m.keys.Dismiss):
		m.gen.hideError()
		m.prompt.Focus()
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

// submit validates the prompt and starts a generation request. Only one request
// can be outstanding because submit stays disabled while loading.
func (m *Model) submit() tea.Cmd {
	if !m.gen.submitEnabled {
		return nil
	}
	prompt := strings.TrimSpace(m.prompt.Value())
	if prompt == "" {
		m.gen.showError(msgEmptyPrompt)
		return nil
	}

	m.gen.hideError()
	m.gen.hideResult()
	m.gen.startLoading()

	req := api.GenerateRequest{Prompt: prompt, ModelName: m.modelName}
	log.Debug("Generating image", "prompt", prompt, "model", m.modelName)
	return tea.Batch(generateImage(m.ctx, m.backend, req), m.spinner.Tick, m.progressTick())
}

// finishGeneration handles every terminal outcome of a request. Loading state is
// always cleared, whichever branch returns.
func (m *Model) finishGeneration(msg generatedMsg) tea.Cmd {
	defer m.gen.stopLoading()

	switch {
	case msg.err != nil:
		log.Error("Generation error", "err", msg.err)
		m.gen.showError(msgNetworkError)
		return nil
	case !msg.resp.OK():
		errMsg := msgGenerateFailed
		if msg.resp != nil && msg.resp.Error != "" {
			errMsg = msg.resp.Error
		}
		m.gen.showError(errMsg)
		return nil
	}
	return m.showResult(msg.resp)
}

func (m *Model) progressTick() tea.Cmd {
	seq := m.gen.seq
	return tea.Tick(m.opts.ProgressInterval, func(time.Time) tea.Msg {
		return progressMsg{seq: seq}
	})
}

// advanceProgress creeps the bar forward by a random step, stopping at 90%.
func (m *Model) advanceProgress(msg progressMsg) tea.Cmd {
	if !m.gen.loading || msg.seq != m.gen.seq {
		return nil
	}
	m.gen.percent = min(m.gen.percent+rand.Float64()*progressStep, progressCap)
	if m.gen.percent >= progressCap {
		return nil
	}
	return m.progressTick()
}

func (m *Model) scheduleRecentRefresh() tea.Cmd {
	return tea.Tick(m.opts.RefreshDelay, func(time.Time) tea.Msg {
		return refreshRecentMsg{}
	})
}

func (m *Model) cycleModel() {
	if len(m.models) == 0 {
		return
	}
	idx := slices.IndexFunc(m.models, func(mi api.ModelInfo) bool { return mi.ID == m.modelName })
	m.modelName = m.models[(idx+1)%len(m.models)].ID
}

func (m *Model) applyModels(msg modelsLoadedMsg) {
	if msg.err != nil {
		log.Warn("Could not load model catalog", "err", msg.err)
		return
	}
	m.models = msg.models
	if m.modelName == "" && len(m.models) > 0 {
		m.modelName = m.models[0].ID
	}
}

func (m *Model) modelLabel() string {
	for _, mi := range m.models {
		if mi.ID == m.modelName {
			return fmt.Sprintf("%s (%s)", mi.Name, mi.ID)
		}
	}
	return m.modelName
}

func (m *Model) downloadCurrent() tea.Cmd {
	if m.gen.session.DownloadURL == "" {
		return nil
	}
	return downloadImage(m.ctx, m.backend, m.gen.session.DownloadURL, m.opts.OutputFolder)
}

func generateImage(ctx context.Context, b Backend, req api.GenerateRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := b.Generate(ctx, req)
		return generatedMsg{resp: resp, err: err}
	}
}

func loadModels(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		models, err := b.Models(ctx)
		return modelsLoadedMsg{models: models, err: err}
	}
}

func downloadImage(ctx context.Context, b Backend, ref, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := b.Download(ctx, ref, dir)
		return downloadedMsg{path: path, err: err}
	}
}

func (m Model) generateView() string {
	leftWidth := max(30, int(float64(m.width)*0.45))
	rightWidth := max(30, m.width-leftWidth-2)

	n := len([]rune(m.prompt.Value()))
	form := []string{
		labelStyle.Render("Prompt"),
		m.prompt.View(),
		counterStyle(n).Render(fmt.Sprintf("%d/%d", n, maxPromptLen)),
		"",
		labelStyle.Render("Model ") + m.modelLabel(),
		"",
	}
	if m.gen.submitEnabled {
		form = append(form, titleStyle.Render("[ Generate Image ]"))
	} else {
		form = append(form, mutedStyle.Render("[ Generating... ]"))
	}
	if m.gen.loading {
		form = append(form, "",
			fmt.Sprintf("%s Generating image...", m.spinner.View()),
			m.progress.ViewAs(m.gen.percent),
		)
	}
	if m.gen.errMsg != "" {
		form = append(form, "", errorPanelStyle.Width(leftWidth-4).Render(
			m.gen.errMsg+"\n"+mutedStyle.Render("esc to try again")))
	}
	left := lipgloss.NewStyle().Width(leftWidth).Render(lipgloss.JoinVertical(lipgloss.Left, form...))

	var right string
	if m.gen.showResult {
		right = m.resultView(rightWidth)
	} else if m.features.recent {
		right = m.recent.view(rightWidth)
	} else {
		right = mutedStyle.Width(rightWidth).Render("Image will be displayed here")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}
