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
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/blacktop/go-termimg"
	"github.com/blacktop/texttoimage/internal/api"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	_ "golang.org/x/image/webp"
)

// Session is the state of one successful generation: what is shown in the
// result panel and what the download action fetches.
type Session struct {
	ImageID     api.ID
	DownloadURL string
	Filename    string
	ImageSrc    string
}

type resultPanel struct {
	src      string
	preview  []byte
	rendered string
	err      error
}

type previewMsg struct {
	src  string
	data []byte
	err  error
}

var protocols = map[string]termimg.Protocol{
	"auto":       termimg.Auto,
	"kitty":      termimg.Kitty,
	"iterm":      termimg.ITerm2,
	"iterm2":     termimg.ITerm2,
	"sixel":      termimg.Sixel,
	"halfblocks": termimg.Halfblocks,
}

// ValidProtocols lists the accepted display protocol names.
func ValidProtocols() []string {
	return []string{"auto", "kitty", "iterm", "sixel", "halfblocks"}
}

// showResult replaces the result panel with the new image, records the session
// and schedules the recent strip refresh.
func (m *Model) showResult(resp *api.GenerateResponse) tea.Cmd {
	src := resp.ImageSrc()
	m.result = resultPanel{src: src}
	m.gen.session = Session{
		ImageID:     resp.ImageID,
		DownloadURL: resp.DownloadURL,
		Filename:    resp.Filename,
		ImageSrc:    src,
	}
	m.gen.showResult = true
	log.Debug("Image generated", "id", resp.ImageID, "src", src)

	return tea.Batch(fetchPreview(m.ctx, m.backend, src), m.scheduleRecentRefresh())
}

func (m *Model) applyPreview(msg previewMsg) {
	if msg.src != m.result.src {
		return
	}
	if msg.err != nil {
		log.Error("Could not fetch preview", "src", msg.src, "err", msg.err)
		m.result.err = msg.err
		return
	}
	m.result.preview = msg.data
	m.result.rendered, m.result.err = renderImage(msg.data, m.opts.Protocol, max(20, m.width/2), max(10, m.height-12))
	if m.result.err != nil {
		log.Error("Could not render preview", "src", msg.src, "err", m.result.err)
	}
}

func fetchPreview(ctx context.Context, b Backend, src string) tea.Cmd {
	return func() tea.Msg {
		data, err := b.Fetch(ctx, src)
		return previewMsg{src: src, data: data, err: err}
	}
}

func renderImage(data []byte, protocol string, width, height int) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("error decoding image: %w", err)
	}
	ti := termimg.New(img).Width(width).Height(height)
	if p, ok := protocols[protocol]; ok {
		ti = ti.Protocol(p)
	}
	return ti.Render()
}

func (m Model) resultView(width int) string {
	s := m.gen.session
	info := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Your image is ready"),
		labelStyle.Render("Image ")+s.ImageSrc,
		labelStyle.Render("ID    ")+s.ImageID.String(),
		"",
		labelStyle.Render("[ Download ]")+mutedStyle.Render(" ctrl+s   ")+labelStyle.Render("[ Generate another ]")+mutedStyle.Render(" ctrl+n"),
	)
	panel := resultPanelStyle.Width(max(10, width-4)).Render(info)

	switch {
	case m.result.err != nil:
		return panel + "\n" + mutedStyle.Render("Preview unavailable: "+m.result.err.Error())
	case m.result.rendered != "":
		return panel + "\n" + m.result.rendered
	default:
		return panel + "\n" + mutedStyle.Render("Loading preview...")
	}
}
