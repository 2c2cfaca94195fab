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
	"fmt"

	"github.com/blacktop/texttoimage/internal/api"
	"github.com/charmbracelet/lipgloss"
)

type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogDetail
	DialogConfirmDelete
)

// Dialogs shows and dismisses the modal overlays of the gallery page.
type Dialogs interface {
	Show(kind DialogKind, img api.Image)
	Dismiss()
	Active() (DialogKind, api.Image)
}

// Modal is the default Dialogs: at most one overlay at a time.
type Modal struct {
	kind DialogKind
	img  api.Image
}

func NewModal() *Modal { return &Modal{} }

func (d *Modal) Show(kind DialogKind, img api.Image) {
	d.kind = kind
	d.img = img
}

func (d *Modal) Dismiss() {
	d.kind = DialogNone
	d.img = api.Image{}
}

func (d *Modal) Active() (DialogKind, api.Image) {
	return d.kind, d.img
}

func renderDialog(kind DialogKind, img api.Image, width int) string {
	if width <= 0 || width > 70 {
		width = 70
	}
	style := dialogStyle.Width(width)
	switch kind {
	case DialogDetail:
		return style.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Image details"),
			"",
			labelStyle.Render("Image:  ")+img.Src(),
			labelStyle.Render("Prompt: ")+img.Prompt,
			labelStyle.Render("Model:  ")+img.ModelName,
			labelStyle.Render("Date:   ")+img.CreatedAt.Display(),
			labelStyle.Render("Link:   ")+img.Download(),
		))
	case DialogConfirmDelete:
		return style.BorderForeground(lipgloss.Color("204")).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Delete image"),
			"",
			fmt.Sprintf("Delete %q?", truncate(img.Title(), width-12)),
			mutedStyle.Render("This cannot be undone."),
		))
	}
	return ""
}
