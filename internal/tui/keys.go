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

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Submit      key.Binding
	Model       key.Binding
	Download    key.Binding
	Another     key.Binding
	Dismiss     key.Binding
	SwitchPage  key.Binding
	View        key.Binding
	Delete      key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	GalleryQuit key.Binding
	Save        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")),
		Model:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "model")),
		Download:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "download")),
		Another:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "generate another")),
		Dismiss:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "try again")),
		SwitchPage:  key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "gallery")),
		View:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Confirm:     key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Cancel:      key.NewBinding(key.WithKeys("esc", "n", "q"), key.WithHelp("esc", "close")),
		PrevPage:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
		NextPage:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		GalleryQuit: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "download")),
	}
}

func (k keyMap) generateHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Model, k.Download, k.Another, k.Dismiss, k.SwitchPage, k.Quit}
}

func (k keyMap) galleryHelp() []key.Binding {
	return []key.Binding{k.View, k.Delete, k.PrevPage, k.NextPage, k.SwitchPage, k.GalleryQuit}
}

func (k keyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Save, k.Cancel}
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}
