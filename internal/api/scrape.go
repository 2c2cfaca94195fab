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
package api

import (
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// ParseGallery extracts image entries from the gallery page markup. Each entry is an
// element with class "image-card" that contains an <img> and a ".card-title".
// Cards missing either are skipped.
func ParseGallery(r io.Reader) ([]Image, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing gallery markup: %w", err)
	}

	var images []Image
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "image-card") {
			if img, ok := cardImage(n); ok {
				images = append(images, img)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return images, nil
}

func cardImage(card *html.Node) (Image, bool) {
	imgNode := find(card, func(n *html.Node) bool { return n.Data == "img" })
	titleNode := find(card, func(n *html.Node) bool { return hasClass(n, "card-title") })
	if imgNode == nil || titleNode == nil {
		return Image{}, false
	}

	src := getAttr(imgNode, "src")
	img := Image{
		ImageURL: src,
		Filename: path.Base(src),
		Prompt:   strings.TrimSpace(textContent(titleNode)),
	}
	if id := getAttr(card, "data-image-id"); id != "" {
		img.ID = ID(id)
	} else if n := find(card, func(n *html.Node) bool { return getAttr(n, "data-image-id") != "" }); n != nil {
		img.ID = ID(getAttr(n, "data-image-id"))
	}
	if view := find(card, func(n *html.Node) bool { return hasClass(n, "view-btn") }); view != nil {
		if p := getAttr(view, "data-image-prompt"); p != "" {
			img.Prompt = p
		}
		img.ModelName = getAttr(view, "data-image-model")
		if ts, err := ParseTimestamp(getAttr(view, "data-image-date")); err == nil {
			img.CreatedAt = ts
		}
	}
	return img, true
}

// find returns the first element below n (depth first) that matches.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
