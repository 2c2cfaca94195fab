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
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// GeneratedPrefix is where the backend serves generated image files.
const GeneratedPrefix = "/static/generated/"

type GenerateRequest struct {
	Prompt    string `json:"prompt"`     // Prompt for the generated image
	ModelName string `json:"model_name"` // Model identifier, e.g. stabilityai/stable-diffusion-2-1
}

type GenerateResponse struct {
	Success     bool   `json:"success"`
	Filename    string `json:"filename,omitempty"`
	ImageID     ID     `json:"image_id,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OK reports whether the response describes a usable generated image.
// A payload without a success flag or without a filename counts as malformed.
func (r *GenerateResponse) OK() bool {
	return r != nil && r.Success && r.Filename != ""
}

// ImageSrc is the path the generated image is served from.
func (r *GenerateResponse) ImageSrc() string {
	return GeneratedImagePath(r.Filename)
}

type Image struct {
	ID          ID        `json:"id"`
	Prompt      string    `json:"prompt"`
	ModelName   string    `json:"model_name"`
	Filename    string    `json:"filename"`
	CreatedAt   Timestamp `json:"created_at"`
	FileSize    int64     `json:"file_size,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
}

// Src returns the image location, deriving it from the filename when the backend omitted it.
func (i Image) Src() string {
	if i.ImageURL != "" {
		return i.ImageURL
	}
	return GeneratedImagePath(i.Filename)
}

// Download returns the download link for the image. It is always derived from the
// basename of the image source so it stays valid for scraped entries.
func (i Image) Download() string {
	if i.DownloadURL != "" {
		return i.DownloadURL
	}
	src := i.Src()
	if idx := strings.LastIndex(src, "/"); idx >= 0 {
		src = src[idx+1:]
	}
	return DownloadPath(src)
}

// Title is the short label shown on thumbnails.
func (i Image) Title() string {
	if i.Prompt != "" {
		return i.Prompt
	}
	return i.Filename
}

type ImagePage struct {
	Success bool    `json:"success"`
	Images  []Image `json:"images"`
	Page    int     `json:"page"`
	Pages   int     `json:"pages"`
	PerPage int     `json:"per_page"`
	Total   int     `json:"total"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// GeneratedImagePath returns the served path for a generated image file.
func GeneratedImagePath(filename string) string {
	return GeneratedPrefix + filename
}

// DownloadPath returns the attachment path for a generated image file.
func DownloadPath(filename string) string {
	return "/download/" + url.PathEscape(filename)
}

// ID is an image identifier. The backend sends it as a JSON number while
// clients and markup treat it as a string, so both forms are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("image id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric identifiers as JSON numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := id.Int64(); err == nil {
		return strconv.AppendInt(nil, n, 10), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Int64 parses the identifier as the backend's numeric key.
func (id ID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// Timestamp accepts RFC 3339 as well as naive ISO 8601 timestamps.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// ParseTimestamp parses s using the supported layouts. An empty string yields the zero value.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return Timestamp{tm}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Display formats the timestamp the way the gallery shows it.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("Jan 02, 2006 15:04")
}
