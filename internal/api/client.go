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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
)

// Error is an application-level failure reported by the backend (`success: false`).
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the image generation backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("error parsing server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server URL must be absolute: %q", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Resolve turns a backend path (or absolute URL) into an absolute URL.
func (c *Client) Resolve(ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return c.baseURL.String() + ref
	}
	return c.baseURL.ResolveReference(r).String()
}

// Generate submits a prompt. Application failures come back as a response with
// Success false, while transport and decoding problems are returned as errors.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshaling JSON: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	log.Debug("Generate response", "status", resp.StatusCode, "success", result.Success, "image_id", result.ImageID)
	return &result, nil
}

// Images returns one page of the gallery listing. Backends without the structured
// listing endpoint answer 404, in which case the gallery markup is scraped instead.
func (c *Client) Images(ctx context.Context, page, perPage int) (*ImagePage, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	resp, err := c.do(ctx, http.MethodGet, "/api/images?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Debug("Listing endpoint unavailable, scraping gallery markup", "page", page)
		return c.scrapeGallery(ctx, page)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var result ImagePage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	if result.Page == 0 {
		result.Page = page
	}
	return &result, nil
}

// Recent returns the newest images from the first gallery page.
func (c *Client) Recent(ctx context.Context) ([]Image, error) {
	p, err := c.Images(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	return p.Images, nil
}

func (c *Client) scrapeGallery(ctx context.Context, page int) (*ImagePage, error) {
	resp, err := c.do(ctx, http.MethodGet, "/gallery?page="+strconv.Itoa(page), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}
	images, err := ParseGallery(resp.Body)
	if err != nil {
		return nil, err
	}
	return &ImagePage{Success: true, Images: images, Page: page, Pages: page, Total: len(images)}, nil
}

// Delete removes an image. A `success: false` answer is returned as *Error.
func (c *Client) Delete(ctx context.Context, id ID) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/delete/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result DeleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	if !result.Success {
		return &Error{StatusCode: resp.StatusCode, Message: result.Error}
	}
	return nil
}

// Models returns the model catalog offered by the backend.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/models", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}
	var result ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	return result.Models, nil
}

// Fetch downloads a backend resource, typically an image source, into memory.
func (c *Client) Fetch(ctx context.Context, ref string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	return data, nil
}

// Download saves the resource at ref into dir and returns the written path.
func (c *Client) Download(ctx context.Context, ref, dir string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp)
	}

	name := attachmentName(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = path.Base(resp.Request.URL.Path)
	}
	name = sanitizeFilename(name)
	if name == "" {
		name = fmt.Sprintf("image_%d.png", time.Now().Unix())
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("error creating output folder: %w", err)
		}
	}
	dest := filepath.Join(dir, name)
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("error saving image: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("error saving image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("error saving image: %w", err)
	}
	log.Debug("Image saved", "path", dest)
	return dest, nil
}

func (c *Client) do(ctx context.Context, method, ref string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.Resolve(ref), body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	return resp, nil
}

func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var env struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil && env.Error != "" {
		return &Error{StatusCode: resp.StatusCode, Message: env.Error}
	}
	return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

// IsAppError reports whether err is an application-level failure rather than a transport one.
func IsAppError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}

func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}
