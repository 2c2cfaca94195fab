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
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/webp"
)

const (
	DefaultBaseURL = "https://api-inference.huggingface.co/models"
	DefaultTimeout = 60 * time.Second
)

const (
	msgModelLoading  = "Model is currently loading. Please try again in a few moments."
	msgRateLimited   = "Rate limit exceeded. Please wait before making another request."
	msgUnauthorized  = "Invalid API key. Please check your Hugging Face API key."
	msgTimeout       = "Request timed out. The model might be busy, please try again."
	msgConnection    = "Connection error. Please check your internet connection."
	msgBadImage      = "Error processing generated image"
	msgUnexpected    = "Unexpected response from API"
	msgUnknownAPIErr = "Unknown error from API"
)

// Error is a generation failure with a message fit to show the user.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

type Client struct {
	baseURL    string
	apiKey     string
	params     Parameters
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithParameters(p Parameters) Option {
	return func(c *Client) { c.params = p }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		params:     DefaultParameters,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" {
		log.Warn("No Hugging Face API key set, requests may be rate limited")
	}
	return c
}

// Generate renders prompt with model and returns the image encoded as PNG.
// Failures are returned as *Error.
func (c *Client) Generate(ctx context.Context, model, prompt string) ([]byte, error) {
	payload, err := json.Marshal(Request{Inputs: prompt, Parameters: c.params})
	if err != nil {
		return nil, fmt.Errorf("error marshaling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	log.Info("Generating image", "model", model, "prompt", truncate(prompt, 100))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		return nil, &Error{StatusCode: resp.StatusCode, Message: msgModelLoading}
	case http.StatusTooManyRequests:
		return nil, &Error{StatusCode: resp.StatusCode, Message: msgRateLimited}
	case http.StatusUnauthorized:
		return nil, &Error{StatusCode: resp.StatusCode, Message: msgUnauthorized}
	default:
		log.Error("API request failed", "status", resp.StatusCode, "body", truncate(string(body), 200))
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("API request failed with status %d", resp.StatusCode)}
	}

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return nil, apiError(resp.StatusCode, body)
	}

	out, err := normalizePNG(body)
	if err != nil {
		log.Error("Error processing generated image", "err", err)
		return nil, &Error{StatusCode: resp.StatusCode, Message: msgBadImage, Err: err}
	}
	log.Debug("Image generated", "model", model, "bytes", len(out))
	return out, nil
}

// apiError reports a 200 answer that carried JSON instead of image bytes.
func apiError(status int, body []byte) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		log.Error("Unexpected response format", "body", truncate(string(body), 200))
		return &Error{StatusCode: status, Message: msgUnexpected, Err: err}
	}
	msg := msgUnknownAPIErr
	switch v := er.Error.(type) {
	case string:
		if v != "" {
			msg = v
		}
	case []any:
		if len(v) > 0 {
			msg = fmt.Sprint(v[0])
		}
	}
	log.Error("API returned error", "err", msg)
	return &Error{StatusCode: status, Message: "API Error: " + msg}
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		log.Error("Request timed out", "err", err)
		return &Error{Message: msgTimeout, Err: err}
	}
	log.Error("Connection error", "err", err)
	return &Error{Message: msgConnection, Err: err}
}

// normalizePNG decodes any supported image format and re-encodes it as an
// opaque RGBA PNG.
func normalizePNG(data []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "png" {
		if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
			return data, nil
		}
	}

	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, src, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
