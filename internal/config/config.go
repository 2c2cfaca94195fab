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
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultServerURL = "http://localhost:5000"
	DefaultModel     = "stabilityai/stable-diffusion-2-1"
	DefaultProtocol  = "auto"
)

// Config holds the settings for both the terminal client and the backend server.
type Config struct {
	// client
	ServerURL    string
	Model        string
	OutputFolder string
	Protocol     string
	Timeout      time.Duration

	// server
	Addr               string
	DatabasePath       string
	UploadFolder       string
	HuggingFaceAPIKey  string
	HuggingFaceBaseURL string
	PerPage            int
	MaxPromptLength    int
}

// Load reads an optional .env file and then the environment, applying defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		ServerURL:          getEnv("TTI_SERVER_URL", DefaultServerURL),
		Model:              getEnv("TTI_MODEL", DefaultModel),
		OutputFolder:       os.Getenv("TTI_OUTPUT"),
		Protocol:           getEnv("TTI_PROTOCOL", DefaultProtocol),
		Timeout:            getEnvDuration("TTI_TIMEOUT_SECONDS", 120*time.Second),
		Addr:               ":" + getEnv("PORT", "5000"),
		DatabasePath:       getEnv("DATABASE_PATH", "texttoimage.db"),
		UploadFolder:       getEnv("UPLOAD_FOLDER", "static/generated"),
		HuggingFaceAPIKey:  os.Getenv("HUGGINGFACE_API_KEY"),
		HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", "https://api-inference.huggingface.co/models"),
		PerPage:            getEnvInt("GALLERY_PER_PAGE", 12),
		MaxPromptLength:    1000,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("TTI_SERVER_URL must be an http(s) URL: %q", c.ServerURL)
	}
	if c.PerPage <= 0 {
		return fmt.Errorf("GALLERY_PER_PAGE must be positive: %d", c.PerPage)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("TTI_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if secs := getEnvInt(key, 0); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
