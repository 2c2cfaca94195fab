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
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/blacktop/texttoimage/internal/api"
	"github.com/blacktop/texttoimage/internal/inference"
	"github.com/blacktop/texttoimage/internal/storage"
	"github.com/blacktop/texttoimage/internal/store"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templates embed.FS

const (
	defaultPerPage   = 12
	maxPerPage       = 100
	defaultMaxPrompt = 1000
	maxBodyBytes     = 1 << 20
)

// Generator turns a prompt into PNG bytes.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) ([]byte, error)
}

type Options struct {
	Store           *store.Store
	Files           *storage.FileStore
	Generator       Generator
	Models          []inference.Model
	DefaultModel    string
	PerPage         int
	MaxPromptLength int
}

type Server struct {
	store   *store.Store
	files   *storage.FileStore
	gen     Generator
	models  []inference.Model
	model   string
	perPage int
	maxLen  int
	gallery *template.Template
}

func New(opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templates, "templates/gallery.html")
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:   opts.Store,
		files:   opts.Files,
		gen:     opts.Generator,
		models:  opts.Models,
		model:   opts.DefaultModel,
		perPage: opts.PerPage,
		maxLen:  opts.MaxPromptLength,
		gallery: tmpl,
	}
	if s.models == nil {
		s.models = inference.Models()
	}
	if s.model == "" {
		s.model = s.models[0].ID
	}
	if s.perPage <= 0 {
		s.perPage = defaultPerPage
	}
	if s.maxLen <= 0 {
		s.maxLen = defaultMaxPrompt
	}
	return s, nil
}

// Handler returns the router serving the JSON API, the gallery page and the
// generated image files.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/gallery", http.StatusFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/gallery", s.handleGallery)
	r.Get("/download/{filename}", s.handleDownload)
	r.Handle(api.GeneratedPrefix+"*", http.StripPrefix(api.GeneratedPrefix, noListing(http.FileServer(http.Dir(s.files.BasePath())))))

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Get("/images", s.handleImages)
		r.Delete("/delete/{id}", s.handleDelete)
		r.Get("/models", s.handleModels)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs each request through the charm logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error encoding response", "err", err)
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
