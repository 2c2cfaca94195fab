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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/blacktop/texttoimage/internal/api"
	"github.com/blacktop/texttoimage/internal/inference"
	"github.com/blacktop/texttoimage/internal/storage"
	"github.com/blacktop/texttoimage/internal/store"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	msgPromptRequired = "Prompt is required"
	msgInternal       = "Internal server error"
	msgImageNotFound  = "Image not found"
	msgDeleteError    = "Error deleting image"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	model := strings.TrimSpace(req.ModelName)
	if model == "" {
		model = s.model
	}
	if prompt == "" {
		writeError(w, http.StatusBadRequest, msgPromptRequired)
		return
	}
	if utf8.RuneCountInString(prompt) > s.maxLen {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Prompt is too long (max %d characters)", s.maxLen))
		return
	}

	data, err := s.gen.Generate(r.Context(), model, prompt)
	if err != nil {
		log.Error("Image generation failed", "model", model, "err", err)
		var ierr *inference.Error
		if errors.As(err, &ierr) {
			writeError(w, http.StatusInternalServerError, ierr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	filename := strings.ReplaceAll(uuid.NewString(), "-", "") + ".png"
	if _, err := s.files.Write(r.Context(), filename, data); err != nil {
		log.Error("Error saving image", "filename", filename, "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	img := &store.Image{
		Prompt:    prompt,
		ModelName: model,
		Filename:  filename,
		FileSize:  int64(len(data)),
	}
	if err := s.store.Create(r.Context(), img); err != nil {
		log.Error("Error saving image record", "filename", filename, "err", err)
		if rerr := s.files.Remove(r.Context(), filename); rerr != nil {
			log.Warn("Error removing orphaned image", "filename", filename, "err", rerr)
		}
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	log.Info("Image generated", "id", img.ID, "model", model, "filename", filename)
	writeJSON(w, http.StatusOK, api.GenerateResponse{
		Success:     true,
		ImageID:     api.ID(strconv.FormatInt(img.ID, 10)),
		Filename:    filename,
		DownloadURL: api.DownloadPath(filename),
	})
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := min(queryInt(r, "per_page", s.perPage), maxPerPage)

	records, total, err := s.store.List(r.Context(), page, perPage)
	if err != nil {
		log.Error("Error listing images", "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	images := make([]api.Image, 0, len(records))
	for _, rec := range records {
		images = append(images, toAPIImage(rec))
	}
	writeJSON(w, http.StatusOK, api.ImagePage{
		Success: true,
		Images:  images,
		Page:    page,
		Pages:   store.Pages(total, perPage),
		PerPage: perPage,
		Total:   total,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, msgImageNotFound)
		return
	}

	img, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgImageNotFound)
		return
	}
	if err != nil {
		log.Error("Error loading image", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, msgDeleteError)
		return
	}

	if err := s.files.Remove(r.Context(), img.Filename); err != nil {
		log.Error("Error deleting image file", "id", id, "filename", img.Filename, "err", err)
		writeError(w, http.StatusInternalServerError, msgDeleteError)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("Error deleting image record", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, msgDeleteError)
		return
	}

	log.Info("Image deleted", "id", id, "filename", img.Filename)
	writeJSON(w, http.StatusOK, api.DeleteResponse{Success: true})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models := make([]api.ModelInfo, 0, len(s.models))
	for _, m := range s.models {
		models = append(models, api.ModelInfo{ID: m.ID, Name: m.Name, Description: m.Description})
	}
	writeJSON(w, http.StatusOK, api.ModelsResponse{Models: models})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := storage.SecureFilename(chi.URLParam(r, "filename"))
	if name == "" {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	p, err := s.files.Path(name)
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error("Error downloading file", "filename", name, "err", err)
		http.Error(w, "Error downloading file", http.StatusInternalServerError)
		return
	}

	f, err := os.Open(p)
	if err != nil {
		log.Error("Error downloading file", "filename", name, "err", err)
		http.Error(w, "Error downloading file", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, "Error downloading file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

type galleryCard struct {
	api.Image
	Date string
}

type galleryData struct {
	Images   []galleryCard
	Page     int
	Pages    int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	records, total, err := s.store.List(r.Context(), page, s.perPage)
	if err != nil {
		log.Error("Error listing images", "err", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	pages := store.Pages(total, s.perPage)
	data := galleryData{
		Page:     page,
		Pages:    max(pages, 1),
		HasPrev:  page > 1,
		HasNext:  page < pages,
		PrevPage: page - 1,
		NextPage: page + 1,
	}
	for _, rec := range records {
		data.Images = append(data.Images, galleryCard{
			Image: toAPIImage(rec),
			Date:  rec.CreatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.gallery.Execute(w, data); err != nil {
		log.Error("Error rendering gallery", "err", err)
	}
}

func toAPIImage(rec store.Image) api.Image {
	return api.Image{
		ID:          api.ID(strconv.FormatInt(rec.ID, 10)),
		Prompt:      rec.Prompt,
		ModelName:   rec.ModelName,
		Filename:    rec.Filename,
		CreatedAt:   api.Timestamp{Time: rec.CreatedAt},
		FileSize:    rec.FileSize,
		ImageURL:    api.GeneratedImagePath(rec.Filename),
		DownloadURL: api.DownloadPath(rec.Filename),
	}
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}
