// Package web serves the single-page front end: a file input and the two result panels.
//
// Routes
//
//	GET  /        → full page: upload form and panels
//	POST /upload  → multipart form with the chosen image in field "file"; redirects back to /
//	GET  /panes   → panels fragment, polled by the page while the mask is outstanding
//
// The upload reads the image inside the request (the multipart temp files do not outlive it) and
// hands the remaining pipeline to [tasks.Controller.Run] on a background goroutine.
package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/satseg/internal/shared"
	"github.com/desertthunder/satseg/internal/tasks"
)

// FileField is the form field carrying the uploaded image.
const FileField = "file"

// Handler serves the page, the upload endpoint and the panels fragment.
type Handler struct {
	ctx        context.Context
	controller *tasks.Controller
	logger     *log.Logger
	maxUpload  int64
}

// HandlerOpts contains the dependencies of a [Handler].
type HandlerOpts struct {
	Context        context.Context // Bounds background pipeline runs; defaults to [context.Background]
	Controller     *tasks.Controller
	Logger         *log.Logger
	MaxUploadBytes int64
}

// NewHandler creates a [Handler].
func NewHandler(opts HandlerOpts) *Handler {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = shared.DefaultMaxUploadBytes
	}

	return &Handler{
		ctx:        opts.Context,
		controller: opts.Controller,
		logger:     opts.Logger,
		maxUpload:  opts.MaxUploadBytes,
	}
}

// Routes returns the mux patterns served by the handler.
func (h *Handler) Routes() []string {
	return []string{"GET /{$}", "POST /upload", "GET /panes"}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		h.page(w)
	case r.Method == http.MethodPost && r.URL.Path == "/upload":
		h.upload(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/panes":
		h.panes(w)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) page(w http.ResponseWriter) {
	h.write(w, func(buf *bytes.Buffer) error { return RenderPage(buf, h.controller.State()) })
}

func (h *Handler) panes(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	h.write(w, func(buf *bytes.Buffer) error { return Render(buf, h.controller.State()) })
}

// write renders into a buffer first so a template error can still become a 500.
func (h *Handler) write(w http.ResponseWriter, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.logger.Error("render failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.Warn("invalid upload", "error", err)
		http.Error(w, "Invalid upload form", http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File[FileField]
	if len(headers) == 0 {
		h.logger.Debug("upload without files")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	files := make([]tasks.FileHandle, len(headers))
	for i, fh := range headers {
		files[i] = uploadedFile{header: fh}
	}

	read := h.controller.Select(files...)
	next := h.controller.Dispatch(read(r.Context()))
	go h.controller.Run(h.ctx, next)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
