package web

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/desertthunder/satseg/internal/models"
	"github.com/desertthunder/satseg/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// panesView is the template data for the two panels.
type panesView struct {
	SatelliteName string
	SatelliteSrc  template.URL
	MaskName      string
	MaskSrc       template.URL
	Reading       bool
	ReadingNames  string
	Pending       bool
	ReadErr       string
	MaskErr       string
}

func newPanesView(s tasks.State) panesView {
	v := panesView{
		Reading:      s.Phase == tasks.Reading,
		ReadingNames: strings.Join(s.Pending, ", "),
		Pending:      s.Phase.Busy(),
	}

	if s.Satellite != nil {
		v.SatelliteName = s.Satellite.FileName
		v.SatelliteSrc = dataURL(s.Satellite)
	}
	if s.Mask != nil {
		v.MaskName = s.Mask.FileName
		v.MaskSrc = dataURL(s.Mask)
	}
	if s.Phase == tasks.Failed {
		if s.Satellite == nil {
			v.ReadErr = s.Err
		} else {
			v.MaskErr = s.Err
		}
	}
	return v
}

// dataURL marks the image's data URI as trusted; html/template would otherwise reject the data: scheme.
func dataURL(f *models.FileDetails) template.URL {
	return template.URL(f.DataURI())
}

// Render writes the panels fragment for s.
func Render(w io.Writer, s tasks.State) error {
	return templates.ExecuteTemplate(w, "panes", newPanesView(s))
}

// RenderPage writes the full page, upload form included, for s.
func RenderPage(w io.Writer, s tasks.State) error {
	return templates.ExecuteTemplate(w, "index", newPanesView(s))
}
