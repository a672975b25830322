package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/satseg/internal/models"
	"github.com/desertthunder/satseg/internal/shared"
	"github.com/desertthunder/satseg/internal/tasks"
)

const (
	SatelliteTitle = "Satellite image"
	SegmentsTitle  = "Segments"

	noFileText    = "No file uploaded."
	noImageText   = "No image uploaded yet..."
	pendingText   = "Processing image..."
	failurePrefix = "Could not fetch answer: "

	minPaneWidth = 32
)

// RenderPanes draws the satellite and segments panels side by side within width columns.
//
// Terminals cannot show the images themselves, so each is summarized by name, type and size.
func RenderPanes(s tasks.State, width int) string {
	paneWidth := max((width-4)/2, minPaneWidth)

	left := styles.pane.Width(paneWidth).Render(satellitePane(s))
	right := styles.pane.Width(paneWidth).Render(segmentsPane(s))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func satellitePane(s tasks.State) string {
	var body string
	switch {
	case s.Satellite != nil:
		body = describeImage(s.Satellite)
	case s.Phase == tasks.Reading:
		body = styles.warn.Render("Reading " + strings.Join(s.Pending, ", ") + "...")
	case s.Phase == tasks.Failed:
		body = styles.err.Render(s.Err)
	default:
		body = styles.help.Render(noFileText)
	}
	return styles.title.Render(SatelliteTitle) + "\n" + body
}

func segmentsPane(s tasks.State) string {
	var body string
	switch {
	case s.Satellite == nil:
		body = styles.help.Render(noImageText)
	case s.Mask != nil:
		body = describeImage(s.Mask)
	case s.Phase == tasks.Failed:
		body = styles.err.Render(failurePrefix + s.Err)
	default:
		body = styles.warn.Render(pendingText)
	}
	return styles.title.Render(SegmentsTitle) + "\n" + body
}

func describeImage(f *models.FileDetails) string {
	return fmt.Sprintf("%s\n%s\n%s",
		styles.ok.Render(f.FileName),
		f.FileType,
		shared.FormatBytes(f.Size()),
	)
}
