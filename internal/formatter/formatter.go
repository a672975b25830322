// package formatter provides functions to export segmentation results to various formats (raw image, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/satseg/internal/models"
	"github.com/desertthunder/satseg/internal/shared"
)

// Format selects an export representation.
type Format string

const (
	FormatRaw      Format = "raw"      // Mask image bytes as received
	FormatJSON     Format = "json"     // Mask in the service's wire form
	FormatMarkdown Format = "markdown" // Both images inlined as data URIs
	FormatText     Format = "txt"      // Human-readable summary
)

// Formats lists the accepted values of [ParseFormat].
var Formats = []Format{FormatRaw, FormatJSON, FormatMarkdown, FormatText}

// ParseFormat validates a format name, accepting "md" and "text" as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw", "":
		return FormatRaw, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want raw, json, markdown or txt)", shared.ErrInvalidFlag, s)
	}
}

// Result pairs a satellite image with the mask produced for it.
type Result struct {
	Satellite *models.FileDetails
	Mask      *models.FileDetails
}

func (r Result) validate() error {
	if r.Mask == nil || len(r.Mask.Data) == 0 {
		return fmt.Errorf("%w: no mask to export", shared.ErrInvalidInput)
	}
	return nil
}

// ExportToJSON converts the mask to its wire JSON form, indented when pretty is set
func ExportToJSON(mask *models.FileDetails, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(mask, "", "  ")
	}
	return json.Marshal(mask)
}

// ExportToMarkdown converts a result to Markdown with both images inlined as data URIs
func ExportToMarkdown(result Result) ([]byte, error) {
	if err := result.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	title := result.Mask.FileName
	if result.Satellite != nil {
		title = result.Satellite.FileName
	}
	buf.WriteString(fmt.Sprintf("# Segmentation of %s\n\n", title))

	if result.Satellite != nil {
		buf.WriteString("## Satellite image\n\n")
		buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", result.Satellite.FileName, result.Satellite.DataURI()))
	}

	buf.WriteString("## Segments\n\n")
	buf.WriteString(fmt.Sprintf("### %s\n\n", result.Mask.FileName))
	buf.WriteString(fmt.Sprintf("![%s](%s)\n", result.Mask.FileName, result.Mask.DataURI()))

	return buf.Bytes(), nil
}

// ExportToText converts a result to a plain text summary
func ExportToText(result Result) ([]byte, error) {
	if err := result.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	if result.Satellite != nil {
		buf.WriteString(fmt.Sprintf("Satellite: %s (%s, %s)\n", result.Satellite.FileName, result.Satellite.FileType, shared.FormatBytes(result.Satellite.Size())))
	}
	buf.WriteString(fmt.Sprintf("Mask: %s (%s, %s)\n", result.Mask.FileName, result.Mask.FileType, shared.FormatBytes(result.Mask.Size())))

	return buf.Bytes(), nil
}

// Export renders result in the given format.
func Export(result Result, format Format, pretty bool) ([]byte, error) {
	if err := result.validate(); err != nil {
		return nil, err
	}

	switch format {
	case FormatRaw:
		return result.Mask.Data, nil
	case FormatJSON:
		return ExportToJSON(result.Mask, pretty)
	case FormatMarkdown:
		return ExportToMarkdown(result)
	case FormatText:
		return ExportToText(result)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// DefaultFilename names the export file when no path is given.
//
// Every name derives from the satellite's base name with a suffix, so the default never
// names the uploaded image itself. Raw exports keep the extension of the mask's file name.
func DefaultFilename(result Result, format Format) string {
	base := "segments"
	if result.Satellite != nil && result.Satellite.FileName != "" {
		name := filepath.Base(result.Satellite.FileName)
		base = strings.TrimSuffix(name, filepath.Ext(name))
	}

	switch format {
	case FormatJSON:
		return base + "_mask.json"
	case FormatMarkdown:
		return base + "_segments.md"
	case FormatText:
		return base + "_segments.txt"
	default:
		ext := ""
		if result.Mask != nil {
			ext = filepath.Ext(filepath.Base(result.Mask.FileName))
		}
		return base + "_mask" + ext
	}
}

// WriteOptions controls [WriteExport].
type WriteOptions struct {
	Pretty    bool // Indent JSON output
	Overwrite bool // Replace an existing file instead of failing
}

// WriteExport writes result in the given format to path, creating parent directories.
//
// Defaults to [DefaultFilename] in the working directory. An existing file is an
// [shared.ErrInvalidArgument] unless opts.Overwrite is set. Returns the written path.
func WriteExport(result Result, format Format, path string, opts WriteOptions) (string, error) {
	data, err := Export(result, format, opts.Pretty)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	if path == "" {
		path = DefaultFilename(result, format)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, path)
		}
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}
