package formatter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/satseg/internal/models"
	"github.com/desertthunder/satseg/internal/shared"
	th "github.com/desertthunder/satseg/internal/testing"
)

func testResult() Result {
	return Result{
		Satellite: &models.FileDetails{FileName: "tile 01.png", FileType: "image/png", Data: th.PNG},
		Mask:      &models.FileDetails{FileName: "mask.png", FileType: "image/png", Data: []byte{0, 0, 0}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"raw", FormatRaw},
		{"", FormatRaw},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"txt", FormatText},
		{" text ", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("ParseFormat(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("csv"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToJSON", func(t *testing.T) {
		result := testResult()

		data, err := ExportToJSON(result.Mask, false)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		want := `{"file_name":"mask.png","file_type":"image/png","data":"AAAA"}`
		if string(data) != want {
			t.Errorf("expected %s, got %s", want, data)
		}

		pretty, err := ExportToJSON(result.Mask, true)
		if err != nil {
			t.Fatalf("ExportToJSON pretty failed: %v", err)
		}
		if !strings.Contains(string(pretty), "\n  \"data\": \"AAAA\"") {
			t.Errorf("expected indented JSON, got %s", pretty)
		}

		decoded, err := models.ParseFileDetails(pretty)
		if err != nil {
			t.Fatalf("exported JSON does not parse: %v", err)
		}
		if string(decoded.Data) != string(result.Mask.Data) {
			t.Errorf("decoded data mismatch")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		result := testResult()

		data, err := ExportToMarkdown(result)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Segmentation of tile 01.png",
			"## Satellite image",
			"![tile 01.png](" + result.Satellite.DataURI() + ")",
			"## Segments",
			"### mask.png",
			"![mask.png](data:image/png;base64,AAAA)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without satellite", func(t *testing.T) {
		result := testResult()
		result.Satellite = nil

		data, err := ExportToMarkdown(result)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if strings.Contains(string(data), "## Satellite image") {
			t.Errorf("unexpected satellite section")
		}
		if !strings.Contains(string(data), "# Segmentation of mask.png") {
			t.Errorf("expected mask name as title, got: %s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testResult())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Satellite: tile 01.png (image/png, 67 B)") {
			t.Errorf("text missing satellite line, got: %s", output)
		}
		if !strings.Contains(output, "Mask: mask.png (image/png, 3 B)") {
			t.Errorf("text missing mask line, got: %s", output)
		}
	})

	t.Run("missing mask", func(t *testing.T) {
		result := Result{Satellite: testResult().Satellite}
		for _, format := range Formats {
			if _, err := Export(result, format, false); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("%s: expected ErrInvalidInput, got %v", format, err)
			}
		}
	})

	t.Run("Export", func(t *testing.T) {
		result := testResult()

		raw, err := Export(result, FormatRaw, false)
		if err != nil {
			t.Fatalf("Export raw failed: %v", err)
		}
		if string(raw) != string(result.Mask.Data) {
			t.Errorf("raw export should be the mask bytes")
		}

		data, err := Export(result, FormatJSON, false)
		if err != nil {
			t.Fatalf("Export json failed: %v", err)
		}
		var wire map[string]string
		if err := json.Unmarshal(data, &wire); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if wire["data"] != "AAAA" {
			t.Errorf("expected data AAAA, got %q", wire["data"])
		}

		if _, err := Export(result, Format("csv"), false); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestDefaultFilename(t *testing.T) {
	result := testResult()

	tests := []struct {
		format Format
		want   string
	}{
		{FormatRaw, "tile 01_mask.png"},
		{FormatJSON, "tile 01_mask.json"},
		{FormatMarkdown, "tile 01_segments.md"},
		{FormatText, "tile 01_segments.txt"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := DefaultFilename(result, tt.format); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("without satellite", func(t *testing.T) {
		if got := DefaultFilename(Result{Mask: result.Mask}, FormatJSON); got != "segments_mask.json" {
			t.Errorf("expected segments_mask.json, got %q", got)
		}
	})

	t.Run("mask name is not a path", func(t *testing.T) {
		r := testResult()
		r.Mask.FileName = "../../etc/mask.png"
		if got := DefaultFilename(r, FormatRaw); got != "tile 01_mask.png" {
			t.Errorf("expected tile 01_mask.png, got %q", got)
		}
	})

	t.Run("raw never names the satellite", func(t *testing.T) {
		r := testResult()
		r.Mask.FileName = r.Satellite.FileName
		got := DefaultFilename(r, FormatRaw)
		if got == r.Satellite.FileName {
			t.Errorf("default raw name %q collides with the satellite", got)
		}
		if got != "tile 01_mask.png" {
			t.Errorf("expected tile 01_mask.png, got %q", got)
		}
	})

	t.Run("raw mask without extension", func(t *testing.T) {
		r := testResult()
		r.Mask.FileName = "mask"
		if got := DefaultFilename(r, FormatRaw); got != "tile 01_mask" {
			t.Errorf("expected tile 01_mask, got %q", got)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("WithCustomPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "result.md")

		written, err := WriteExport(testResult(), FormatMarkdown, path, WriteOptions{})
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}

		content := th.MustReadFile(t, path)
		if !strings.Contains(content, "## Segments") {
			t.Errorf("written file missing content")
		}
	})

	t.Run("Raw", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mask.png")

		if _, err := WriteExport(testResult(), FormatRaw, path, WriteOptions{}); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if len(data) != 3 {
			t.Errorf("expected 3 mask bytes, got %d", len(data))
		}
	})

	t.Run("InvalidPath", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		th.MustWriteFile(t, blocker, []byte("x"))

		if _, err := WriteExport(testResult(), FormatText, filepath.Join(blocker, "out.txt"), WriteOptions{}); err == nil {
			t.Error("expected error writing below a regular file")
		}
	})

	t.Run("ExistingFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tile.png")
		th.MustWriteFile(t, path, []byte("source"))

		_, err := WriteExport(testResult(), FormatRaw, path, WriteOptions{})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if got := th.MustReadFile(t, path); got != "source" {
			t.Errorf("expected existing file untouched, got %q", got)
		}

		if _, err := WriteExport(testResult(), FormatRaw, path, WriteOptions{Overwrite: true}); err != nil {
			t.Fatalf("expected overwrite to succeed, got %v", err)
		}
		if got := th.MustReadFile(t, path); got != string([]byte{0, 0, 0}) {
			t.Errorf("expected mask bytes after overwrite, got %q", got)
		}
	})

	t.Run("NoMask", func(t *testing.T) {
		if _, err := WriteExport(Result{}, FormatText, filepath.Join(t.TempDir(), "x.txt"), WriteOptions{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
