// Package render turns an EnvironmentReport into JSON, YAML, a text table or
// an HTML page.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alexalbu001/envreport/internal/volume"
	"github.com/alexalbu001/envreport/pkg"
	"gopkg.in/yaml.v3"
)

// Format represents the output format type
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatHTML  Format = "html"
)

func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable, FormatHTML:
		return false
	default:
		return true
	}
}

// SupportedFormats returns every format Writer can produce.
func SupportedFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTable),
		string(FormatHTML),
	}
}

// Page is everything shown for one request: the report plus the optional
// greeting and volume listing.
type Page struct {
	Name   string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Report *pkg.EnvironmentReport `json:"report" yaml:"report"`
	Files  []volume.FileEntry     `json:"files,omitempty" yaml:"files,omitempty"`
}

// Writer renders pages in one format. Close must be called to release the
// file handle when created with NewFileWriterOrStdout.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a Writer for output. A nil output means os.Stdout and an
// unknown format falls back to JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &Writer{
		format: format,
		output: output,
	}
}

// NewFileWriterOrStdout creates a Writer for path, or for stdout when path is empty.
func NewFileWriterOrStdout(format Format, path string) (*Writer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewWriter(format, os.Stdout), nil
	}

	file, err := os.Create(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", trimmed, err)
	}

	w := NewWriter(format, file)
	w.closer = file
	return w, nil
}

// Close releases the output file, if any. It is safe to call on stdout writers.
func (w *Writer) Close() error {
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Render writes page in the configured format.
func (w *Writer) Render(page *Page) error {
	if page == nil || page.Report == nil {
		return fmt.Errorf("nothing to render")
	}

	switch w.format {
	case FormatJSON:
		return w.renderJSON(page)
	case FormatYAML:
		return w.renderYAML(page)
	case FormatTable:
		return renderTable(w.output, page)
	case FormatHTML:
		return renderHTML(w.output, page)
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}

func (w *Writer) renderJSON(page *Page) error {
	encoder := json.NewEncoder(w.output)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(page); err != nil {
		return fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	return nil
}

func (w *Writer) renderYAML(page *Page) error {
	encoder := yaml.NewEncoder(w.output)
	encoder.SetIndent(2)
	if err := encoder.Encode(page); err != nil {
		return fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	return encoder.Close()
}
