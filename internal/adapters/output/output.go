// Package output encodes scoring reports as JSON, YAML or a console table.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/scoutgrade/internal/domain/model"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Formatter writes a report.
type Formatter interface {
	Format(w io.Writer, report model.Report) error
}

// New returns the formatter for json, yaml or console.
func New(format string) (Formatter, error) {
	switch format {
	case "json":
		return JSONFormatter{Indent: true}, nil
	case "yaml":
		return YAMLFormatter{}, nil
	case "console":
		return NewConsoleFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// JSONFormatter writes the report as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format encodes report.
func (f JSONFormatter) Format(w io.Writer, report model.Report) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

// YAMLFormatter writes the report as YAML.
type YAMLFormatter struct{}

// Format encodes report.
func (YAMLFormatter) Format(w io.Writer, report model.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// Open returns the destination for path; "-" or "" is stdout, which is not
// closed.
func Open(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
