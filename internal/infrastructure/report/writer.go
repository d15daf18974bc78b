// Package report exports a run report as JSON, YAML or an Excel workbook.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the export format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "report format", fmt.Errorf("unsupported extension %q", filepath.Ext(path)))
	}
}

// WriteFile writes r to path in the format its extension names.
func WriteFile(fsys afero.Fs, path string, r *domain.RunReport) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Write(f, format, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func Write(w io.Writer, format Format, r *domain.RunReport) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(newExport(r))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(newExport(r))
		if err == nil {
			err = enc.Close()
		}
	case FormatXLSX:
		err = writeXLSX(w, r)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("write %s report: %w", format, err)
	}
	return nil
}

// export flattens durations to seconds so every format reads the same.
type export struct {
	domain.RunReport `yaml:",inline"`
	ElapsedSeconds   float64 `json:"elapsed_seconds" yaml:"elapsed_seconds"`
}

func newExport(r *domain.RunReport) export {
	return export{RunReport: *r, ElapsedSeconds: r.Elapsed.Seconds()}
}
