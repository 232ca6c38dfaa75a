package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/errors"
)

// ExportSchemaVersion is written in every export header.
const ExportSchemaVersion = "1.0"

// ExportTemplatesInput contains parameters for the ExportTemplates operation.
type ExportTemplatesInput struct {
	Path   string     `json:"path"`   // optional, default: ~/.tratativa/exports/templates-<timestamp>.<format>
	Format FileFormat `json:"format"` // only used for the default path; default: jsonl
}

// ExportTemplatesOutput contains the result of the ExportTemplates operation.
type ExportTemplatesOutput struct {
	Path       string     `json:"path"`
	Format     FileFormat `json:"format"`
	Count      int        `json:"count"`
	ExportedAt int64      `json:"exported_at"`
}

// ExportHeader is the first line of a JSONL export.
type ExportHeader struct {
	TratativaExport bool   `json:"_tratativa_export"`
	SchemaVersion   string `json:"schema_version"`
	ExportedAt      int64  `json:"exported_at"`
}

// yamlExport is the document written to a YAML export.
type yamlExport struct {
	TratativaExport bool                 `yaml:"tratativa_export"`
	SchemaVersion   string               `yaml:"schema_version"`
	ExportedAt      int64                `yaml:"exported_at"`
	Templates       []checklist.Template `yaml:"templates"`
}

// ExportTemplates writes the template list to a .jsonl or .yaml file.
// The file is written to a temp name and renamed into place, so a failed
// export never clobbers an existing file.
func ExportTemplates(ctx context.Context, env Env, input ExportTemplatesInput) (*ExportTemplatesOutput, error) {
	now, err := env.now()
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(input.Format, now)
		if err != nil {
			return nil, err
		}
	}
	if err := ValidatePath(exportPath, PathCheckWrite, env.Config); err != nil {
		return nil, err
	}
	format, _ := FormatForPath(exportPath)

	templates, err := LoadTemplates(ctx, env)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	exportedAt := now.Unix()
	err = writeAtomically(exportPath, func(w io.Writer) error {
		if format == FormatYAML {
			return writeYAMLExport(w, templates, exportedAt)
		}
		return writeJSONLExport(w, templates, exportedAt)
	})
	if err != nil {
		return nil, err
	}

	return &ExportTemplatesOutput{
		Path:       exportPath,
		Format:     format,
		Count:      len(templates),
		ExportedAt: exportedAt,
	}, nil
}

func writeJSONLExport(w io.Writer, templates []checklist.Template, exportedAt int64) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ExportHeader{
		TratativaExport: true,
		SchemaVersion:   ExportSchemaVersion,
		ExportedAt:      exportedAt,
	}); err != nil {
		return err
	}
	for _, t := range templates {
		if err := enc.Encode(t); err != nil {
			return err
		}
	}
	return nil
}

func writeYAMLExport(w io.Writer, templates []checklist.Template, exportedAt int64) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlExport{
		TratativaExport: true,
		SchemaVersion:   ExportSchemaVersion,
		ExportedAt:      exportedAt,
		Templates:       templates,
	}); err != nil {
		return err
	}
	return enc.Close()
}

// writeAtomically writes through a random temp file next to path and renames
// it over path once write succeeds and the data is synced.
func writeAtomically(path string, write func(io.Writer) error) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if err := write(file); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Windows cannot rename an open file.
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink planted since validation.
	if isSymlink(path) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath returns ~/.tratativa/exports/templates-<timestamp>.<ext>.
func defaultExportPath(format FileFormat, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	switch format {
	case "", FormatJSONL:
		format = FormatJSONL
	case FormatYAML:
	default:
		return "", errors.NewInvalidRequest("format must be one of: jsonl, yaml")
	}
	filename := fmt.Sprintf("templates-%s.%s", now.Format("2006-01-02T150405"), format)
	return filepath.Join(dir, filename), nil
}
