package ops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/errors"
)

// ImportMode controls how imported templates combine with the stored list.
type ImportMode string

const (
	ImportModeAppend  ImportMode = "append"  // add after the stored list, skipping id collisions
	ImportModeReplace ImportMode = "replace" // the file becomes the whole list (all or nothing)
)

// ImportTemplatesInput contains parameters for the ImportTemplates operation.
type ImportTemplatesInput struct {
	Path string     `json:"path"` // required
	Mode ImportMode `json:"mode"` // default: append
}

// ImportTemplatesOutput contains the result of the ImportTemplates operation.
type ImportTemplatesOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Total    int           `json:"total"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one record that could not be imported.
type ImportError struct {
	Line    int    `json:"line,omitempty"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import error codes.
const (
	ImportParseError    = "PARSE_ERROR"
	ImportInvalidRecord = "INVALID_RECORD"
	ImportDuplicateID   = "DUPLICATE_ID"
	ImportIDCollision   = "TEMPLATE_ALREADY_EXISTS"
	ImportLimitReached  = "LIMIT_REACHED"
)

const (
	maxImportLineBytes   = MaxRawTextBytes
	initialScanBufferLen = 64 * 1024
)

// importRecord is one parsed template plus the line it came from.
type importRecord struct {
	line     int
	template checklist.Template
}

// ImportTemplates reads templates from a .jsonl or .yaml export.
func ImportTemplates(ctx context.Context, env Env, input ImportTemplatesInput) (*ImportTemplatesOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeAppend
	}
	if input.Mode != ImportModeAppend && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: append, replace")
	}
	if err := ValidatePath(input.Path, PathCheckRead, env.Config); err != nil {
		return nil, err
	}

	file, err := openNoFollow(input.Path, os.O_RDONLY, 0)
	if err != nil {
		var tErr *errors.TratativaError
		if stderrors.As(err, &tErr) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	var records []importRecord
	var parseErrors []ImportError
	if format, _ := FormatForPath(input.Path); format == FormatYAML {
		records, parseErrors = parseYAMLExport(file)
	} else {
		records, parseErrors = parseJSONLExport(file)
	}
	records, parseErrors = validateRecords(records, parseErrors)

	stored, err := LoadTemplates(ctx, env)
	if err != nil {
		return nil, err
	}

	if input.Mode == ImportModeReplace {
		return importReplace(ctx, env, stored, records, parseErrors)
	}
	return importAppend(ctx, env, stored, records, parseErrors)
}

// importReplace swaps the whole list, but only for a clean file.
func importReplace(ctx context.Context, env Env, stored []checklist.Template, records []importRecord, parseErrors []ImportError) (*ImportTemplatesOutput, error) {
	if len(parseErrors) > 0 {
		return &ImportTemplatesOutput{
			Skipped: len(parseErrors),
			Total:   len(stored),
			Errors:  parseErrors,
		}, nil
	}
	if len(records) > MaxTemplates {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("file holds %d templates; limit is %d", len(records), MaxTemplates))
	}

	templates := make([]checklist.Template, len(records))
	for i, r := range records {
		templates[i] = r.template
	}
	if err := saveTemplates(ctx, env, templates); err != nil {
		return nil, err
	}
	return &ImportTemplatesOutput{
		Imported: len(templates),
		Total:    len(templates),
		Errors:   []ImportError{},
	}, nil
}

// importAppend adds new ids after the stored list and reports the rest.
func importAppend(ctx context.Context, env Env, stored []checklist.Template, records []importRecord, parseErrors []ImportError) (*ImportTemplatesOutput, error) {
	out := &ImportTemplatesOutput{Errors: append([]ImportError{}, parseErrors...)}
	out.Skipped = len(parseErrors)

	templates := stored
	for _, r := range records {
		if indexOfTemplate(templates, r.template.ID) >= 0 {
			out.Errors = append(out.Errors, ImportError{
				Line:    r.line,
				ID:      r.template.ID,
				Code:    ImportIDCollision,
				Message: fmt.Sprintf("template with id %q already exists", r.template.ID),
			})
			out.Skipped++
			continue
		}
		if len(templates) >= MaxTemplates {
			out.Errors = append(out.Errors, ImportError{
				Line:    r.line,
				ID:      r.template.ID,
				Code:    ImportLimitReached,
				Message: fmt.Sprintf("template limit reached (%d)", MaxTemplates),
			})
			out.Skipped++
			continue
		}
		templates = append(templates, r.template)
		out.Imported++
	}

	if out.Imported > 0 {
		if err := saveTemplates(ctx, env, templates); err != nil {
			return nil, err
		}
	}
	out.Total = len(templates)
	return out, nil
}

// validateRecords normalizes each record, assigns missing ids and drops
// invalid templates and ids repeated within the file.
func validateRecords(records []importRecord, parseErrors []ImportError) ([]importRecord, []ImportError) {
	valid := make([]importRecord, 0, len(records))
	seen := make(map[string]bool, len(records))

	for _, r := range records {
		t := normalizeTemplate(r.template)
		if err := t.Validate(); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    r.line,
				ID:      t.ID,
				Code:    ImportInvalidRecord,
				Message: err.Error(),
			})
			continue
		}
		if t.ID == "" {
			t.ID = ulid.Make().String()
		}
		if seen[t.ID] {
			parseErrors = append(parseErrors, ImportError{
				Line:    r.line,
				ID:      t.ID,
				Code:    ImportDuplicateID,
				Message: fmt.Sprintf("id %q appears more than once in the file", t.ID),
			})
			continue
		}
		seen[t.ID] = true
		valid = append(valid, importRecord{line: r.line, template: t})
	}
	return valid, parseErrors
}

// jsonlLine is either the export header or a template.
type jsonlLine struct {
	TratativaExport bool `json:"_tratativa_export"`
	checklist.Template
}

// parseJSONLExport reads one JSON object per line. Blank lines and the
// header are skipped.
func parseJSONLExport(r io.Reader) ([]importRecord, []ImportError) {
	var records []importRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialScanBufferLen), maxImportLineBytes)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec jsonlLine
		if err := json.Unmarshal(line, &rec); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    ImportParseError,
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if rec.TratativaExport {
			continue
		}
		records = append(records, importRecord{line: lineNum, template: rec.Template})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum + 1,
			Code:    ImportParseError,
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}

// parseYAMLExport accepts either an export document (a mapping with a
// templates key) or a bare list of templates.
func parseYAMLExport(r io.Reader) ([]importRecord, []ImportError) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, []ImportError{{Code: ImportParseError, Message: fmt.Sprintf("invalid YAML: %v", err)}}
	}

	body := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		body = doc.Content[0]
	}

	var items []*yaml.Node
	switch body.Kind {
	case yaml.SequenceNode:
		items = body.Content
	case yaml.MappingNode:
		var wrapper struct {
			Templates []yaml.Node `yaml:"templates"`
		}
		if err := body.Decode(&wrapper); err != nil {
			return nil, []ImportError{{Line: body.Line, Code: ImportParseError, Message: fmt.Sprintf("invalid YAML: %v", err)}}
		}
		for i := range wrapper.Templates {
			items = append(items, &wrapper.Templates[i])
		}
	default:
		return nil, []ImportError{{Line: body.Line, Code: ImportParseError, Message: "expected a list of templates"}}
	}

	var records []importRecord
	var parseErrors []ImportError
	for _, item := range items {
		var t checklist.Template
		if err := item.Decode(&t); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    item.Line,
				Code:    ImportParseError,
				Message: fmt.Sprintf("invalid template: %v", err),
			})
			continue
		}
		records = append(records, importRecord{line: item.Line, template: t})
	}
	return records, parseErrors
}
