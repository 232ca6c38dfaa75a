package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/errors"
)

// SaveMode controls what happens when a saved template's id already exists.
type SaveMode string

const (
	SaveModeError   SaveMode = "error"   // reject the collision
	SaveModeReplace SaveMode = "replace" // overwrite in place, keeping the position
)

// ListTemplatesOutput is the stored template list in priority order.
type ListTemplatesOutput struct {
	Templates []checklist.Template `json:"templates"`
	Count     int                  `json:"count"`
}

// ListTemplates returns the stored templates.
func ListTemplates(ctx context.Context, env Env) (*ListTemplatesOutput, error) {
	templates, err := LoadTemplates(ctx, env)
	if err != nil {
		return nil, err
	}
	return &ListTemplatesOutput{Templates: templates, Count: len(templates)}, nil
}

// SaveTemplateInput contains parameters for the SaveTemplate operation.
type SaveTemplateInput struct {
	Template checklist.Template `json:"template"`
	Mode     SaveMode           `json:"mode"` // default: error
}

// SaveTemplateOutput contains the result of the SaveTemplate operation.
type SaveTemplateOutput struct {
	ID       string `json:"id"`
	Created  bool   `json:"created"`
	Position int    `json:"position"`
}

// SaveTemplate appends a new template or replaces an existing one by id.
// A template without an id gets a fresh ULID.
func SaveTemplate(ctx context.Context, env Env, input SaveTemplateInput) (*SaveTemplateOutput, error) {
	if input.Mode == "" {
		input.Mode = SaveModeError
	}
	if input.Mode != SaveModeError && input.Mode != SaveModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	t := normalizeTemplate(input.Template)
	if err := t.Validate(); err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if t.ID == "" {
		t.ID = ulid.Make().String()
	}

	templates, err := LoadTemplates(ctx, env)
	if err != nil {
		return nil, err
	}

	pos := indexOfTemplate(templates, t.ID)
	created := pos < 0
	switch {
	case created:
		if len(templates) >= MaxTemplates {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("template limit reached (%d)", MaxTemplates))
		}
		templates = append(templates, t)
		pos = len(templates) - 1
	case input.Mode == SaveModeError:
		return nil, errors.NewTemplateAlreadyExists(t.ID)
	default:
		templates[pos] = t
	}

	if err := saveTemplates(ctx, env, templates); err != nil {
		return nil, err
	}
	return &SaveTemplateOutput{ID: t.ID, Created: created, Position: pos}, nil
}

// DeleteTemplateInput contains parameters for the DeleteTemplate operation.
type DeleteTemplateInput struct {
	ID string `json:"id"`
}

// DeleteTemplateOutput contains the result of the DeleteTemplate operation.
type DeleteTemplateOutput struct {
	ID        string `json:"id"`
	Remaining int    `json:"remaining"`
}

// DeleteTemplate removes a template by id.
func DeleteTemplate(ctx context.Context, env Env, input DeleteTemplateInput) (*DeleteTemplateOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	templates, err := LoadTemplates(ctx, env)
	if err != nil {
		return nil, err
	}
	pos := indexOfTemplate(templates, id)
	if pos < 0 {
		return nil, errors.NewNotFound(id)
	}

	templates = append(templates[:pos], templates[pos+1:]...)
	if err := saveTemplates(ctx, env, templates); err != nil {
		return nil, err
	}
	return &DeleteTemplateOutput{ID: id, Remaining: len(templates)}, nil
}

// MoveTemplateInput moves a template to Position (0-based) in the priority order.
type MoveTemplateInput struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// MoveTemplate changes a template's priority. Earlier templates win when
// several match.
func MoveTemplate(ctx context.Context, env Env, input MoveTemplateInput) (*ListTemplatesOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	templates, err := LoadTemplates(ctx, env)
	if err != nil {
		return nil, err
	}
	from := indexOfTemplate(templates, id)
	if from < 0 {
		return nil, errors.NewNotFound(id)
	}
	if input.Position < 0 || input.Position >= len(templates) {
		return nil, errors.NewInvalidRequest(
			fmt.Sprintf("position must be between 0 and %d", len(templates)-1))
	}

	t := templates[from]
	templates = append(templates[:from], templates[from+1:]...)
	templates = append(templates[:input.Position], append([]checklist.Template{t}, templates[input.Position:]...)...)

	if err := saveTemplates(ctx, env, templates); err != nil {
		return nil, err
	}
	return &ListTemplatesOutput{Templates: templates, Count: len(templates)}, nil
}

// ResetTemplates replaces the stored list with the built-in defaults.
func ResetTemplates(ctx context.Context, env Env) (*ListTemplatesOutput, error) {
	templates := checklist.DefaultTemplates()
	if err := saveTemplates(ctx, env, templates); err != nil {
		return nil, err
	}
	return &ListTemplatesOutput{Templates: templates, Count: len(templates)}, nil
}

func indexOfTemplate(templates []checklist.Template, id string) int {
	for i := range templates {
		if templates[i].ID == id {
			return i
		}
	}
	return -1
}

// normalizeTemplate trims the identifying fields and condition values.
// Code and comment are output verbatim, so only their emptiness is checked.
func normalizeTemplate(t checklist.Template) checklist.Template {
	out := checklist.Template{
		ID:      strings.TrimSpace(t.ID),
		Name:    strings.TrimSpace(t.Name),
		Code:    t.Code,
		Comment: t.Comment,
	}
	out.Conditions = make(map[string]string, len(t.Conditions))
	for k, v := range t.Conditions {
		out.Conditions[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
