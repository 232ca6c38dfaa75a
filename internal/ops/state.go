package ops

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/db"
	"github.com/hpungsan/tratativa/internal/errors"
)

// FormData is the persisted session: answers, pasted text and the contacts
// extracted from it. The JSON layout is the stored record format.
type FormData struct {
	Answers  checklist.Answers   `json:"formData"`
	RawText  string              `json:"rawData"`
	Contacts []checklist.Contact `json:"extractedContacts"`
}

// Empty reports whether the session holds nothing.
func (f FormData) Empty() bool {
	return len(f.Answers) == 0 && f.RawText == "" && len(f.Contacts) == 0
}

func emptyFormData() FormData {
	return FormData{Answers: checklist.Answers{}, Contacts: []checklist.Contact{}}
}

// LoadFormData reads the session record. A missing record yields an empty
// session; a malformed one is logged and also yields an empty session.
func LoadFormData(ctx context.Context, env Env) (FormData, error) {
	raw, ok, err := db.GetRecord(ctx, env.DB, FormDataKey)
	if err != nil {
		return FormData{}, err
	}
	if !ok {
		return emptyFormData(), nil
	}

	var fd FormData
	if err := json.Unmarshal([]byte(raw), &fd); err != nil {
		env.logger().Warn("discarding malformed record",
			zap.String("record", FormDataKey), zap.Error(err))
		return emptyFormData(), nil
	}
	if fd.Answers == nil {
		fd.Answers = checklist.Answers{}
	}
	if fd.Contacts == nil {
		fd.Contacts = []checklist.Contact{}
	}
	return fd, nil
}

func saveFormData(ctx context.Context, env Env, fd FormData) error {
	data, err := json.Marshal(fd)
	if err != nil {
		return errors.NewInternal(err)
	}
	return db.PutRecord(ctx, env.DB, FormDataKey, string(data))
}

// LoadTemplates reads the template list. A missing record yields the
// built-in defaults; a malformed one is logged and also yields the defaults.
// A stored empty list is kept as is.
func LoadTemplates(ctx context.Context, env Env) ([]checklist.Template, error) {
	raw, ok, err := db.GetRecord(ctx, env.DB, TemplatesKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return checklist.DefaultTemplates(), nil
	}

	var templates []checklist.Template
	if err := json.Unmarshal([]byte(raw), &templates); err != nil {
		env.logger().Warn("discarding malformed record",
			zap.String("record", TemplatesKey), zap.Error(err))
		return checklist.DefaultTemplates(), nil
	}
	if templates == nil {
		env.logger().Warn("discarding null template list", zap.String("record", TemplatesKey))
		return checklist.DefaultTemplates(), nil
	}
	return templates, nil
}

func saveTemplates(ctx context.Context, env Env, templates []checklist.Template) error {
	if templates == nil {
		templates = []checklist.Template{}
	}
	data, err := json.Marshal(templates)
	if err != nil {
		return errors.NewInternal(err)
	}
	return db.PutRecord(ctx, env.DB, TemplatesKey, string(data))
}
