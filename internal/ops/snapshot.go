package ops

import (
	"context"
	"time"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/db"
)

// FieldView is one question with its current answer and validation status.
type FieldView struct {
	ID       string           `json:"id"`
	Question string           `json:"question"`
	Options  []string         `json:"options"`
	Required bool             `json:"required"`
	Value    string           `json:"value"`
	Status   checklist.Status `json:"status"`
}

// SectionView groups the fields of one checklist section.
type SectionView struct {
	ID     checklist.Section `json:"id"`
	Title  string            `json:"title"`
	Fields []FieldView       `json:"fields"`
}

// SnapshotOutput is the full session as every shell renders it.
type SnapshotOutput struct {
	Answers  checklist.Answers   `json:"answers"`
	Sections []SectionView       `json:"sections"`
	Progress checklist.Progress  `json:"progress"`
	RawText  string              `json:"raw_text"`
	Contacts []checklist.Contact `json:"contacts"`
	Emails   string              `json:"emails"`
	Output   checklist.Output    `json:"output"`

	// SavedAt is the unix time of the last session write, 0 when nothing is stored.
	SavedAt int64 `json:"saved_at,omitempty"`
}

// Snapshot loads the session and templates and regenerates the output.
func Snapshot(ctx context.Context, env Env) (*SnapshotOutput, error) {
	fd, err := LoadFormData(ctx, env)
	if err != nil {
		return nil, err
	}
	return snapshotOf(ctx, env, fd)
}

// snapshotOf builds the view of fd against the stored templates.
// An empty session has an empty code and comment.
func snapshotOf(ctx context.Context, env Env, fd FormData) (*SnapshotOutput, error) {
	templates, err := LoadTemplates(ctx, env)
	if err != nil {
		return nil, err
	}
	now, err := env.now()
	if err != nil {
		return nil, err
	}
	savedAt, err := db.RecordUpdatedAt(ctx, env.DB, FormDataKey)
	if err != nil {
		return nil, err
	}

	out := buildSnapshot(fd, templates, now)
	out.SavedAt = savedAt
	return out, nil
}

func buildSnapshot(fd FormData, templates []checklist.Template, now time.Time) *SnapshotOutput {
	answers := fd.Answers.Clone()
	contacts := fd.Contacts
	if contacts == nil {
		contacts = []checklist.Contact{}
	}

	sections := make([]SectionView, 0, len(checklist.Sections))
	for _, s := range checklist.Sections {
		questions := checklist.QuestionsInSection(s.ID)
		fields := make([]FieldView, 0, len(questions))
		for _, q := range questions {
			fields = append(fields, FieldView{
				ID:       q.ID,
				Question: q.Text,
				Options:  q.Options,
				Required: q.Required,
				Value:    answers.Get(q.ID),
				Status:   checklist.FieldStatus(q, answers),
			})
		}
		sections = append(sections, SectionView{ID: s.ID, Title: s.Title, Fields: fields})
	}

	out := &SnapshotOutput{
		Answers:  answers,
		Sections: sections,
		Progress: checklist.ComputeProgress(answers),
		RawText:  fd.RawText,
		Contacts: contacts,
		Emails:   checklist.JoinEmails(contacts),
	}
	if !fd.Empty() {
		out.Output = checklist.Generate(answers, contacts, templates, now)
	}
	return out
}
