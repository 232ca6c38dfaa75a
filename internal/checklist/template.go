package checklist

import (
	"fmt"
	"sort"
	"strings"
)

// Template is a saved answer pattern with a fixed code and comment.
type Template struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Conditions map[string]string `json:"conditions" yaml:"conditions"`
	Code       string            `json:"code" yaml:"code"`
	Comment    string            `json:"comment" yaml:"comment"`
}

// Matches reports whether every condition is present in answers with an
// exactly equal value. Answers without a condition are ignored.
func (t Template) Matches(answers Answers) bool {
	for key, want := range t.Conditions {
		got, ok := answers[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// MatchTemplate returns the first template, in stored order, that matches answers.
func MatchTemplate(templates []Template, answers Answers) (*Template, bool) {
	for i := range templates {
		if templates[i].Matches(answers) {
			return &templates[i], true
		}
	}
	return nil, false
}

// DefaultTemplates returns the built-in template list used when none is stored.
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:   "1",
			Name: "Hotline Aprovado",
			Conditions: map[string]string{
				QFase:         "Hotline",
				QCardAprovado: Affirmative,
				QTemosHotline: Affirmative,
			},
			Code:    "HTSPT1",
			Comment: "Enviar ciclo 1 de hotline",
		},
	}
}

// Validate checks that a template can be stored: it needs a name and a code,
// and every condition must reference a checklist question with a non-blank value.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(t.Code) == "" {
		return fmt.Errorf("code is required")
	}
	for _, key := range t.ConditionKeys() {
		if !IsKnownQuestion(key) {
			return fmt.Errorf("condition references unknown question %q", key)
		}
		if strings.TrimSpace(t.Conditions[key]) == "" {
			return fmt.Errorf("condition %q must not be empty", key)
		}
	}
	return nil
}

// ConditionKeys returns the condition keys in checklist order; keys outside
// the checklist sort last, alphabetically.
func (t Template) ConditionKeys() []string {
	keys := make([]string, 0, len(t.Conditions))
	for k := range t.Conditions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ii, iok := questionIndex[keys[i]]
		ji, jok := questionIndex[keys[j]]
		switch {
		case iok && jok:
			return ii < ji
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// CloneTemplates deep-copies a template list.
func CloneTemplates(templates []Template) []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		out[i] = t
		if t.Conditions != nil {
			out[i].Conditions = make(map[string]string, len(t.Conditions))
			for k, v := range t.Conditions {
				out[i].Conditions[k] = v
			}
		}
	}
	return out
}
