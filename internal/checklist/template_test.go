package checklist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTemplateMatches(t *testing.T) {
	tmpl := Template{
		ID:   "t1",
		Name: "Hotline",
		Conditions: map[string]string{
			QFase:         "Hotline",
			QCardAprovado: Affirmative,
		},
		Code: "X",
	}

	tests := []struct {
		name    string
		answers Answers
		want    bool
	}{
		{"all conditions met", Answers{QFase: "Hotline", QCardAprovado: Affirmative}, true},
		{"extra answers ignored", Answers{QFase: "Hotline", QCardAprovado: Affirmative, QIdioma: "🇺🇸 Inglês"}, true},
		{"one condition differs", Answers{QFase: "Hotline", QCardAprovado: Negative}, false},
		{"one condition missing", Answers{QFase: "Hotline"}, false},
		{"case sensitive", Answers{QFase: "hotline", QCardAprovado: Affirmative}, false},
		{"no answers", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tmpl.Matches(tt.answers); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTemplateMatches_EmptyConditionsMatchEverything(t *testing.T) {
	tmpl := Template{ID: "any", Name: "Any", Code: "ANY"}
	if !tmpl.Matches(nil) {
		t.Error("template without conditions should match empty answers")
	}
	if !tmpl.Matches(Answers{QFase: "Mediação"}) {
		t.Error("template without conditions should match any answers")
	}
}

func TestMatchTemplate_FirstWins(t *testing.T) {
	templates := []Template{
		{ID: "a", Name: "A", Conditions: map[string]string{QFase: "Hotline"}, Code: "A"},
		{ID: "b", Name: "B", Conditions: map[string]string{QFase: "Hotline", QTemosHotline: Affirmative}, Code: "B"},
	}
	answers := Answers{QFase: "Hotline", QTemosHotline: Affirmative}

	got, ok := MatchTemplate(templates, answers)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != "a" {
		t.Errorf("matched %q, want first template %q", got.ID, "a")
	}

	// Reordering changes the winner.
	templates[0], templates[1] = templates[1], templates[0]
	got, _ = MatchTemplate(templates, answers)
	if got.ID != "b" {
		t.Errorf("after reorder matched %q, want %q", got.ID, "b")
	}
}

func TestMatchTemplate_NoMatch(t *testing.T) {
	got, ok := MatchTemplate(DefaultTemplates(), Answers{QFase: "Mediação"})
	if ok || got != nil {
		t.Errorf("MatchTemplate() = %v, %v; want nil, false", got, ok)
	}
	if _, ok := MatchTemplate(nil, Answers{}); ok {
		t.Error("empty template list should never match")
	}
}

func TestDefaultTemplates(t *testing.T) {
	want := []Template{{
		ID:   "1",
		Name: "Hotline Aprovado",
		Conditions: map[string]string{
			"fase":          "Hotline",
			"card_aprovado": "Sim",
			"temos_hotline": "Sim",
		},
		Code:    "HTSPT1",
		Comment: "Enviar ciclo 1 de hotline",
	}}
	if diff := cmp.Diff(want, DefaultTemplates()); diff != "" {
		t.Errorf("DefaultTemplates() mismatch (-want +got):\n%s", diff)
	}

	// Each call returns an independent list.
	a := DefaultTemplates()
	a[0].Conditions[QFase] = "changed"
	if DefaultTemplates()[0].Conditions[QFase] != "Hotline" {
		t.Error("DefaultTemplates() shares state between calls")
	}
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    Template
		wantErr bool
	}{
		{"valid", Template{Name: "N", Code: "C", Conditions: map[string]string{QFase: "Hotline"}}, false},
		{"valid without conditions", Template{Name: "N", Code: "C"}, false},
		{"missing name", Template{Code: "C"}, true},
		{"blank name", Template{Name: "  ", Code: "C"}, true},
		{"missing code", Template{Name: "N"}, true},
		{"unknown question", Template{Name: "N", Code: "C", Conditions: map[string]string{"nope": "x"}}, true},
		{"blank condition value", Template{Name: "N", Code: "C", Conditions: map[string]string{QFase: " "}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConditionKeys(t *testing.T) {
	tmpl := Template{Conditions: map[string]string{
		QTemosHotline: "x",
		"zz_extra":    "x",
		QFase:         "x",
		"aa_extra":    "x",
		QCardAprovado: "x",
	}}
	want := []string{QFase, QCardAprovado, QTemosHotline, "aa_extra", "zz_extra"}
	if diff := cmp.Diff(want, tmpl.ConditionKeys()); diff != "" {
		t.Errorf("ConditionKeys() mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneTemplates(t *testing.T) {
	orig := DefaultTemplates()
	clone := CloneTemplates(orig)
	clone[0].Conditions[QFase] = "Mediação"
	clone[0].Name = "changed"

	if orig[0].Conditions[QFase] != "Hotline" || orig[0].Name != "Hotline Aprovado" {
		t.Error("CloneTemplates() did not deep copy")
	}
}
