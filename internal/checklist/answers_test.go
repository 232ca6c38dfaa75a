package checklist

import "testing"

func TestAnswersWith(t *testing.T) {
	orig := Answers{QFase: "Hotline"}

	next := orig.With(QCardAprovado, " Sim ")
	if next[QCardAprovado] != "Sim" {
		t.Errorf("With() stored %q, want trimmed %q", next[QCardAprovado], "Sim")
	}
	if _, ok := orig[QCardAprovado]; ok {
		t.Error("With() mutated the receiver")
	}

	cleared := next.With(QFase, "   ")
	if _, ok := cleared[QFase]; ok {
		t.Error("blank value should remove the answer")
	}
	if next[QFase] != "Hotline" {
		t.Error("With() mutated the receiver on delete")
	}
}

func TestAnswersNil(t *testing.T) {
	var a Answers
	if a.Get(QFase) != "" {
		t.Error("Get() on nil answers should be empty")
	}
	if a.Clone() == nil {
		t.Error("Clone() should never return nil")
	}
	if got := a.With(QFase, "Hotline"); got[QFase] != "Hotline" {
		t.Error("With() on nil answers should set the value")
	}
}

func TestFieldStatus(t *testing.T) {
	required, _ := QuestionByID(QCardAprovado)
	optional, _ := QuestionByID(QQualEtiqueta)
	nova, _ := QuestionByID(QNovaTentativa)
	concorrente, _ := QuestionByID(QConcorrenteListaNaoContato)

	tests := []struct {
		name    string
		q       Question
		answers Answers
		want    Status
	}{
		{"required unanswered", required, nil, StatusError},
		{"optional unanswered", optional, nil, StatusNeutral},
		{"optional answered", optional, Answers{QQualEtiqueta: "N/A"}, StatusSuccess},
		{"card approved", required, Answers{QCardAprovado: Affirmative}, StatusSuccess},
		{"card rejected warns", required, Answers{QCardAprovado: Negative}, StatusWarning},
		{"retry without reply warns", nova, Answers{QNovaTentativa: "Sim, sem retorno"}, StatusWarning},
		{"retry with reply", nova, Answers{QNovaTentativa: "Sim, com retorno"}, StatusSuccess},
		{"do-not-contact list warns", concorrente, Answers{QConcorrenteListaNaoContato: Affirmative}, StatusWarning},
		{"not on do-not-contact list", concorrente, Answers{QConcorrenteListaNaoContato: Negative}, StatusSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FieldStatus(tt.q, tt.answers); got != tt.want {
				t.Errorf("FieldStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeProgress(t *testing.T) {
	total := len(Questions)

	p := ComputeProgress(nil)
	if p.Answered != 0 || p.Total != total || p.Percent != 0 {
		t.Errorf("empty progress = %+v", p)
	}

	all := Answers{}
	for _, q := range Questions {
		all[q.ID] = "x"
	}
	p = ComputeProgress(all)
	if p.Answered != total || p.Percent != 100 {
		t.Errorf("full progress = %+v", p)
	}

	// 1 of 14 rounds to 7%; unknown keys are not counted.
	p = ComputeProgress(Answers{QFase: "Hotline", "other": "x"})
	if p.Answered != 1 || p.Percent != 7 {
		t.Errorf("partial progress = %+v, want 1 answered at 7%%", p)
	}
}

func TestQuestions(t *testing.T) {
	if len(Questions) != 14 {
		t.Fatalf("len(Questions) = %d, want 14", len(Questions))
	}

	seen := map[string]bool{}
	for _, q := range Questions {
		if seen[q.ID] {
			t.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if len(q.Options) == 0 {
			t.Errorf("question %q has no options", q.ID)
		}
	}

	sections := 0
	for _, s := range Sections {
		sections += len(QuestionsInSection(s.ID))
	}
	if sections != len(Questions) {
		t.Errorf("sections cover %d questions, want %d", sections, len(Questions))
	}

	if _, ok := QuestionByID("missing"); ok {
		t.Error("QuestionByID() found an unknown id")
	}
	if !IsKnownQuestion(QIdioma) || IsKnownQuestion("missing") {
		t.Error("IsKnownQuestion() mismatch")
	}
}
