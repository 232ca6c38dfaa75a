package checklist

import (
	"math"
	"strings"
)

// Answers maps question id to the selected or typed answer.
// Unanswered questions are absent.
type Answers map[string]string

// Get returns the answer for id, or "" when unanswered.
func (a Answers) Get(id string) string {
	if a == nil {
		return ""
	}
	return a[id]
}

// With returns a copy of a with id set to value. A blank value removes the key.
func (a Answers) With(id, value string) Answers {
	out := a.Clone()
	value = strings.TrimSpace(value)
	if value == "" {
		delete(out, id)
		return out
	}
	out[id] = value
	return out
}

// Clone returns a shallow copy that is never nil.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Status is the validation state of a single field.
type Status string

const (
	StatusNeutral Status = "neutral"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
	StatusSuccess Status = "success"
)

// warningAnswers are answered values that deserve the operator's attention.
var warningAnswers = map[string]string{
	QConcorrenteListaNaoContato: Affirmative,
	QCardAprovado:               Negative,
	QNovaTentativa:              "Sim, sem retorno",
}

// FieldStatus returns the validation state of q given the current answers.
func FieldStatus(q Question, answers Answers) Status {
	value := answers.Get(q.ID)
	if value == "" {
		if q.Required {
			return StatusError
		}
		return StatusNeutral
	}
	if w, ok := warningAnswers[q.ID]; ok && value == w {
		return StatusWarning
	}
	return StatusSuccess
}

// Progress is the completion indicator shown above the form.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// ComputeProgress counts checklist questions with a non-empty answer.
// Keys outside the checklist are ignored.
func ComputeProgress(answers Answers) Progress {
	answered := 0
	for _, q := range Questions {
		if answers.Get(q.ID) != "" {
			answered++
		}
	}
	total := len(Questions)
	return Progress{
		Answered: answered,
		Total:    total,
		Percent:  int(math.Round(float64(answered) / float64(total) * 100)),
	}
}
