package checklist

import (
	"strings"
	"time"
)

// Placeholders used by the fallback comment.
const (
	ResponsiblePlaceholder = "[Nome do responsavel]"
	PhasePlaceholder       = "[Fase]"
	UnansweredPlaceholder  = "[Não respondido]"
	ContactPlaceholder     = "[Nome do contato] | | [E-mail do contato]"
)

const (
	codeTimestampLayout = "20060102_150405"
	commentDateLayout   = "02/01/2006"
)

// Output is the generated code and comment.
type Output struct {
	Code         string `json:"code"`
	Comment      string `json:"comment"`
	TemplateID   string `json:"template_id,omitempty"`
	TemplateName string `json:"template_name,omitempty"`
}

// Matched reports whether the output came from a stored template.
func (o Output) Matched() bool {
	return o.TemplateID != ""
}

// Generate returns the code and comment for the current answers.
//
// The first matching template wins and its code and comment are returned
// verbatim. Otherwise a code and comment are synthesized from the answers,
// the contacts and now (in now's location). Generate is pure: the same
// inputs and the same instant always give the same output.
func Generate(answers Answers, contacts []Contact, templates []Template, now time.Time) Output {
	if t, ok := MatchTemplate(templates, answers); ok {
		return Output{
			Code:         t.Code,
			Comment:      t.Comment,
			TemplateID:   t.ID,
			TemplateName: t.Name,
		}
	}
	return Output{
		Code:    FallbackCode(answers, now),
		Comment: FallbackComment(answers, contacts, now),
	}
}

// FallbackCode builds CHK_<APR|REJ>_<YYYYMMDD_HHMMSS>.
func FallbackCode(answers Answers, now time.Time) string {
	status := "REJ"
	if answers.Get(QCardAprovado) == Affirmative {
		status = "APR"
	}
	return "CHK_" + status + "_" + now.Format(codeTimestampLayout)
}

// commentLine is a question echoed in the fallback comment.
type commentLine struct {
	label string
	id    string
}

var (
	n1Lines = []commentLine{
		{"Card foi aprovado pelo cliente?", QCardAprovado},
		{"É uma nova tentativa? Se sim, tivemos retorno no e-mail?", QNovaTentativa},
		{"Existe outro card desse concorrente em fluxo?", QOutroCard},
		{"Possui etiqueta de Prioridade, Concorrente não quer contato, Tratativa Atendimento ou NE Branddi?", QPossuiEtiqueta},
		{"Se sim, qual?", QQualEtiqueta},
		{"Temos hotline?", QTemosHotline},
	}
	opecLines = []commentLine{
		{"O site do concorrente ou o garimpo remetem a algum cliente?", QSiteRemeteCliente},
		{"Conferido na Lista de Clientes da Planilha", QConferidoLista},
		{"Se tiver relação, a liderança liberou a tratativa?", QLiderancaLiberou},
		{"Concorrente está na lista de ❌ Concorrentes para não entrar em contato?", QConcorrenteListaNaoContato},
		{"Concorrente está na lista de Agencias Parceiras?", QAgenciasParceiras},
	}
)

// FallbackComment renders the multi-section comment used when no template matches.
func FallbackComment(answers Answers, contacts []Contact, now time.Time) string {
	fase := answers.Get(QFase)
	if fase == "" {
		fase = PhasePlaceholder
	}

	var b strings.Builder
	b.WriteString(ResponsiblePlaceholder + "| tentativa " + fase + " enviada em " + now.Format(commentDateLayout) + "\n\n")

	b.WriteString("**Checklist N1:**\n")
	writeAnswers(&b, n1Lines, answers)
	b.WriteString("\n")

	b.WriteString("**Checagens no site de OPEC:**\n")
	writeAnswers(&b, opecLines, answers)
	b.WriteString("\n")

	b.WriteString("**Tratativas**\n")
	if len(contacts) == 0 {
		b.WriteString(ContactPlaceholder + "\n")
	}
	for _, c := range contacts {
		b.WriteString(c.Name + " | | " + c.Email + "\n")
	}

	return b.String()
}

func writeAnswers(b *strings.Builder, lines []commentLine, answers Answers) {
	for _, l := range lines {
		b.WriteString(l.label + " " + bold(answers.Get(l.id)) + "\n")
	}
}

func bold(answer string) string {
	if answer == "" {
		return "**" + UnansweredPlaceholder + "**"
	}
	return "**" + answer + "**"
}
