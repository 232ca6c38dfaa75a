// Package checklist holds the verification checklist: its fixed questions,
// answer validation, contact extraction from pasted rows, template matching
// and the code/comment generator. Everything here is pure and works on
// in-memory values; persistence lives in internal/ops.
package checklist

// Section identifies one of the four fixed groups of questions.
type Section string

const (
	SectionFase      Section = "Fase"
	SectionN1        Section = "N1"
	SectionOPEC      Section = "OPEC"
	SectionLinguagem Section = "Linguagem"
)

// SectionInfo pairs a section with its display title.
type SectionInfo struct {
	ID    Section `json:"id"`
	Title string  `json:"title"`
}

// Sections lists the sections in display order.
var Sections = []SectionInfo{
	{ID: SectionFase, Title: "Fase"},
	{ID: SectionN1, Title: "Checklist N1"},
	{ID: SectionOPEC, Title: "Checagens no site de OPEC"},
	{ID: SectionLinguagem, Title: "Linguagem"},
}

// Question ids referenced by the generator and the validation rules.
const (
	QFase                       = "fase"
	QCardAprovado               = "card_aprovado"
	QNovaTentativa              = "nova_tentativa"
	QOutroCard                  = "outro_card"
	QPossuiEtiqueta             = "possui_etiqueta"
	QQualEtiqueta               = "qual_etiqueta"
	QTemosHotline               = "temos_hotline"
	QSiteRemeteCliente          = "site_remete_cliente"
	QConferidoLista             = "conferido_lista"
	QLiderancaLiberou           = "lideranca_liberou"
	QConcorrenteListaNaoContato = "concorrente_lista_nao_contato"
	QAgenciasParceiras          = "agencias_parceiras"
	QPossuiPrint                = "possui_print"
	QIdioma                     = "idioma"
)

// Options shared by the yes/no questions.
const (
	Affirmative = "Sim"
	Negative    = "Não"
)

// Question is one entry of the checklist. Options are suggestions: the
// operator may type any value.
type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Section  Section  `json:"section"`
	Required bool     `json:"required"`
}

var yesNo = []string{Affirmative, Negative}

// Questions is the fixed checklist in display (and focus) order.
var Questions = []Question{
	{ID: QFase, Text: "Fase", Section: SectionFase, Required: true, Options: []string{
		"Hotline", "1ª Tentativa", "2ª Tentativa", "3ª Tentativa", "Última Tentativa",
		"Prioridade", "Mediação", "Notificação Extrajudicial", "Tratativas Especiais",
		"Gerenciamento de Parceiros",
	}},

	{ID: QCardAprovado, Text: "Card foi aprovado pelo cliente?", Section: SectionN1, Required: true, Options: yesNo},
	{ID: QNovaTentativa, Text: "É uma nova tentativa? Se sim, tivemos retorno no e-mail?", Section: SectionN1, Required: true,
		Options: []string{"Sim, com retorno", "Não", "Sim, sem retorno"}},
	{ID: QOutroCard, Text: "Existe outro card desse concorrente em fluxo?", Section: SectionN1, Required: true, Options: yesNo},
	{ID: QPossuiEtiqueta, Text: "Possui etiqueta de Prioridade, Concorrente não quer contato, Tratativa Atendimento ou NE Branddi?", Section: SectionN1, Required: true, Options: yesNo},
	{ID: QQualEtiqueta, Text: "Se sim, qual?", Section: SectionN1,
		Options: []string{"Prioridade", "Concorrente não quer contato", "Tratativa Atendimento", "NE Branddi", "N/A"}},
	{ID: QTemosHotline, Text: "Temos hotline?", Section: SectionN1, Required: true, Options: yesNo},

	{ID: QSiteRemeteCliente, Text: "O site do concorrente ou o garimpo remetem a algum cliente?", Section: SectionOPEC, Required: true, Options: yesNo},
	{ID: QConferidoLista, Text: "Conferido na Lista de Clientes da Planilha", Section: SectionOPEC, Required: true, Options: yesNo},
	{ID: QLiderancaLiberou, Text: "Se tiver relação, a liderança liberou a tratativa?", Section: SectionOPEC,
		Options: []string{Affirmative, Negative, "N/A"}},
	{ID: QConcorrenteListaNaoContato, Text: "Concorrente está na lista de ❌ Concorrentes para não entrar em contato?", Section: SectionOPEC, Required: true, Options: yesNo},
	{ID: QAgenciasParceiras, Text: "Concorrente está na lista de Agencias Parceiras?", Section: SectionOPEC, Required: true, Options: yesNo},

	{ID: QPossuiPrint, Text: "Possui print?", Section: SectionLinguagem, Required: true, Options: yesNo},
	{ID: QIdioma, Text: "Idioma", Section: SectionLinguagem, Required: true,
		Options: []string{"🇧🇷 Português", "🇺🇸 Inglês", "🇪🇸 Espanhol"}},
}

var questionIndex = func() map[string]int {
	idx := make(map[string]int, len(Questions))
	for i, q := range Questions {
		idx[q.ID] = i
	}
	return idx
}()

// QuestionByID returns the question with the given id.
func QuestionByID(id string) (Question, bool) {
	i, ok := questionIndex[id]
	if !ok {
		return Question{}, false
	}
	return Questions[i], true
}

// IsKnownQuestion reports whether id belongs to the checklist.
func IsKnownQuestion(id string) bool {
	_, ok := questionIndex[id]
	return ok
}

// QuestionsInSection returns the questions of a section in display order.
func QuestionsInSection(s Section) []Question {
	var out []Question
	for _, q := range Questions {
		if q.Section == s {
			out = append(out, q)
		}
	}
	return out
}
