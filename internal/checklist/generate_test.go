package checklist

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2024, time.March, 5, 9, 7, 3, 0, time.UTC)

func TestGenerate_TemplateMatch(t *testing.T) {
	answers := Answers{QFase: "Hotline", QCardAprovado: Affirmative, QTemosHotline: Affirmative}

	got := Generate(answers, nil, DefaultTemplates(), fixedNow)
	want := Output{
		Code:         "HTSPT1",
		Comment:      "Enviar ciclo 1 de hotline",
		TemplateID:   "1",
		TemplateName: "Hotline Aprovado",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
	if !got.Matched() {
		t.Error("Matched() = false for a template output")
	}
}

func TestGenerate_TemplateIgnoresContactsAndClock(t *testing.T) {
	answers := Answers{QFase: "Hotline", QCardAprovado: Affirmative, QTemosHotline: Affirmative}
	contacts := []Contact{{Name: "Ana", Email: "ana@x.io"}}

	a := Generate(answers, contacts, DefaultTemplates(), fixedNow)
	b := Generate(answers, nil, DefaultTemplates(), fixedNow.Add(48*time.Hour))
	if a != b {
		t.Errorf("template output changed with contacts or clock: %+v vs %+v", a, b)
	}
}

func TestFallbackCode(t *testing.T) {
	codeRe := regexp.MustCompile(`^CHK_(APR|REJ)_\d{8}_\d{6}$`)

	tests := []struct {
		name    string
		answers Answers
		want    string
	}{
		{"approved", Answers{QCardAprovado: Affirmative}, "CHK_APR_20240305_090703"},
		{"rejected", Answers{QCardAprovado: Negative}, "CHK_REJ_20240305_090703"},
		{"unanswered", nil, "CHK_REJ_20240305_090703"},
		{"other value", Answers{QCardAprovado: "sim"}, "CHK_REJ_20240305_090703"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackCode(tt.answers, fixedNow)
			if got != tt.want {
				t.Errorf("FallbackCode() = %q, want %q", got, tt.want)
			}
			if !codeRe.MatchString(got) {
				t.Errorf("FallbackCode() = %q does not match %s", got, codeRe)
			}
			if ts := strings.SplitN(got, "_", 3)[2]; len(ts) != 15 {
				t.Errorf("timestamp %q has %d characters, want 15", ts, len(ts))
			}
		})
	}
}

func TestFallbackCode_UsesClockLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	got := FallbackCode(nil, fixedNow.In(loc))
	if got != "CHK_REJ_20240305_060703" {
		t.Errorf("FallbackCode() = %q, want local wall clock", got)
	}
}

func TestFallbackComment_Layout(t *testing.T) {
	answers := Answers{
		QFase:                       "1ª Tentativa",
		QCardAprovado:               Affirmative,
		QNovaTentativa:              "Não",
		QOutroCard:                  Negative,
		QPossuiEtiqueta:             Negative,
		QTemosHotline:               Negative,
		QSiteRemeteCliente:          Negative,
		QConferidoLista:             Affirmative,
		QConcorrenteListaNaoContato: Negative,
		QAgenciasParceiras:          Negative,
		QIdioma:                     "🇧🇷 Português",
	}
	contacts := []Contact{
		{Name: "Maria Silva", Email: "maria@acme.com"},
		{Name: "joao", Email: "joao@acme.com"},
	}

	want := "[Nome do responsavel]| tentativa 1ª Tentativa enviada em 05/03/2024\n" +
		"\n" +
		"**Checklist N1:**\n" +
		"Card foi aprovado pelo cliente? **Sim**\n" +
		"É uma nova tentativa? Se sim, tivemos retorno no e-mail? **Não**\n" +
		"Existe outro card desse concorrente em fluxo? **Não**\n" +
		"Possui etiqueta de Prioridade, Concorrente não quer contato, Tratativa Atendimento ou NE Branddi? **Não**\n" +
		"Se sim, qual? **[Não respondido]**\n" +
		"Temos hotline? **Não**\n" +
		"\n" +
		"**Checagens no site de OPEC:**\n" +
		"O site do concorrente ou o garimpo remetem a algum cliente? **Não**\n" +
		"Conferido na Lista de Clientes da Planilha **Sim**\n" +
		"Se tiver relação, a liderança liberou a tratativa? **[Não respondido]**\n" +
		"Concorrente está na lista de ❌ Concorrentes para não entrar em contato? **Não**\n" +
		"Concorrente está na lista de Agencias Parceiras? **Não**\n" +
		"\n" +
		"**Tratativas**\n" +
		"Maria Silva | | maria@acme.com\n" +
		"joao | | joao@acme.com\n"

	got := FallbackComment(answers, contacts, fixedNow)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FallbackComment() mismatch (-want +got):\n%s", diff)
	}
}

func TestFallbackComment_Placeholders(t *testing.T) {
	got := FallbackComment(nil, nil, fixedNow)

	if !strings.HasPrefix(got, "[Nome do responsavel]| tentativa [Fase] enviada em 05/03/2024\n\n") {
		t.Errorf("header missing phase placeholder:\n%s", got)
	}
	if n := strings.Count(got, "**[Não respondido]**"); n != 11 {
		t.Errorf("unanswered placeholders = %d, want 11", n)
	}
	if !strings.HasSuffix(got, "**Tratativas**\n[Nome do contato] | | [E-mail do contato]\n") {
		t.Errorf("contact placeholder missing:\n%s", got)
	}
}

func TestFallbackComment_OmitsLanguageSection(t *testing.T) {
	got := FallbackComment(Answers{QIdioma: "🇺🇸 Inglês", QPossuiPrint: Affirmative}, nil, fixedNow)
	if strings.Contains(got, "Inglês") || strings.Contains(got, "Possui print") {
		t.Errorf("language answers should not appear in the comment:\n%s", got)
	}
}

func TestGenerate_Fallback(t *testing.T) {
	answers := Answers{QFase: "Mediação", QCardAprovado: Affirmative}
	got := Generate(answers, nil, DefaultTemplates(), fixedNow)

	if got.Matched() {
		t.Fatalf("unexpected template match: %+v", got)
	}
	if got.Code != "CHK_APR_20240305_090703" {
		t.Errorf("Code = %q", got.Code)
	}
	if got.Comment != FallbackComment(answers, nil, fixedNow) {
		t.Error("Comment is not the fallback comment")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	answers := Answers{QFase: "Prioridade"}
	contacts := []Contact{{Name: "Ana", Email: "ana@x.io"}}

	first := Generate(answers, contacts, DefaultTemplates(), fixedNow)
	second := Generate(answers, contacts, DefaultTemplates(), fixedNow)
	if first != second {
		t.Errorf("Generate() not deterministic:\n%+v\n%+v", first, second)
	}
}
