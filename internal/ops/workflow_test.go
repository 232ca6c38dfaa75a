package ops

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/errors"
)

// TestFullWorkflow walks one operator session:
// answer → extract → fallback output → add template → match → export →
// clear → import → snapshot.
func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exportDir := t.TempDir()
	env.Config.AllowedPaths = []string{exportDir}

	// 1. Answer part of the checklist
	snap, err := Answer(ctx, env, AnswerInput{Answers: map[string]string{
		checklist.QFase:          "2ª Tentativa",
		checklist.QCardAprovado:  "Sim",
		checklist.QNovaTentativa: "Sim, sem retorno",
	}})
	require.NoError(t, err)
	require.Equal(t, 3, snap.Progress.Answered)
	require.Equal(t, 21, snap.Progress.Percent)

	// 2. Paste contacts
	snap, err = Extract(ctx, env, ExtractInput{RawText: "Carla Souza <carla@cliente.com.br>"})
	require.NoError(t, err)
	require.Len(t, snap.Contacts, 1)
	require.Equal(t, "Carla Souza", snap.Contacts[0].Name)

	// 3. No template matches yet: fallback output
	require.False(t, snap.Output.Matched())
	require.Equal(t, "CHK_APR_20240305_090703", snap.Output.Code)
	require.Contains(t, snap.Output.Comment, "É uma nova tentativa? Se sim, tivemos retorno no e-mail? **Sim, sem retorno**")
	require.True(t, strings.HasSuffix(snap.Output.Comment, "**Tratativas**\nCarla Souza | | carla@cliente.com.br\n"))

	// 4. Add a template for this situation
	saved, err := SaveTemplate(ctx, env, SaveTemplateInput{Template: checklist.Template{
		Name:       "Segunda sem retorno",
		Conditions: map[string]string{checklist.QFase: "2ª Tentativa", checklist.QNovaTentativa: "Sim, sem retorno"},
		Code:       "T2SR",
		Comment:    "Enviar ciclo 2",
	}})
	require.NoError(t, err)

	// 5. The template now wins
	snap, err = Snapshot(ctx, env)
	require.NoError(t, err)
	require.Equal(t, "T2SR", snap.Output.Code)
	require.Equal(t, "Enviar ciclo 2", snap.Output.Comment)
	require.Equal(t, saved.ID, snap.Output.TemplateID)

	// 6. Export templates
	exportPath := filepath.Join(exportDir, "templates.jsonl")
	exported, err := ExportTemplates(ctx, env, ExportTemplatesInput{Path: exportPath})
	require.NoError(t, err)
	require.Equal(t, 2, exported.Count)

	// 7. Clear the session, then wipe the custom template
	snap, err = Clear(ctx, env)
	require.NoError(t, err)
	require.Empty(t, snap.Answers)
	require.Empty(t, snap.Output.Code)

	_, err = DeleteTemplate(ctx, env, DeleteTemplateInput{ID: saved.ID})
	require.NoError(t, err)
	_, err = DeleteTemplate(ctx, env, DeleteTemplateInput{ID: saved.ID})
	var tErr *errors.TratativaError
	require.ErrorAs(t, err, &tErr)
	require.Equal(t, errors.ErrNotFound, tErr.Code)

	// 8. Import brings it back after the default
	imported, err := ImportTemplates(ctx, env, ImportTemplatesInput{Path: exportPath})
	require.NoError(t, err)
	require.Equal(t, 1, imported.Imported)
	require.Equal(t, 1, imported.Skipped)
	require.Equal(t, 2, imported.Total)

	list, err := ListTemplates(ctx, env)
	require.NoError(t, err)
	require.Equal(t, []string{"1", saved.ID}, templateIDs(list.Templates))
}
