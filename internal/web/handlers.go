package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/errors"
	"github.com/hpungsan/tratativa/internal/ops"
)

// maxBodyBytes bounds request bodies: the largest legal one is a full paste.
const maxBodyBytes = ops.MaxRawTextBytes + 64<<10

// conditionPrefix prefixes the template form fields that hold conditions.
const conditionPrefix = "cond_"

// flashMessages maps the ?msg= value set after a redirect to its banner.
var flashMessages = map[string]string{
	"cleared": "Todos os dados foram limpos.",
	"saved":   "Template salvo.",
	"deleted": "Template excluído.",
	"moved":   "Prioridade atualizada.",
	"reset":   "Templates restaurados para o padrão.",
}

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	env      ops.Env
	renderer *Renderer
}

// stateResponse is the session snapshot plus the rendered comment preview.
type stateResponse struct {
	*ops.SnapshotOutput
	CommentHTML string `json:"comment_html"`
}

func redirect(w http.ResponseWriter, r *http.Request, path, msg string) {
	if msg != "" {
		path += "?msg=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// --- Pages ---

// HandleChecklist handles GET /checklist.
func (h *Handlers) HandleChecklist(w http.ResponseWriter, r *http.Request) {
	snap, err := ops.Snapshot(r.Context(), h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	page := h.renderer.page("Checklist", "checklist")
	page.Flash = flashMessages[r.URL.Query().Get("msg")]
	h.renderer.renderPage(w, "checklist", ChecklistPageData{
		PageData:    page,
		State:       snap,
		CommentHTML: renderMarkdown(snap.Output.Comment),
		SavedAt:     h.renderer.formatTime(snap.SavedAt),
	})
}

// HandleTemplates handles GET /templates. ?edit=<id> opens a template in the form.
func (h *Handlers) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := ops.ListTemplates(r.Context(), h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	rows := make([]TemplateRow, len(list.Templates))
	var edit *checklist.Template
	editID := r.URL.Query().Get("edit")
	for i, t := range list.Templates {
		rows[i] = TemplateRow{Template: t, Position: i, Keys: t.ConditionKeys()}
		if editID != "" && t.ID == editID {
			edit = &list.Templates[i]
		}
	}
	if editID != "" && edit == nil {
		h.renderer.renderError(w, r, errors.NewNotFound(editID))
		return
	}

	page := h.renderer.page("Templates", "templates")
	page.Flash = flashMessages[r.URL.Query().Get("msg")]
	h.renderer.renderPage(w, "templates", TemplatesPageData{
		PageData:  page,
		Templates: rows,
		Questions: checklist.Questions,
		Edit:      edit,
	})
}

// --- Form posts (redirect after post) ---

// HandleAnswerForm handles POST /checklist/answers. Every question field
// present in the form is applied; a blank field clears its answer.
func (h *Handlers) HandleAnswerForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form body"))
		return
	}

	answers := make(map[string]string)
	for _, q := range checklist.Questions {
		if vals, ok := r.PostForm[q.ID]; ok && len(vals) > 0 {
			answers[q.ID] = vals[0]
		}
	}
	if len(answers) == 0 {
		redirect(w, r, "/checklist", "")
		return
	}

	if _, err := ops.Answer(r.Context(), h.env, ops.AnswerInput{Answers: answers}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirect(w, r, "/checklist", "")
}

// HandleExtractForm handles POST /checklist/contacts.
func (h *Handlers) HandleExtractForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form body"))
		return
	}

	input := ops.ExtractInput{RawText: r.PostForm.Get("raw_text")}
	if _, err := ops.Extract(r.Context(), h.env, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirect(w, r, "/checklist", "")
}

// HandleClearForm handles POST /checklist/clear.
func (h *Handlers) HandleClearForm(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.Clear(r.Context(), h.env); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirect(w, r, "/checklist", "cleared")
}

// HandleSaveTemplateForm handles POST /templates.
func (h *Handlers) HandleSaveTemplateForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form body"))
		return
	}

	input := ops.SaveTemplateInput{
		Template: templateFromForm(r.PostForm),
		Mode:     ops.SaveMode(r.PostForm.Get("mode")),
	}
	if _, err := ops.SaveTemplate(r.Context(), h.env, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirect(w, r, "/templates", "saved")
}

// templateFromForm reads a template from the editor form. Blank condition
// fields are left out so they do not constrain the match.
func templateFromForm(form url.Values) checklist.Template {
	t := checklist.Template{
		ID:         form.Get("id"),
		Name:       form.Get("name"),
		Code:       form.Get("code"),
		Comment:    form.Get("comment"),
		Conditions: map[string]string{},
	}
	for key, vals := range form {
		id, ok := strings.CutPrefix(key, conditionPrefix)
		if !ok || len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			continue
		}
		t.Conditions[id] = vals[0]
	}
	return t
}

// HandleDeleteTemplateForm handles POST /templates/{id}/delete.
func (h *Handlers) HandleDeleteTemplateForm(w http.ResponseWriter, r *http.Request) {
	input := ops.DeleteTemplateInput{ID: chi.URLParam(r, "id")}
	if _, err := ops.DeleteTemplate(r.Context(), h.env, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirect(w, r, "/templates", "deleted")
}

// HandleMoveTemplateForm handles POST /templates/{id}/move with a 0-based position.
func (h *Handlers) HandleMoveTemplateForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form body"))
		return
	}
	pos, err := strconv.Atoi(r.PostForm.Get("position"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("position must be an integer"))
		return
	}

	input := ops.MoveTemplateInput{ID: chi.URLParam(r, "id"), Position: pos}
	if _, err := ops.MoveTemplate(r.Context(), h.env, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirect(w, r, "/templates", "moved")
}

// HandleResetTemplatesForm handles POST /templates/reset.
func (h *Handlers) HandleResetTemplatesForm(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.ResetTemplates(r.Context(), h.env); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirect(w, r, "/templates", "reset")
}

// --- JSON API ---

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func (h *Handlers) renderState(w http.ResponseWriter, snap *ops.SnapshotOutput) {
	renderJSON(w, http.StatusOK, stateResponse{
		SnapshotOutput: snap,
		CommentHTML:    string(renderMarkdown(snap.Output.Comment)),
	})
}

// HandleAPIState handles GET /api/state.
func (h *Handlers) HandleAPIState(w http.ResponseWriter, r *http.Request) {
	snap, err := ops.Snapshot(r.Context(), h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderState(w, snap)
}

// HandleAPIAnswers handles POST /api/answers.
func (h *Handlers) HandleAPIAnswers(w http.ResponseWriter, r *http.Request) {
	var input ops.AnswerInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	snap, err := ops.Answer(r.Context(), h.env, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderState(w, snap)
}

// HandleAPIContacts handles POST /api/contacts.
func (h *Handlers) HandleAPIContacts(w http.ResponseWriter, r *http.Request) {
	var input ops.ExtractInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	snap, err := ops.Extract(r.Context(), h.env, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderState(w, snap)
}

// HandleAPIClear handles POST /api/clear.
func (h *Handlers) HandleAPIClear(w http.ResponseWriter, r *http.Request) {
	snap, err := ops.Clear(r.Context(), h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderState(w, snap)
}

// HandleAPIListTemplates handles GET /api/templates.
func (h *Handlers) HandleAPIListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := ops.ListTemplates(r.Context(), h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, list)
}

// HandleAPISaveTemplate handles POST /api/templates.
func (h *Handlers) HandleAPISaveTemplate(w http.ResponseWriter, r *http.Request) {
	var input ops.SaveTemplateInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	out, err := ops.SaveTemplate(r.Context(), h.env, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	renderJSON(w, status, out)
}

// HandleAPIDeleteTemplate handles DELETE /api/templates/{id}.
func (h *Handlers) HandleAPIDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	out, err := ops.DeleteTemplate(r.Context(), h.env, ops.DeleteTemplateInput{ID: chi.URLParam(r, "id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleAPIMoveTemplate handles POST /api/templates/{id}/move.
func (h *Handlers) HandleAPIMoveTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Position *int `json:"position"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if body.Position == nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("position is required"))
		return
	}
	out, err := ops.MoveTemplate(r.Context(), h.env, ops.MoveTemplateInput{
		ID:       chi.URLParam(r, "id"),
		Position: *body.Position,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleAPIResetTemplates handles POST /api/templates/reset.
func (h *Handlers) HandleAPIResetTemplates(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ResetTemplates(r.Context(), h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}
