package project

import (
	"net/http"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/logx"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/mw"
	v1 "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1"
)

// Evaluate godoc
// @Summary     Запросить AI-оценку проекта
// @Description Синхронный вызов внешнего сервиса оценки. В отличие от
// @Description превью, отказ здесь отдаётся вызывающему: результат и
// @Description есть содержание ответа.
// @Tags        projects
// @Security    BearerAuth
// @Produce     json
// @Param       id path int true "id проекта"
// @Success     200 {object} domain.APIEnvelope{data=domain.Evaluation}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/projects/{id}/evaluate [post]
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	const op = "projects.evaluate"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	id, err := pathID(r)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if h.Eval == nil || !h.Eval.Enabled() {
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	p, err := h.Projects.ProjectByID(r.Context(), id, me.ID)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	// Оценку запрашивает только автор
	if p.AuthorID != me.ID && !me.IsAdmin {
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	ev, err := h.Eval.Evaluate(r.Context(), p)
	if err != nil {
		logx.Error(h.Log, reqID, op, "evaluate failed", err, "project", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if err := h.Projects.SaveEvaluation(r.Context(), ev); err != nil {
		logx.Error(h.Log, reqID, op, "save failed", err, "project", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "project", id, "score", ev.Score)
	v1.WriteOKData(w, r, struct {
		Evaluation domain.Evaluation `json:"evaluation"`
	}{ev})
}

// GetEvaluation godoc
// @Summary     Последняя сохранённая оценка проекта
// @Tags        projects
// @Produce     json
// @Param       id path int true "id проекта"
// @Success     200 {object} domain.APIEnvelope{data=domain.Evaluation}
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/projects/{id}/evaluate [get]
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "projects.evaluation"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := pathID(r)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	ev, err := h.Projects.EvaluationByProject(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "fetch failed", err, "project", id)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, struct {
		Evaluation domain.Evaluation `json:"evaluation"`
	}{ev})
}
