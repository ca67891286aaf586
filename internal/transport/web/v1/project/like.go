package project

import (
	"context"
	"net/http"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/logx"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/mw"
	v1 "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1"
)

// Like godoc
// @Summary     Поставить лайк проекту
// @Tags        projects
// @Security    BearerAuth
// @Produce     json
// @Param       id path int true "id проекта"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/projects/{id}/like [post]
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	const op = "projects.like"
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

	// Проверка существования до мутации: на несуществующий проект
	// никаких побочных эффектов быть не должно.
	p, err := h.Projects.ProjectByID(r.Context(), id, me.ID)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	added, err := h.Projects.LikeProject(r.Context(), id, me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "like failed", err, "project", id, "user", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	// Инвалидация — после записи, безусловно и до уведомлений:
	// счётчики лайков уже изменились во всех кэшированных выборках.
	h.invalidateLists(p.Featured)

	// Хвост побочных эффектов не зависит от судьбы HTTP-запроса
	if added {
		h.notify(context.WithoutCancel(r.Context()), reqID, op, domain.Notification{
			RecipientID: p.AuthorID,
			ActorID:     me.ID,
			Type:        domain.NotifyLikeProject,
			ProjectID:   &p.ID,
		})
	}

	logx.Info(h.Log, reqID, op, "ok", "project", id, "added", added)
	v1.WriteOKResponse(w, r, struct {
		Liked bool `json:"liked"`
	}{true})
}

// Unlike godoc
// @Summary     Снять лайк с проекта
// @Tags        projects
// @Security    BearerAuth
// @Produce     json
// @Param       id path int true "id проекта"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/projects/{id}/like [delete]
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	const op = "projects.unlike"
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

	p, err := h.Projects.ProjectByID(r.Context(), id, me.ID)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	removed, err := h.Projects.UnlikeProject(r.Context(), id, me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "unlike failed", err, "project", id, "user", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	// Снятие лайка уведомления не порождает, но выборки сбрасывает
	h.invalidateLists(p.Featured)

	logx.Info(h.Log, reqID, op, "ok", "project", id, "removed", removed)
	v1.WriteOKResponse(w, r, struct {
		Liked bool `json:"liked"`
	}{false})
}
