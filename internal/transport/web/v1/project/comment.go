package project

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/logx"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/mw"
	v1 "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1"
)

type commentRequest struct {
	Body     string            `json:"body"`
	ParentID *domain.CommentID `json:"parent_id,omitempty"`
}

// CreateComment godoc
// @Summary     Добавить комментарий к проекту
// @Description parent_id превращает комментарий в ответ; уведомление
// @Description идёт автору родительского комментария, а не проекта.
// @Tags        projects
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id   path int            true "id проекта"
// @Param       body body commentRequest true "комментарий"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/projects/{id}/comments [post]
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	const op = "projects.comment"
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

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !domain.ValidCommentBody(req.Body) {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	p, err := h.Projects.ProjectByID(r.Context(), id, me.ID)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	// Для ответа родительский комментарий обязан существовать и
	// принадлежать тому же проекту.
	var parent *domain.Comment
	if req.ParentID != nil {
		pc, err := h.Comments.CommentByID(r.Context(), *req.ParentID)
		if err != nil || pc.ProjectID != p.ID {
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
		parent = &pc
	}

	c, err := h.Comments.CreateComment(r.Context(), domain.Comment{
		ProjectID: p.ID,
		AuthorID:  me.ID,
		ParentID:  req.ParentID,
		Body:      req.Body,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err, "project", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	// comments_count в списках изменился
	h.invalidateLists(p.Featured)

	n := domain.Notification{
		RecipientID: p.AuthorID,
		ActorID:     me.ID,
		Type:        domain.NotifyCommentProject,
		ProjectID:   &p.ID,
		CommentID:   &c.ID,
	}
	if parent != nil {
		n.RecipientID = parent.AuthorID
		n.Type = domain.NotifyReplyComment
	}
	h.notify(context.WithoutCancel(r.Context()), reqID, op, n)

	logx.Info(h.Log, reqID, op, "ok", "project", id, "comment", c.ID)
	v1.WriteOKData(w, r, struct {
		Comment domain.Comment `json:"comment"`
	}{c})
}

// Comments godoc
// @Summary     Комментарии проекта
// @Tags        projects
// @Produce     json
// @Param       id path int true "id проекта"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/projects/{id}/comments [get]
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	const op = "projects.comments"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := pathID(r)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if _, err := h.Projects.ProjectByID(r.Context(), id, viewerID(r)); err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	cs, err := h.Comments.ProjectComments(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "fetch failed", err, "project", id)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, struct {
		Comments []domain.Comment `json:"comments"`
	}{cs})
}
