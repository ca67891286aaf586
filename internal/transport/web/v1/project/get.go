package project

import (
	"net/http"
	"strconv"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/logx"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/mw"
	v1 "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1"
)

// Get godoc
// @Summary     Карточка проекта
// @Tags        projects
// @Produce     json
// @Param       id path int true "id проекта"
// @Success     200 {object} domain.APIEnvelope{data=domain.Project}
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/projects/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "projects.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := pathID(r)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	p, err := h.Projects.ProjectByID(r.Context(), id, viewerID(r))
	if err != nil {
		logx.Error(h.Log, reqID, op, "fetch failed", err, "project", id)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, struct {
		Project domain.Project `json:"project"`
	}{h.present(p)})
}

// pathID читает {id} из шаблона маршрута.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrBadParams
	}
	return id, nil
}
