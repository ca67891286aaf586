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

type createRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	RepoURL     string   `json:"repo_url,omitempty"`
	SiteURL     string   `json:"site_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Create godoc
// @Summary     Опубликовать проект
// @Description Если указан site_url и превью-сервис включён, скриншот
// @Description страницы подтягивается в фоне; отказ превью публикацию
// @Description не блокирует.
// @Tags        projects
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       body body createRequest true "проект"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/projects [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "projects.create"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !domain.ValidProjectTitle(req.Title) {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	p, err := h.Projects.CreateProject(r.Context(), domain.Project{
		AuthorID:    me.ID,
		Title:       req.Title,
		Description: req.Description,
		RepoURL:     req.RepoURL,
		SiteURL:     req.SiteURL,
		Tags:        req.Tags,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	h.invalidateLists(false)

	// Скриншот — в фоне, судьба ответа от него не зависит
	if p.SiteURL != "" && h.Preview != nil && h.Preview.Enabled() {
		go h.fetchPreview(context.WithoutCancel(r.Context()), reqID, p)
	}

	logx.Info(h.Log, reqID, op, "ok", "project", p.ID)
	v1.WriteOKData(w, r, struct {
		Project domain.Project `json:"project"`
	}{p})
}

// fetchPreview дотягивает скриншот страницы проекта: рендер во внешнем
// сервисе, блоб в S3, ключ в БД. Любой отказ — только лог.
func (h *Handler) fetchPreview(ctx context.Context, reqID string, p domain.Project) {
	const op = "projects.preview"

	res, err := h.Preview.Fetch(ctx, p.SiteURL)
	if err != nil {
		logx.Error(h.Log, reqID, op, "render failed", err, "project", p.ID)
		return
	}
	if len(res.Image) == 0 {
		return
	}
	key, err := h.Images.PutImage(ctx, res.Image, res.ImageMIME)
	if err != nil {
		logx.Error(h.Log, reqID, op, "store failed", err, "project", p.ID)
		return
	}
	if err := h.Projects.SetProjectImage(ctx, p.ID, key); err != nil {
		logx.Error(h.Log, reqID, op, "save key failed", err, "project", p.ID)
		return
	}
	// Картинка появилась — кэшированные списки устарели
	h.invalidateLists(p.Featured)
	logx.Info(h.Log, reqID, op, "ok", "project", p.ID, "key", key)
}
