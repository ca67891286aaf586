package project

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/logx"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/mw"
	v1 "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1"
)

// List godoc
// @Summary     Лента проектов
// @Tags        projects
// @Produce     json
// @Param       page   query int    false "страница (с 1)"
// @Param       limit  query int    false "размер страницы"
// @Param       tag    query string false "фильтр по тегу"
// @Param       search query string false "поиск по названию/описанию"
// @Param       sort   query string false "new|popular|comments"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Router      /api/projects [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "projects.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	viewer := viewerID(r)
	f := domain.ProjectFilter{
		Tag:    r.URL.Query().Get("tag"),
		Search: r.URL.Query().Get("search"),
		Sort:   domain.NormalizeSort(r.URL.Query().Get("sort")),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 12),
	}

	// Ключ кодирует всё пространство параметров, включая смотрящего:
	// liked_by_viewer не должен утекать между пользователями.
	key := domain.CacheKeyProjectsList(f.Page, f.Limit, f.Tag, f.Search, f.Sort, viewer)
	if b, ok := h.Cache.Get(key); ok {
		v1.WriteCached(w, r, b)
		return
	}

	// Промах: одинаковые конкурентные запросы схлопываются в один пересчёт
	v, err, _ := h.sf.Do(key, func() (any, error) {
		projects, total, err := h.Projects.ProjectsList(r.Context(), f, viewer)
		if err != nil {
			return nil, err
		}
		out := struct {
			Projects []domain.Project `json:"projects"`
			Total    int              `json:"total"`
			Page     int              `json:"page"`
			Limit    int              `json:"limit"`
		}{Projects: h.presentAll(projects), Total: total, Page: f.Page, Limit: f.Limit}

		buf, err := json.Marshal(domain.OkData(out))
		if err != nil {
			return nil, err
		}
		h.Cache.Set(key, buf, h.ListTTL, domain.TagProjectsList)
		return buf, nil
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	v1.WriteCached(w, r, v.([]byte))
}

// Featured godoc
// @Summary     Избранные проекты
// @Tags        projects
// @Produce     json
// @Param       limit query int false "limit"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Router      /api/projects/featured [get]
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, "projects.featured", domain.TagProjectsFeatured,
		func(limit int, viewer domain.UserID) (string, func() ([]domain.Project, error)) {
			return domain.CacheKeyProjectsFeatured(limit, viewer), func() ([]domain.Project, error) {
				return h.Projects.FeaturedProjects(r.Context(), limit, viewer)
			}
		})
}

// Trending godoc
// @Summary     Набирающие популярность проекты (по лайкам за 7 дней)
// @Tags        projects
// @Produce     json
// @Param       limit query int false "limit"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Router      /api/projects/trending [get]
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, "projects.trending", domain.TagProjectsTrending,
		func(limit int, viewer domain.UserID) (string, func() ([]domain.Project, error)) {
			return domain.CacheKeyProjectsTrending(limit, viewer), func() ([]domain.Project, error) {
				return h.Projects.TrendingProjects(r.Context(), limit, viewer)
			}
		})
}

// cachedList — общий cache-first путь для featured/trending.
func (h *Handler) cachedList(w http.ResponseWriter, r *http.Request, op, tag string,
	mk func(limit int, viewer domain.UserID) (string, func() ([]domain.Project, error))) {

	reqID := mw.RequestIDFromCtx(r.Context())
	viewer := viewerID(r)
	limit := queryInt(r, "limit", 6)

	key, load := mk(limit, viewer)
	if b, ok := h.Cache.Get(key); ok {
		v1.WriteCached(w, r, b)
		return
	}

	v, err, _ := h.sf.Do(key, func() (any, error) {
		projects, err := load()
		if err != nil {
			return nil, err
		}
		out := struct {
			Projects []domain.Project `json:"projects"`
		}{Projects: h.presentAll(projects)}

		buf, err := json.Marshal(domain.OkData(out))
		if err != nil {
			return nil, err
		}
		h.Cache.Set(key, buf, h.ListTTL, tag)
		return buf, nil
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	v1.WriteCached(w, r, v.([]byte))
}

func viewerID(r *http.Request) domain.UserID {
	if me, ok := mw.UserFromCtx(r.Context()); ok {
		return me.ID
	}
	return 0
}

func queryInt(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
