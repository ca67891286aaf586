package notification

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/logx"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/mw"
	v1 "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1"
)

type Handler struct {
	Log    *log.Logger
	Notifs domain.NotificationsRepo

	// Интервал фонового опроса, который рекомендуем клиенту как
	// fallback на случай отвала WebSocket-соединения.
	PollInterval time.Duration
}

// List godoc
// @Summary     Уведомления текущего пользователя
// @Tags        notifications
// @Security    BearerAuth
// @Produce     json
// @Param       limit  query int false "limit"
// @Param       offset query int false "offset"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "notifications.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	ns, err := h.Notifs.NotificationsList(r.Context(), me.ID, limit, offset)
	if err != nil {
		logx.Error(h.Log, reqID, op, "fetch failed", err, "user", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}
	unread, err := h.Notifs.UnreadCount(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "count failed", err, "user", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, struct {
		Notifications []domain.Notification `json:"notifications"`
		Unread        int                   `json:"unread"`
	}{ns, unread})
}

// Count godoc
// @Summary     Счётчик непрочитанных
// @Tags        notifications
// @Security    BearerAuth
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/notifications/count [get]
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	const op = "notifications.count"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	unread, err := h.Notifs.UnreadCount(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "count failed", err, "user", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, struct {
		Unread int `json:"unread"`
	}{unread})
}

// MarkRead godoc
// @Summary     Отметить уведомление прочитанным
// @Tags        notifications
// @Security    BearerAuth
// @Produce     json
// @Param       id path int true "id уведомления"
// @Success     200 {object} domain.APIEnvelope{response=string}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/notifications/{id} [patch]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	const op = "notifications.read"
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
	// Репозиторий матчит id вместе с recipient: чужое уведомление
	// неотличимо от несуществующего.
	if err := h.Notifs.MarkRead(r.Context(), id, me.ID); err != nil {
		logx.Error(h.Log, reqID, op, "mark failed", err, "id", id, "user", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKResponse(w, r, "ok")
}

// MarkAllRead godoc
// @Summary     Отметить все уведомления прочитанными
// @Tags        notifications
// @Security    BearerAuth
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/notifications [patch]
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	const op = "notifications.read_all"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	n, err := h.Notifs.MarkAllRead(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "mark failed", err, "user", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "user", me.ID, "marked", n)
	v1.WriteOKResponse(w, r, struct {
		Marked int64 `json:"marked"`
	}{n})
}

// Delete godoc
// @Summary     Удалить уведомление
// @Tags        notifications
// @Security    BearerAuth
// @Produce     json
// @Param       id path int true "id уведомления"
// @Success     200 {object} domain.APIEnvelope{response=string}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/notifications/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "notifications.delete"
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
	if err := h.Notifs.DeleteNotification(r.Context(), id, me.ID); err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "id", id, "user", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKResponse(w, r, "ok")
}

// ClientConfig godoc
// @Summary     Настройки realtime для клиента
// @Description Отдаёт путь WebSocket-эндпоинта и рекомендуемый интервал
// @Description фонового опроса на случай, когда сокет недоступен.
// @Tags        notifications
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Router      /api/notifications/config [get]
func (h *Handler) ClientConfig(w http.ResponseWriter, r *http.Request) {
	v1.WriteOKData(w, r, struct {
		WSPath       string `json:"ws_path"`
		PollInterval int    `json:"poll_interval_seconds"`
	}{"/ws", int(h.PollInterval / time.Second)})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrBadParams
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
