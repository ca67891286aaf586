package project

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/infra/preview"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/logx"
)

// Порты внешних сервисов — ровно то, что нужно хендлерам.
type PreviewService interface {
	Enabled() bool
	Fetch(ctx context.Context, pageURL string) (preview.Result, error)
}

type ImageStore interface {
	PutImage(ctx context.Context, data []byte, mime string) (string, error)
	URL(key string) string
}

type EvalService interface {
	Enabled() bool
	Evaluate(ctx context.Context, p domain.Project) (domain.Evaluation, error)
}

type Handler struct {
	Log      *log.Logger
	Projects domain.ProjectsRepo
	Comments domain.CommentsRepo
	Notifs   domain.NotificationsRepo
	Cache    domain.TagCache
	Delivery domain.NotificationDelivery
	Preview  PreviewService
	Images   ImageStore
	Eval     EvalService

	ListTTL time.Duration

	// схлопывает конкурентные пересчёты одного и того же ключа кэша
	sf singleflight.Group
}

// invalidateLists сбрасывает все классы выборок, которые могла задеть
// мутация проекта. Вызывается безусловно после успешной записи в БД —
// до и независимо от уведомлений.
func (h *Handler) invalidateLists(featured bool) {
	h.Cache.InvalidateTag(domain.TagProjectsList)
	h.Cache.InvalidateTag(domain.TagProjectsTrending)
	if featured {
		h.Cache.InvalidateTag(domain.TagProjectsFeatured)
	}
}

// notify создаёт durable-уведомление и делает best-effort пуш.
// Самодействие (recipient == actor) подавляется. Любой отказ здесь
// логируется и не доходит до HTTP-ответа — мутация уже применена.
func (h *Handler) notify(ctx context.Context, reqID, op string, n domain.Notification) {
	if n.RecipientID == n.ActorID {
		return
	}
	created, err := h.Notifs.CreateNotification(ctx, n)
	if err != nil {
		logx.Error(h.Log, reqID, op, "create notification failed", err,
			"recipient", n.RecipientID, "type", n.Type)
		return
	}
	h.Delivery.Deliver(created.RecipientID, created)
}

// present дополняет проект публичным URL картинки перед выдачей.
func (h *Handler) present(p domain.Project) domain.Project {
	if p.ImageKey != "" && h.Images != nil {
		p.ImageURL = h.Images.URL(p.ImageKey)
	}
	return p
}

func (h *Handler) presentAll(ps []domain.Project) []domain.Project {
	out := make([]domain.Project, 0, len(ps))
	for _, p := range ps {
		out = append(out, h.present(p))
	}
	return out
}
