package web

import (
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/realtime"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/health"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/project"
)

type Repos struct {
	Users    domain.UsersRepo
	Projects domain.ProjectsRepo
	Comments domain.CommentsRepo
	Notifs   domain.NotificationsRepo
}

type AuthDeps struct {
	Hasher    domain.PasswordHasher
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}

// Infra — всё, что хендлеры берут снаружи, помимо БД и авторизации.
type Infra struct {
	Cache   domain.TagCache
	Hub     *realtime.Hub
	Images  project.ImageStore
	Preview project.PreviewService
	Eval    project.EvalService

	// пинги для readiness
	DBPing        health.Pinger
	BlacklistPing health.Pinger
	StoragePing   health.Pinger
}
