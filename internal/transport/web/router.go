package web

import (
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/docs"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/realtime"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/mw"
	authv1 "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/auth"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/health"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/notification"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/project"
)

type routerDeps struct {
	health   *health.Handler
	register *authv1.HandlerRegister
	login    *authv1.HandlerLogin
	logout   *authv1.HandlerLogout
	project  *project.Handler
	notif    *notification.Handler
	ws       *realtime.Handler
	auth     AuthDeps
}

func newRouter(d routerDeps, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	amw := mw.AuthDeps{Tokens: d.auth.Tokens, Blacklist: d.auth.Blacklist}
	optional := func(h http.HandlerFunc) http.Handler { return mw.OptionalAuth(amw, h) }
	required := func(h http.HandlerFunc) http.Handler { return mw.RequireAuth(amw, h) }

	// health
	mux.HandleFunc("GET /api/healthz", d.health.Liveness)
	mux.HandleFunc("GET /api/readyz", d.health.Readiness)

	// auth
	mux.HandleFunc("POST /api/register", d.register.Register)
	mux.HandleFunc("POST /api/auth", d.login.Login)
	mux.HandleFunc("DELETE /api/auth", d.logout.Logout)

	// projects: чтение доступно анониму, запись — только с токеном
	mux.Handle("GET /api/projects", optional(d.project.List))
	mux.Handle("POST /api/projects", required(limitBody(1<<20, d.project.Create)))
	mux.Handle("GET /api/projects/featured", optional(d.project.Featured))
	mux.Handle("GET /api/projects/trending", optional(d.project.Trending))
	mux.Handle("GET /api/projects/{id}", optional(d.project.Get))
	mux.Handle("POST /api/projects/{id}/like", required(d.project.Like))
	mux.Handle("DELETE /api/projects/{id}/like", required(d.project.Unlike))
	mux.Handle("GET /api/projects/{id}/comments", optional(d.project.ListComments))
	mux.Handle("POST /api/projects/{id}/comments", required(limitBody(64<<10, d.project.CreateComment)))
	mux.Handle("POST /api/projects/{id}/evaluate", required(d.project.Evaluate))
	mux.Handle("GET /api/projects/{id}/evaluate", optional(d.project.GetEvaluation))

	// notifications
	mux.Handle("GET /api/notifications", required(d.notif.List))
	mux.Handle("GET /api/notifications/count", required(d.notif.Count))
	mux.HandleFunc("GET /api/notifications/config", d.notif.ClientConfig)
	mux.Handle("PATCH /api/notifications/{id}", required(d.notif.MarkRead))
	mux.Handle("PATCH /api/notifications", required(d.notif.MarkAllRead))
	mux.Handle("DELETE /api/notifications/{id}", required(d.notif.Delete))

	// realtime: авторизация происходит внутри сокета (сообщение auth),
	// поэтому upgrade открыт для всех
	mux.HandleFunc("GET /ws", d.ws.Serve)

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
