package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/config"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/realtime"
	authv1 "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/auth"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/health"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/notification"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1/project"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, rep Repos, auth AuthDeps, infra Infra) *Server {
	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	healthHandler := &health.Handler{
		Log:       sub("health"),
		DB:        infra.DBPing,
		Blacklist: infra.BlacklistPing,
		Storage:   infra.StoragePing,
	}
	registerHandler := &authv1.HandlerRegister{
		Log: sub("auth"), Users: rep.Users, Hasher: auth.Hasher, Tokens: auth.Tokens,
	}
	loginHandler := &authv1.HandlerLogin{
		Log: sub("auth"), Users: rep.Users, Hasher: auth.Hasher, Tokens: auth.Tokens,
	}
	logoutHandler := &authv1.HandlerLogout{
		Log: sub("auth"), Tokens: auth.Tokens, Blacklist: auth.Blacklist,
	}
	projectHandler := &project.Handler{
		Log:      sub("project"),
		Projects: rep.Projects,
		Comments: rep.Comments,
		Notifs:   rep.Notifs,
		Cache:    infra.Cache,
		Delivery: infra.Hub,
		Preview:  infra.Preview,
		Images:   infra.Images,
		Eval:     infra.Eval,
		ListTTL:  cfg.CacheListTTL(),
	}
	notifHandler := &notification.Handler{
		Log:          sub("notification"),
		Notifs:       rep.Notifs,
		PollInterval: cfg.NotifyPollInterval(),
	}
	wsHandler := &realtime.Handler{
		Log:         sub("ws"),
		Hub:         infra.Hub,
		MaxMsgBytes: cfg.WSMaxMessageBytes,
	}

	srv := &http.Server{
		Addr: cfg.AppPort,
		Handler: newRouter(routerDeps{
			health:   healthHandler,
			register: registerHandler,
			login:    loginHandler,
			logout:   logoutHandler,
			project:  projectHandler,
			notif:    notifHandler,
			ws:       wsHandler,
			auth:     auth,
		}, logger),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
