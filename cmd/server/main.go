package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/app"
)

// @title          Ctrl Alt Vibe API
// @version        1.0
// @description    Сообщество для публикации проектов: лента, лайки, комментарии, realtime-уведомления.
// @BasePath       /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
