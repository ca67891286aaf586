package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/auth/blacklist"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/auth/password"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/auth/token"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/config"
	memcache "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/infra/cache/memory"
	redisx "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/infra/cache/redis"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/infra/database/postgres"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/infra/evaluator"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/infra/preview"
	s3storage "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/infra/storage/s3"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/realtime"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	repo   *postgres.PGRepo
	redis  *redisx.Store
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	s3Log := log.New(base.Writer(), base.Prefix()+"[s3] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	cacheLog := log.New(base.Writer(), base.Prefix()+"[cache] ", base.Flags())
	hubLog := log.New(base.Writer(), base.Prefix()+"[hub] ", base.Flags())
	previewLog := log.New(base.Writer(), base.Prefix()+"[preview] ", base.Flags())
	evalLog := log.New(base.Writer(), base.Prefix()+"[evaluator] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme, cfg.SlowOpThreshold())
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Println("init S3 storage")
	s3, err := s3storage.New(s3storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		PathStyle: cfg.S3PathStyle,
	}, s3Log)
	if err != nil {
		return nil, fmt.Errorf("failed init s3: %w", err)
	}

	base.Println("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis is initialized")

	// Процессный кэш списков и hub realtime-уведомлений живут в памяти
	// этого инстанса: при рестарте оба начинают с чистого листа.
	tagCache := memcache.New(cfg.CacheDefaultTTL(), cacheLog)
	hub := realtime.NewHub(hubLog)

	// Auth primitives
	hasher := password.NewDefault()
	tm := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthTokenTTL())
	bl := blacklist.NewStore(rc, "jti:")

	base.Println("init Server")
	rep := web.Repos{Users: pgRepo, Projects: pgRepo, Comments: pgRepo, Notifs: pgRepo}
	auth := web.AuthDeps{Hasher: hasher, Tokens: tm, Blacklist: bl}
	infra := web.Infra{
		Cache:         tagCache,
		Hub:           hub,
		Images:        s3,
		Preview:       preview.New(cfg.PreviewURL, cfg.PreviewTimeout(), previewLog),
		Eval:          evaluator.New(cfg.EvalURL, cfg.EvalTimeout(), evalLog),
		DBPing:        pgRepo,
		BlacklistPing: rc,
		StoragePing:   s3,
	}
	server := web.New(serverLog, cfg, rep, auth, infra)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		repo:   pgRepo,
		redis:  rc,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.repo.Close()
	a.redis.Close()

	return nil
}
