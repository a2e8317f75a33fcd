package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobboard-backend/internal/applications"
	googleauth "jobboard-backend/internal/auth"
	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/notifications"
	"jobboard-backend/internal/queue"
	"jobboard-backend/internal/ranking"
	"jobboard-backend/internal/resumes"
	"jobboard-backend/internal/shared/config"
	"jobboard-backend/internal/shared/server"
	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/shared/storage/db"
	"jobboard-backend/internal/shared/storage/object"
	localstore "jobboard-backend/internal/shared/storage/object/local"
	s3store "jobboard-backend/internal/shared/storage/object/s3"
	"jobboard-backend/internal/users"
	"jobboard-backend/internal/viewcache"
)

const redisPingTimeout = 2 * time.Second

// App holds shared dependencies for the API, worker and CLI entrypoints.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.Store
	Queue  queue.Client
	Redis  *redis.Client
	Cache  viewcache.Cache

	UsersService        *users.Service
	JobsService         *jobs.Service
	ResumesService      *resumes.Service
	ApplicationsService *applications.Service
	ApplicationsRepo    applications.Repo
	NotificationStore   notifications.Store
	Notifier            notifications.Notifier
	GoogleAuth          *googleauth.GoogleService
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	app.Cache, app.Redis = buildCache(ctx, cfg)

	buildServices(app)

	appHandler := applications.NewHandler(app.ApplicationsService, app.Cache, cfg.InternalToken)
	if cfg.ViewCacheTTL > 0 {
		appHandler.CacheTTL = cfg.ViewCacheTTL
	}

	var limiter middleware.Limiter
	if app.Redis != nil {
		limiter = middleware.NewRedisLimiter(app.Redis, "jobboard:rl:")
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:              cfg,
		Limiter:             limiter,
		GoogleAuth:          app.GoogleAuth,
		UserHandler:         users.NewHandler(app.UsersService),
		JobHandler:          jobs.NewHandler(app.JobsService),
		ResumeHandler:       resumes.NewHandler(app.ResumesService),
		ApplicationHandler:  appHandler,
		NotificationHandler: notifications.NewHandler(app.NotificationStore),
	})

	return app, nil
}

// Close drains side effects and releases connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.ApplicationsService != nil {
		a.ApplicationsService.Wait()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.NotifyQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.NotifyQueueURL)
}

// buildCache prefers Redis and falls back to a process-local cache when it is unset or unreachable.
func buildCache(ctx context.Context, cfg config.Config) (viewcache.Cache, *redis.Client) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return viewcache.NewMemoryCache(nil), nil
	}
	cache, client, err := viewcache.NewRedisFromURL(cfg.RedisURL)
	if err != nil {
		log.Printf("bootstrap: redis disabled: %v", err)
		return viewcache.NewMemoryCache(nil), nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("bootstrap: redis ping failed, continuing fail-open: %v", err)
	}
	return cache, client
}

func buildServices(app *App) {
	var (
		userRepo   users.Repo
		jobRepo    jobs.Repo
		resumeRepo resumes.Repo
		appRepo    applications.Repo
		notifStore notifications.Store
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		jobRepo = &jobs.PGRepo{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		appRepo = &applications.PGRepo{DB: app.DB}
		notifStore = &notifications.PGStore{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo()
		resumeRepo = resumes.NewMemoryRepo()
		appRepo = applications.NewMemoryRepo()
		notifStore = notifications.NewMemoryStore()
	}

	userSvc := users.NewService(userRepo)
	resumeSvc := &resumes.Service{
		Repo:     resumeRepo,
		Store:    app.Store,
		Profiles: userSvc,
	}

	var notifier notifications.Notifier = &notifications.DirectNotifier{Store: notifStore}
	if app.Queue != nil {
		notifier = &notifications.QueueNotifier{Client: app.Queue}
	}

	appSvc := &applications.Service{
		Repo:          appRepo,
		Resumes:       resumeSvc,
		Jobs:          jobRepo,
		People:        userSvc,
		Notifier:      notifier,
		RankTimeout:   app.Config.RankingTimeout,
		NotifyTimeout: app.Config.NotifyTimeout,
	}
	if app.Config.RankingURL != "" {
		appSvc.Ranker = ranking.NewClient(app.Config.RankingURL, app.Config.InternalToken, app.Config.RankingTimeout)
	}

	jobSvc := &jobs.Service{
		Repo:     jobRepo,
		Viewer:   appSvc,
		Cache:    app.Cache,
		CacheTTL: app.Config.ViewCacheTTL,
	}

	app.UsersService = userSvc
	app.JobsService = jobSvc
	app.ResumesService = resumeSvc
	app.ApplicationsService = appSvc
	app.ApplicationsRepo = appRepo
	app.NotificationStore = notifStore
	app.Notifier = notifier
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
		jobRepo,
	)
}
