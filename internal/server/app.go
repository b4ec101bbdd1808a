// Package server wires and runs the mdd server: storage, services, the HTTP
// API and the gRPC health listener. It handles graceful shutdown on
// SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/mdd/internal/cryptox"
	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/logging"
	"github.com/dmitrijs2005/mdd/internal/server/auth"
	"github.com/dmitrijs2005/mdd/internal/server/config"
	"github.com/dmitrijs2005/mdd/internal/server/httpapi"
	"github.com/dmitrijs2005/mdd/internal/server/ratelimit"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/memory"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mdd/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/mdd/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger

	db    *sql.DB
	redis *redis.Client

	handler    http.Handler
	grpcServer *gs.GRPCServer
}

// NewApp opens storage (running migrations on PostgreSQL), connects the
// optional Redis limiter and builds the services and servers.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	store, rm, err := app.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager([]byte(c.SecretKey), c.TokenIssuer, c.TokenValidityDuration)
	hasher := cryptox.NewArgon2idHasher(cryptox.DefaultParams)

	deps := httpapi.Deps{
		Accounts:      services.NewUserService(store, rm, hasher, tokens, logger),
		Subscriptions: services.NewSubscriptionService(store, rm, logger),
		Articles:      services.NewArticleService(store, rm, logger),
		Themes:        services.NewThemeService(store, rm),
		Comments:      services.NewCommentService(store, rm, logger),
		Tokens:        tokens,
		Limiter:       app.openLimiter(ctx),
		Logger:        logger,
		AllowedOrigin: c.ClientURL,
	}
	if app.db != nil {
		deps.Pinger = app.db
	}

	if logging.ParseLevel(c.LogLevel) > logging.ParseLevel("debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	app.handler = httpapi.NewRouter(deps)
	app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger)

	return app, nil
}

func (app *App) openStorage(ctx context.Context) (dbx.Store, repomanager.RepositoryManager, error) {
	if app.config.InMemory() {
		app.logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		return memory.NewStore(), memory.NewManager(memory.DefaultThemes...), nil
	}

	db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}

	app.db = db
	return dbx.NewSQLStore(db), rm, nil
}

// openLimiter returns the Redis limiter when configured. An unreachable
// Redis is only logged: the limiter lets requests through while it is down.
func (app *App) openLimiter(ctx context.Context) ratelimit.Limiter {
	c := app.config
	if c.RedisAddr == "" {
		return ratelimit.Unlimited{}
	}

	app.redis = ratelimit.NewRedisClient(c.RedisAddr, c.RedisPassword)
	if err := app.redis.Ping(ctx).Err(); err != nil {
		app.logger.Warn(ctx, "redis unreachable, auth rate limiting degraded", "address", c.RedisAddr, "error", err)
	}
	return ratelimit.NewRedisLimiter(app.redis, "mdd:auth:", c.AuthRateLimit, c.AuthRateWindow)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or
// either server fails, then releases storage and Redis.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(name string, fn func(context.Context) error) {
		defer wg.Done()
		if err := fn(ctx); err != nil {
			app.logger.Error(ctx, "server failed", "server", name, "error", err)
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			mu.Unlock()
			cancelFunc()
		}
	}

	httpServer := httpapi.NewServer(app.config.EndpointAddrHTTP, app.handler, app.logger)

	// bind both addresses before health reports SERVING
	httpLis, err := httpServer.Listen()
	if err != nil {
		app.close(ctx)
		return fmt.Errorf("http: %w", err)
	}
	grpcLis, err := app.grpcServer.Listen()
	if err != nil {
		httpLis.Close()
		app.close(ctx)
		return fmt.Errorf("grpc: %w", err)
	}

	wg.Add(2)
	go run("http", func(ctx context.Context) error { return httpServer.Serve(ctx, httpLis) })
	go run("grpc", func(ctx context.Context) error { return app.grpcServer.Serve(ctx, grpcLis) })

	app.grpcServer.SetServing(true)

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")

	return errors.Join(errs...)
}

func (app *App) close(ctx context.Context) {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
}
