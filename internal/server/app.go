// Package server wires storage, services and transports together and runs
// the HTTP API and the gRPC health endpoint until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/mangasync/internal/buildinfo"
	"github.com/dmitrijs2005/mangasync/internal/logging"
	"github.com/dmitrijs2005/mangasync/internal/server/archive"
	"github.com/dmitrijs2005/mangasync/internal/server/auth"
	"github.com/dmitrijs2005/mangasync/internal/server/cache"
	"github.com/dmitrijs2005/mangasync/internal/server/config"
	gs "github.com/dmitrijs2005/mangasync/internal/server/grpc"
	"github.com/dmitrijs2005/mangasync/internal/server/httpapi"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mangasync/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	closers        []io.Closer
	userService    *services.UserService
	syncService    *services.SyncService
	catalogService *services.CatalogService
}

// seams for tests
var (
	logOutput   io.Writer = os.Stdout
	openDB                = repomanager.Open
	dialRedis             = cache.DialRedis
	newArchiver           = func(ctx context.Context, o archive.Options) (services.Archiver, error) {
		return archive.NewS3Archiver(ctx, o)
	}
)

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel, logOutput)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	if c.EnvFileMissing {
		logger.Warn(ctx, "env file not loaded", "path", c.EnvFile)
	}

	app := &App{config: c, logger: logger}

	if err := app.initStorage(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.initServices(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) initStorage(ctx context.Context) error {
	rm, err := repomanager.NewSQLRepositoryManager(app.config.DatabaseDriver)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.repomanager = rm

	db, err := openDB(ctx, app.config.DatabaseDriver, app.config.DatabaseDSN, app.config.DatabaseMaxOpenConns)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db)

	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	app.logger.Info(ctx, "Database ready", "driver", app.config.DatabaseDriver)
	return nil
}

func (app *App) initCache(ctx context.Context) (services.PackageCache, error) {
	if app.config.RedisAddr == "" {
		app.logger.Info(ctx, "Package cache in process")
		return cache.NewJSONCache(cache.NewMemoryStore(), app.config.CacheTTL), nil
	}

	store, err := dialRedis(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, store)
	app.logger.Info(ctx, "Package cache in Redis", "address", app.config.RedisAddr)
	return cache.NewJSONCache(store, app.config.CacheTTL), nil
}

func (app *App) initArchiver(ctx context.Context) (services.Archiver, error) {
	opts := archive.Options{
		Bucket:       app.config.S3Bucket,
		Region:       app.config.S3Region,
		AccessKey:    app.config.S3AccessKey,
		SecretKey:    app.config.S3SecretKey,
		BaseEndpoint: app.config.S3BaseEndpoint,
	}
	if !opts.Enabled() {
		return archive.Nop{}, nil
	}

	a, err := newArchiver(ctx, opts)
	if err != nil {
		return nil, err
	}
	app.logger.Info(ctx, "Snapshot archive enabled", "bucket", opts.Bucket)
	return a, nil
}

func (app *App) initServices(ctx context.Context) error {
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:   app.config.JWTSecret,
		Issuer:   app.config.JWTIssuer,
		Audience: app.config.JWTAudience,
		Lifetime: app.config.TokenValidityDuration,
	})
	if err != nil {
		return fmt.Errorf("token service init error: %w", err)
	}

	pc, err := app.initCache(ctx)
	if err != nil {
		return fmt.Errorf("cache init error: %w", err)
	}

	archiver, err := app.initArchiver(ctx)
	if err != nil {
		return fmt.Errorf("archive init error: %w", err)
	}

	composer := services.NewComposer(app.repomanager, app.logger)
	app.userService = services.NewUserService(app.db, app.repomanager, tokens, app.config.AllowNewRegister, app.logger)
	app.syncService = services.NewSyncService(app.db, app.repomanager, composer, pc, archiver, app.logger)
	app.catalogService = services.NewCatalogService(app.db, app.repomanager, composer)
	return nil
}

// Close releases the database and cache connections.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.syncService, app.catalogService,
		httpapi.Options{
			Version:   buildinfo.String(),
			AuthRate:  app.config.AuthRateLimit,
			AuthBurst: app.config.AuthRateBurst,

			TrustedProxies: app.config.TrustedProxies,
		})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.catalogService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// waits for both servers to stop and closes the storage.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "version", buildinfo.String())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.Close()
	app.logger.Info(ctx, "App stopped")
}
