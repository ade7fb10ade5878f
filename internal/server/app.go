// Package server wires configuration, storage and services together and runs
// the gRPC server, the HTTP server and the pending-upload sweeper until the
// process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/studyshare/internal/logging"
	"github.com/dmitrijs2005/studyshare/internal/server/config"
	"github.com/dmitrijs2005/studyshare/internal/server/httpapi"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studyshare/internal/server/services"
	"github.com/dmitrijs2005/studyshare/internal/server/storage"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/studyshare/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	fileService *services.FileService
}

// Seams for tests.
var (
	openDB   = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
	newStore = storage.New
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newStore(ctx, c.StorageBackend, storage.Options{
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		Endpoint:      c.S3BaseEndpoint,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	profiles := services.NewProfileService(db, rm, c, logger)
	us := services.NewUserService(db, rm, profiles, services.NewLogMailer(logger), c, logger)
	fs := services.NewFileService(db, rm, profiles, store, c, logger)

	return &App{config: c, logger: logger, db: db, userService: us, fileService: fs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a termination signal arrives or one of the components
// fails, then stops the others and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.fileService,
		app.config.SecretKey, app.config.MaxUploadSize)
	httpServer := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.userService, app.db)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	g.Go(func() error { return app.fileService.RunSweeper(ctx, app.config.SweepInterval) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err.Error())
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Warn(ctx, "closing db", "error", cerr.Error())
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
