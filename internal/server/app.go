// Package server wires configuration, storage, notifications and the HTTP
// API together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/usuarios/internal/logging"
	"github.com/dmitrijs2005/usuarios/internal/server/config"
	"github.com/dmitrijs2005/usuarios/internal/server/notify"
	"github.com/dmitrijs2005/usuarios/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/usuarios/internal/server/rest"
	"github.com/dmitrijs2005/usuarios/internal/server/services"
	"github.com/dmitrijs2005/usuarios/internal/server/shared/db"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	accounts *services.AccountService
}

// NewApp opens the database, applies migrations and builds the account
// service with the configured mail driver.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	conn, accounts, err := NewAccountService(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger, db: conn, accounts: accounts}, nil
}

// NewAccountService opens the database, runs migrations and returns the
// account service over it. The caller owns the returned *sql.DB.
func NewAccountService(ctx context.Context, c *config.Config, logger logging.Logger) (*sql.DB, *services.AccountService, error) {
	conn, err := db.Open(ctx, repomanager.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	sender, err := notify.NewSender(ctx, c, logger)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("mail init error: %w", err)
	}
	mailer := notify.NewMailer(sender, c.MailFrom, c.FrontendURL)

	return conn, services.NewAccountService(conn, rm, mailer, logger, c), nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := rest.NewHandler(app.accounts, app.logger, app.config.SecretKey)
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, rest.NewRouter(h, app.config.FrontendURL))

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// waits for pending notifications and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.accounts.Wait()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
