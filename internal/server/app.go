// Package server initializes and runs the application server. It opens the
// user-record store, wires the authentication services, handles graceful
// shutdown, and starts the HTTP server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/secureapp/internal/logging"
	"github.com/dmitrijs2005/secureapp/internal/server/accounts"
	"github.com/dmitrijs2005/secureapp/internal/server/config"
	"github.com/dmitrijs2005/secureapp/internal/server/httpapi"
	"github.com/dmitrijs2005/secureapp/internal/server/password"
	"github.com/dmitrijs2005/secureapp/internal/server/sessions"
	"github.com/dmitrijs2005/secureapp/internal/server/totp"
	"github.com/dmitrijs2005/secureapp/internal/server/users"
)

const totpIssuer = "SecureApp"

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
	db     *sql.DB
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	l := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(l)

	var repo users.Repository
	var db *sql.DB

	if cfg.DatabaseDSN != "" {
		var err error
		db, err = users.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		repo = users.NewPostgresRepository(db)
	} else {
		var err error
		repo, err = users.NewJSONFileRepository(cfg.UserDBPath)
		if err != nil {
			return nil, fmt.Errorf("user store init error: %w", err)
		}
	}

	sm := sessions.NewManager(cfg.SessionLifetime)
	svc := accounts.NewService(repo, password.NewHasher(), totp.NewEngine(totpIssuer), sm)

	srv := httpapi.NewServer(cfg, logger, svc, sm)

	return &App{config: cfg, logger: logger, server: srv, db: db}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}
}
