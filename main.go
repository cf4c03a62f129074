package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/config"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/routes"
	"github.com/mbolis/quick-form/store"
	"github.com/mbolis/quick-form/store/memstore"
	"github.com/mbolis/quick-form/store/mongostore"
	"github.com/mbolis/quick-form/store/sqlstore"
	"github.com/pkg/errors"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.ParseFlags()
	if err != nil {
		return errors.Wrap(err, "main.config")
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// author accounts always live in SQLite
	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		return errors.Wrap(err, "main.db.open")
	}
	defer db.Close()

	if cfg.AdminUser != "" {
		err = httpx.AddUser(db, cfg.AdminUser, cfg.AdminPassword)
		if err != nil {
			return errors.Wrap(err, "main.admin_user")
		}
		log.Infof("Author %s ready", cfg.AdminUser)
	}

	docs, closeStore, err := openStore(ctx, cfg, db)
	if err != nil {
		return errors.Wrap(err, "main.store.open")
	}
	defer closeStore()

	bearerServer := httpx.NewBearerServer(db, cfg.TokenSecret, cfg.TokenTTL)
	handler := routes.Wire(app.New(cfg, db, docs, bearerServer))

	err = runServer(ctx, cfg, handler)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "main.server")
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, db *sql.DB) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMongo:
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close(context.Background()) }, nil
	case config.StoreMemory:
		log.Info("Using in-memory store, nothing will be persisted")
		return memstore.New(), func() {}, nil
	default:
		return sqlstore.New(db), func() {}, nil
	}
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("main.server.shutdown: %s", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
