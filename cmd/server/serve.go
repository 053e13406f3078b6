package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/calvinwijaya/blackjack-be/internal/api"
	"github.com/calvinwijaya/blackjack-be/internal/db"
	"github.com/calvinwijaya/blackjack-be/internal/game"
	"github.com/calvinwijaya/blackjack-be/internal/service"
	"github.com/calvinwijaya/blackjack-be/internal/store"
)

type ServeCmd struct {
	Port     string `env:"PORT" default:"8080" help:"Server port"`
	DBDriver string `name:"db-driver" env:"DB_DRIVER" enum:"sqlite,postgres,memory" default:"sqlite" help:"Storage backend (sqlite, postgres or memory)"`
	DBDSN    string `name:"db-dsn" env:"DB_DSN" default:"./data/blackjack.db" help:"Database path (sqlite) or connection string (postgres)"`
	Frontend string `env:"FRONTEND_URL" default:"http://localhost:5173" help:"Frontend URL for CORS"`
}

func (c *ServeCmd) Run(g *Globals) error {
	logger := newLogger(os.Stderr, g)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameStore, closeStore := c.openStore(ctx, logger)
	defer closeStore()

	// Initialize WebSocket hub
	hub := api.NewHub(logger.WithPrefix("ws"))
	go hub.Run(ctx)
	logger.Info("WebSocket hub started")

	engine := game.NewEngine(game.NewLockedSource(g.seed()), game.WithLogger(logger.WithPrefix("engine")))
	svc := service.New(gameStore, engine, hub, logger.WithPrefix("service"))
	handlers := api.NewHandlers(svc, hub, logger.WithPrefix("api"))

	srv := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewRouter(handlers, logger.WithPrefix("http"), c.Frontend),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", c.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Block until we receive a termination signal or the server fails
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore opens the configured backend. If the database cannot be
// reached the server keeps running on the in-memory store.
func (c *ServeCmd) openStore(ctx context.Context, logger *log.Logger) (store.Store, func()) {
	if c.DBDriver == "memory" {
		logger.Info("In-memory game store initialized")
		return store.NewMemoryStore(), func() {}
	}

	driver := db.DriverPostgres
	if c.DBDriver == "sqlite" {
		driver = db.DriverSQLite
		// Create data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(c.DBDSN), 0o755); err != nil {
			logger.Warn("Failed to create data directory", "err", err)
		}
	}

	database, err := db.NewDatabase(ctx, driver, c.DBDSN)
	if err != nil {
		logger.Warn("Failed to initialize database, continuing without persistence", "driver", driver, "err", err)
		return store.NewMemoryStore(), func() {}
	}

	logger.Info("Database initialized successfully", "driver", driver)
	return store.NewDatabaseStore(database), func() {
		if err := database.Close(); err != nil {
			logger.Warn("closing database", "err", err)
		}
	}
}
