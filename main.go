package main

//go:generate swag init

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satheeshds/invoicer/config"
	"github.com/satheeshds/invoicer/db"
	_ "github.com/satheeshds/invoicer/docs"
	"github.com/satheeshds/invoicer/handlers"
	"github.com/satheeshds/invoicer/services"
	"github.com/satheeshds/invoicer/store"
	"github.com/satheeshds/invoicer/store/memory"
	"github.com/satheeshds/invoicer/store/remote"
	"github.com/satheeshds/invoicer/store/sqlstore"
)

// @title           Invoicer API
// @version         1.0.0
// @description     API for managing clients, invoices and follow-up todos.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.basic  BasicAuth

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure structured logging
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	st, err := openStores(cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if st.Close != nil {
			st.Close()
		}
	}()

	svc := services.New(st)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handlers.NewRouter(svc, cfg),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("server starting", "address", srv.Addr, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// openStores builds the configured storage backend.
func openStores(cfg config.Config) (store.Stores, error) {
	switch cfg.Backend {
	case config.BackendSQLite, config.BackendPostgres:
		dialect, source := db.SQLite, cfg.DBPath
		if cfg.Backend == config.BackendPostgres {
			dialect, source = db.Postgres, cfg.DatabaseURL
		}
		database, err := db.Open(dialect, source)
		if err != nil {
			return store.Stores{}, err
		}
		if err := db.Migrate(database.DB, dialect); err != nil {
			database.Close()
			return store.Stores{}, fmt.Errorf("running migrations: %w", err)
		}
		return sqlstore.New(database).Stores(), nil

	case config.BackendRemote:
		client, err := remote.NewClient(remote.Config{
			BaseURL:           cfg.RemoteBaseURL,
			ProjectID:         cfg.RemoteProjectID,
			PublicKey:         cfg.RemotePublicKey,
			RequestsPerSecond: cfg.RemoteRPS,
			Timeout:           cfg.RemoteTimeout,
		})
		if err != nil {
			return store.Stores{}, err
		}
		return remote.New(client).Stores(), nil

	default:
		mem := memory.New(memory.WithLatency(cfg.MockLatency))
		if cfg.SeedMockData {
			data, err := memory.LoadSeed(cfg.SeedPath)
			if err != nil {
				return store.Stores{}, err
			}
			mem.Seed(data)
			slog.Info("seeded mock data", "clients", len(data.Clients), "invoices", len(data.Invoices), "todos", len(data.Todos))
		}
		return mem.Stores(), nil
	}
}
