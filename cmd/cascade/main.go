// @title			Cascade API
// @version		1.0
// @description	Dependency-aware task tracker with cascading status propagation.
// @BasePath		/api/v1

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"cascade/internal/config"
	"cascade/internal/database"
	"cascade/internal/domain"
	"cascade/internal/handler"
	"cascade/internal/logger"
	"cascade/internal/service"
	"cascade/internal/storage"
	"cascade/internal/storage/memory"
	"cascade/internal/storage/postgres"
)

func main() {
	app := &cli.App{
		Name:  "cascade",
		Usage: "Dependency-aware task tracker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL database URL",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.BoolFlag{
				Name:    "in-memory",
				Usage:   "Use the in-memory store instead of PostgreSQL",
				EnvVars: []string{"IN_MEMORY"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
				},
				Action: runServe,
			},
			{
				Name:   "stats",
				Usage:  "Print task counts by status",
				Action: runStats,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// openStore picks the storage backend from the CLI flags. The returned
// cleanup func is a no-op for the in-memory store.
func openStore(c *cli.Context) (storage.Store, func(), error) {
	if c.Bool("in-memory") {
		slog.Info("using in-memory store, data is not persisted")
		return memory.NewStore(), func() {}, nil
	}

	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("database-url is required unless --in-memory is set")
	}

	ctx := c.Context

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres.NewStore(db.Pool()), db.Close, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	store, closeStore, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.NewTaskService(store)
	h := handler.New(svc)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runStats(c *cli.Context) error {
	ctx := c.Context

	store, closeStore, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.NewTaskService(store)

	stats, err := svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	fmt.Printf("total: %d\n", stats.Total)
	for _, status := range domain.Statuses() {
		fmt.Printf("%s: %d\n", status, stats.ByStatus[status])
	}

	return nil
}
