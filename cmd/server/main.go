package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/mattn/go-sqlite3"

	"oder/internal/api"
	"oder/internal/config"
	internaldb "oder/internal/db"
	"oder/internal/db/repository"
	"oder/internal/domain"
	"oder/internal/middleware"
	"oder/internal/scheduler"
	"oder/internal/service"
)

// noMemberStore stands in for the warehouse when MEMBER_DSN is unset. The
// builder endpoints keep working; run and export report 503.
type noMemberStore struct{}

func (noMemberStore) Query(ctx context.Context, stmt string) (*domain.RowSet, error) {
	return nil, domain.ErrUnavailable("member warehouse not configured")
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env", "error", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	// Metastore: single-connection write pool, 4-connection read pool.
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.MetaDBPath, 4)
	if err != nil {
		logger.Error("open metastore failed", "path", cfg.MetaDBPath, "error", err)
		os.Exit(1)
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := internaldb.RunMigrations(writeDB); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("metastore ready", "path", cfg.MetaDBPath)

	// Member warehouse over ODBC, optional.
	var memberStore domain.MemberStore = noMemberStore{}
	var memberPinger api.Pinger
	if cfg.MemberDSN != "" {
		warehouse, err := internaldb.OpenMemberWarehouse(cfg.MemberDSN)
		if err != nil {
			logger.Error("open member warehouse failed", "error", err)
			os.Exit(1)
		}
		defer warehouse.Close()
		memberStore = warehouse
		memberPinger = warehouse
		logger.Info("member warehouse connected")
	}

	extractRepo := repository.NewExtractRepo(writeDB, readDB)
	catalogRepo := repository.NewCatalogRepo(readDB)
	configRepo := repository.NewConfigRepo(writeDB, readDB)

	extractSvc := service.NewExtractService(extractRepo, catalogRepo)
	runSvc := service.NewRunService(extractRepo, memberStore, cfg.QueryTimeout)
	catalogSvc := service.NewCatalogService(catalogRepo, cfg.CatalogCacheTTL)
	configSvc := service.NewConfigService(configRepo, extractRepo)

	sched := scheduler.New(configRepo, memberStore, cfg.ExportSpoolDir, logger)
	if err := sched.Start(context.Background()); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	handler := api.NewHandler(extractSvc, runSvc, catalogSvc, configSvc, readDB, memberPinger, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.Principal(cfg.DefaultUserID))
	handler.Routes(r)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
