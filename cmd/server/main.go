package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/qdashboard/qdashboard/internal/chart"
	"github.com/qdashboard/qdashboard/internal/config"
	"github.com/qdashboard/qdashboard/internal/database"
	"github.com/qdashboard/qdashboard/internal/eventbus"
	"github.com/qdashboard/qdashboard/internal/handler"
	"github.com/qdashboard/qdashboard/internal/i18n"
	"github.com/qdashboard/qdashboard/internal/middleware"
	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/qdashboard/qdashboard/internal/repository"
	"github.com/qdashboard/qdashboard/internal/service/archive"
	"github.com/qdashboard/qdashboard/internal/service/dashboard"
	"github.com/qdashboard/qdashboard/internal/service/metrics"
	"github.com/qdashboard/qdashboard/internal/service/qubic"
	"github.com/qdashboard/qdashboard/internal/service/qubicrpc"
	"github.com/qdashboard/qdashboard/internal/view"
)

const apiPrefix = "/api/v1"

// pollerStore is the persisted poller_state row; nil when no database is
// configured.
type pollerStore interface {
	Get(ctx context.Context) (*model.PollerState, error)
	Save(ctx context.Context, s *model.PollerState) error
	SetRunning(ctx context.Context, running bool) error
	SetError(ctx context.Context, errMsg string) error
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New()

	catalog, err := i18n.Load()
	if err != nil {
		slog.Error("failed to load locale catalogs", "error", err)
		os.Exit(1)
	}
	lang, err := i18n.NewSwitcher(catalog, bus, cfg.Language)
	if err != nil {
		slog.Error("invalid dashboard language", "language", cfg.Language, "error", err)
		os.Exit(1)
	}

	// Archive (optional)
	var (
		states    pollerStore
		snapshots *repository.SnapshotRepository
		recorder  *archive.Recorder
	)
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}

		pollerRepo := repository.NewPollerRepository(pool)
		// Reset stale poller state from a previous crash
		if err := pollerRepo.SetRunning(ctx, false); err != nil {
			slog.Error("failed to reset poller state", "error", err)
			os.Exit(1)
		}
		states = pollerRepo
		snapshots = repository.NewSnapshotRepository(pool)
		recorder = archive.NewRecorder(snapshots, archive.DefaultBuffer)
		recorder.Subscribe(bus)
	} else {
		slog.Info("DATABASE_URL not set, snapshot archive disabled")
	}

	// View
	registry := view.NewRegistry()
	board := view.NewBoard()
	board.BindTo(registry)
	renderer := view.NewRenderer(registry, lang)
	renderer.Subscribe(bus)

	charts := chart.NewAdapter(cfg.HistorySize)
	for _, id := range []string{chart.SeriesTick, chart.SeriesDuration, chart.SeriesPrice} {
		charts.Bind(id, &chart.MemorySurface{})
	}
	store := metrics.NewStore(cfg.HistorySize)

	// Services
	rpcClient := qubicrpc.NewClient(cfg.QubicRPCURL, cfg.RequestTimeout)
	rpcSource := qubicrpc.NewSource(rpcClient, cfg.RPCCacheDuration)
	slog.Info("qubic rpc configured", "url", rpcClient.BaseURL())

	api := qubic.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	if api.Demo() {
		slog.Info("no dashboard backend configured, running in demo mode")
	} else {
		slog.Info("dashboard backend configured", "url", api.BaseURL())
	}
	coord := dashboard.New(api, store, renderer, charts, bus, states, dashboard.Options{
		TickInterval:  cfg.TickInterval,
		StatsInterval: cfg.StatsInterval,
		DemoFallback:  cfg.DemoFallback,
	})

	// Handlers
	dashHandler := handler.NewDashboardHandler(coord, board, charts, store, lang, states)
	langHandler := handler.NewLanguageHandler(lang)
	qubicHandler := handler.NewQubicHandler(rpcSource)
	pageHandler := handler.NewPageHandler(lang, apiPrefix, cfg.TickInterval)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))
	r.Use(chiMiddleware.Compress(5, "application/json", "text/html", "text/csv"))

	pageHandler.RegisterRoutes(r)
	r.Route(apiPrefix, func(r chi.Router) {
		dashHandler.RegisterRoutes(r)
		langHandler.RegisterRoutes(r)
		qubicHandler.RegisterRoutes(r)
		if snapshots != nil {
			handler.NewSnapshotHandler(snapshots).RegisterRoutes(r)
		}
	})

	// Server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Listen before polling so the first fetch can reach the local proxy.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		slog.Error("failed to listen", "addr", srv.Addr, "error", err)
		os.Exit(1)
	}
	go func() {
		slog.Info("server starting", "port", cfg.ServerPort)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorderDone := make(chan struct{})
	if recorder != nil {
		go func() {
			defer close(recorderDone)
			recorder.Run(recorderCtx)
		}()
	} else {
		close(recorderDone)
	}

	if cfg.AutoStart {
		if err := coord.Start(ctx); err != nil {
			slog.Error("failed to start dashboard", "error", err)
		}
	}

	<-ctx.Done()
	slog.Info("shutting down")

	coord.Stop(context.Background())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	// The recorder drains what is already queued before returning.
	stopRecorder()
	<-recorderDone
	if recorder != nil {
		written, dropped, failed := recorder.Counters()
		slog.Info("archive recorder stopped", "written", written, "dropped", dropped, "failed", failed)
	}
}
