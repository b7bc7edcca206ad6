// Command tui shows the dashboard in a terminal. It polls the same backend
// as the web dashboard (API_BASE_URL, or a server on SERVER_PORT) and falls
// back to demo data when that backend is unreachable.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/qdashboard/qdashboard/internal/chart"
	"github.com/qdashboard/qdashboard/internal/config"
	"github.com/qdashboard/qdashboard/internal/eventbus"
	"github.com/qdashboard/qdashboard/internal/i18n"
	"github.com/qdashboard/qdashboard/internal/service/dashboard"
	"github.com/qdashboard/qdashboard/internal/service/metrics"
	"github.com/qdashboard/qdashboard/internal/service/qubic"
	"github.com/qdashboard/qdashboard/internal/tui"
	"github.com/qdashboard/qdashboard/internal/view"
)

func main() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "qdashboard tui needs an interactive terminal; use cmd/server for the web dashboard")
		os.Exit(1)
	}

	// The terminal owns stdout.
	logFile, err := os.OpenFile("qdashboard-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logFile, nil)))

	cfg := config.Load()
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

	registry := view.NewRegistry()
	renderer := view.NewRenderer(registry, lang)
	renderer.Subscribe(bus)
	charts := chart.NewAdapter(cfg.HistorySize)
	store := metrics.NewStore(cfg.HistorySize)

	api := qubic.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	slog.Info("dashboard backend", "url", api.BaseURL(), "demo", api.Demo())
	coord := dashboard.New(api, store, renderer, charts, bus, nil, dashboard.Options{
		TickInterval:  cfg.TickInterval,
		StatsInterval: cfg.StatsInterval,
		DemoFallback:  true,
	})

	term := tui.New(tui.Actions{
		ToggleLanguage: func() {
			if err := lang.Toggle(); err != nil {
				slog.Warn("language toggle failed", "error", err)
			}
		},
		Refresh: func() {
			ctx := context.Background()
			coord.RefreshTick(ctx)
			coord.RefreshStats(ctx)
		},
		// Polling stops while the event loop can still drain its draws.
		Quit: func() { coord.Stop(context.Background()) },
	})
	term.BindTo(registry)
	term.BindCharts(charts)

	if err := coord.Start(context.Background()); err != nil {
		slog.Error("failed to start dashboard", "error", err)
		os.Exit(1)
	}

	if err := term.Run(); err != nil {
		slog.Error("terminal error", "error", err)
	}
	coord.Stop(context.Background())
}
