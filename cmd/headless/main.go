// Command headless runs an arena without a window and exposes its metrics
// over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/milk9111/combatcore/arena"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/metrics"
	"github.com/milk9111/combatcore/prefabs"
)

func main() {
	addr := flag.String("metrics", ":2112", "metrics listen address, empty to disable")
	ticks := flag.Int("ticks", 0, "stop after this many ticks, 0 runs until the wave ends")
	realtime := flag.Bool("realtime", true, "pace ticks at the arena tick rate")
	dir := flag.String("prefabs", "", "prefab directory on disk (overrides "+prefabs.DirEnv+")")
	watch := flag.Bool("watch", true, "hot reload prefab files")
	jsonLogs := flag.Bool("json", false, "log as JSON")
	flag.Parse()

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if *jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if *dir != "" {
		os.Setenv(prefabs.DirEnv, *dir)
	}

	if err := run(logger, *addr, *ticks, *realtime, *watch); err != nil {
		logger.Error("headless: exit", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr string, ticks int, realtime, watch bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	a, err := arena.New(arena.Config{Logger: logger, Metrics: m})
	if err != nil {
		return err
	}
	logger = logger.With(slog.String("arena", a.ID.String()))

	if watch {
		if err := a.WatchPrefabs(ctx, prefabs.Dir(), filepath.Join(prefabs.Dir(), "scripts")); err != nil {
			logger.Warn("headless: prefab watch disabled", slog.Any("err", err))
		}
	}

	if addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("headless: serving metrics", slog.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("headless: metrics server", slog.Any("err", err))
			}
		}()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		}()
	}

	done := false
	a.Subscribe(ecs.EventEnemyDefeated, func(ev ecs.Event) {
		logger.Info("enemy defeated", slog.String("entity", ev.Entity.String()), slog.Float64("t", a.Elapsed()))
	})
	a.Subscribe(ecs.EventWaveCleared, func(ecs.Event) {
		logger.Info("wave cleared", slog.Float64("t", a.Elapsed()))
		done = true
	})
	a.Subscribe(ecs.EventPlayerDefeated, func(ecs.Event) {
		logger.Info("player defeated", slog.Float64("t", a.Elapsed()))
		done = true
	})

	rate := a.TickRate()
	dt := 1 / float64(rate)
	var ticker *time.Ticker
	if realtime {
		ticker = time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()
	}

	for n := 0; ticks == 0 || n < ticks; n++ {
		if realtime {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return nil
		}
		a.Tick(dt)
		if done && ticks == 0 {
			break
		}
	}
	logger.Info("headless: finished", slog.Float64("elapsed", a.Elapsed()), slog.Int("entities", len(ecs.Entities(a.World()))))
	return nil
}
