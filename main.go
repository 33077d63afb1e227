package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/combatcore/prefabs"
)

func main() {
	debug := flag.Bool("debug", false, "draw the collision space")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	dir := flag.String("prefabs", "", "prefab directory on disk (overrides "+prefabs.DirEnv+")")
	watch := flag.Bool("watch", true, "hot reload prefab files")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *dir != "" {
		os.Setenv(prefabs.DirEnv, *dir)
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("combatcore")

	game, err := NewGame(logger, *debug)
	if err != nil {
		logger.Error("viewer: load arena", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *watch {
		if err := game.Watch(ctx, prefabs.Dir(), filepath.Join(prefabs.Dir(), "scripts")); err != nil {
			logger.Warn("viewer: prefab watch disabled", slog.Any("err", err))
		}
	}

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("viewer: run", slog.Any("err", err))
		os.Exit(1)
	}
}
