package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"

	"github.com/tlemaire/hymnbox/internal/api"
	"github.com/tlemaire/hymnbox/internal/cache"
	"github.com/tlemaire/hymnbox/internal/config"
	"github.com/tlemaire/hymnbox/internal/connectivity"
	"github.com/tlemaire/hymnbox/internal/downloads"
	"github.com/tlemaire/hymnbox/internal/errmsg"
	"github.com/tlemaire/hymnbox/internal/pending"
	"github.com/tlemaire/hymnbox/internal/playback"
	"github.com/tlemaire/hymnbox/internal/player"
	"github.com/tlemaire/hymnbox/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "hymnbox",
	})

	st, err := store.Open()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpStoreOpen, err))
	}
	defer st.Close()

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(xdg.CacheHome, "hymnbox", "audio")
	}

	dlCfg := cfg.GetDownloadsConfig()

	// Progress events flow from the cache worker back into the manager,
	// which owns the per-record projection. The manager variable is
	// assigned below, after the worker exists.
	var manager *downloads.Manager
	worker, err := cache.NewWorker(cache.Options{
		Dir:           cacheDir,
		MaxConcurrent: dlCfg.MaxConcurrent,
		Logger:        logger,
		OnProgress: func(p cache.Progress) {
			if manager != nil {
				manager.HandleProgress(p)
			}
		},
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpCacheInit, err))
	}
	defer worker.Close()

	manager, err = downloads.NewManager(downloads.Options{
		Store:  st,
		Cache:  worker,
		Logger: logger,
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpHydrate, err))
	}

	monitor := connectivity.NewMonitor(true)
	defer monitor.Close()

	var engine *pending.Engine
	if cfg.HasAPIConfig() {
		client := api.NewClient(cfg.API.URL)
		engine = pending.NewEngine(pending.Options{
			Store:   st,
			Sink:    client,
			Monitor: monitor,
			Logger:  logger,
		})
		defer engine.Close()
	} else {
		logger.Warn("no api url configured, pending action sync disabled")
	}

	p := player.New()
	svc := playback.New(playback.Options{
		Player:   p,
		Resolver: manager,
		Net:      monitor,
		Logger:   logger,
	})
	defer svc.Close()

	svc.SetVolume(cfg.GetPlaybackConfig().Volume)

	stats, err := manager.Stats()
	if err != nil {
		logger.Warn("cache stats unavailable", "err", err)
	} else {
		logger.Info("download store hydrated",
			"completed", stats.Completed,
			"errored", stats.Errored,
			"size", stats.TotalSize())
	}
	logger.Info("ready", "cache_dir", cacheDir)

	// SIGUSR1/SIGUSR2 act as the runtime offline/online connectivity
	// events; there is no reachability polling.
	connSig := make(chan os.Signal, 1)
	signal.Notify(connSig, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		for sig := range connSig {
			online := sig == syscall.SIGUSR2
			logger.Info("connectivity change", "online", online)
			monitor.SetOnline(online)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	return nil
}
