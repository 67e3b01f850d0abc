package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"mosaictile/internal/config"
	"mosaictile/internal/display"
	"mosaictile/internal/fetch"
	"mosaictile/internal/logger"
	"mosaictile/internal/pace"
	"mosaictile/internal/playback"
	"mosaictile/internal/render"
	"mosaictile/internal/segment"
	"mosaictile/internal/trigger"
)

func main() {
	// 1. Parse command-line arguments
	configFile := flag.String("c", "player.json", "Path to the unit config file")
	logLevel := flag.String("L", "info", "Log level (error, warn, info, debug)")
	flag.Parse()

	// 2. Initialize logger
	log := logger.NewLogger(*logLevel)
	log.Infof("Starting mosaic tile player...")

	// 3. Load configuration; a bad quadrant aborts before any playback
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	log.Infof("Unit %q driving quadrant %d, stream base %s", cfg.Name, cfg.Quadrant, cfg.BaseURL)

	// 4. Initialize the display surface and renderer
	screen, err := display.NewScreen(cfg.Quadrant)
	if err != nil {
		log.Errorf("Failed to initialize display: %v", err)
		os.Exit(1)
	}
	defer screen.Close()

	var renderer render.Renderer
	switch cfg.Renderer {
	case "diff":
		renderer = render.NewDiff(screen, log)
	default:
		renderer = render.NewRaw(screen)
	}
	log.Infof("Renderer strategy: %s", cfg.Renderer)

	// 5. Wire the playback pipeline
	store := segment.NewStore(cfg.StorageDir, cfg.ExpectedWidth, cfg.ExpectedHeight, log)
	fetcher := fetch.NewFetcher(cfg.BaseURL, cfg.Extension, cfg.UserAgent, cfg.Quadrant, store, log)
	controller := playback.NewController(store, fetcher, renderer, pace.New(), log)

	// 6. Claim the trigger lines
	inputs, err := trigger.NewGPIOInputs(cfg.TriggerLines, log)
	if err != nil {
		log.Errorf("Failed to set up trigger inputs: %v", err)
		os.Exit(1)
	}
	defer inputs.Close()

	watcher := trigger.NewWatcher(inputs, controller.Run, log)

	// 7. Poll for triggers until a shutdown signal arrives
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
		log.Infof("Shutdown signal received")
		cancel()
		<-done
	case err := <-done:
		if err != nil && err != context.Canceled {
			log.Errorf("Trigger watcher exited: %v", err)
		}
	}

	log.Infof("Player exited gracefully")
}
