package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mindcanvas/infrastructure/config"
	"mindcanvas/infrastructure/di"
	"mindcanvas/interfaces/http/rest"
)

func main() {
	configFile := flag.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	loader := config.NewLoader(*configFile, ".env")
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	if err := container.Restore(ctx); err != nil {
		container.Logger.Fatal("Failed to restore canvas", zap.Error(err))
	}

	if cfg.IsDevelopment() && loader.File() != "" {
		watcher, err := config.NewWatcher(loader, cfg, container.Logger)
		if err != nil {
			container.Logger.Warn("Configuration hot reloading disabled", zap.Error(err))
		} else {
			watcher.OnChange(container.ApplyConfig)
			defer watcher.Stop()
		}
	}

	if err := rest.Serve(ctx, cfg, container.Handler, container.Logger); err != nil {
		container.Logger.Error("Server failed", zap.Error(err))
	}
}
