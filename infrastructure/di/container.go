package di

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"mindcanvas/application/ports"
	"mindcanvas/application/services"
	"mindcanvas/domain/services/layout"
	"mindcanvas/domain/services/merge"
	"mindcanvas/infrastructure/config"
	"mindcanvas/infrastructure/observability"
	"mindcanvas/infrastructure/persistence/schema"
	"mindcanvas/pkg/logging"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logging   *logging.Logger
	Logger    *zap.Logger
	Collector *observability.Collector
	// Tracing is nil when tracing is disabled.
	Tracing    *observability.TracerProvider
	Tracer     trace.Tracer
	Repository ports.DocumentRepository
	Generator  ports.GraphGenerator
	Engine     *layout.Engine
	Merger     *merge.Merger
	Migrator   *schema.Migrator
	Service    *services.CanvasService
	Handler    http.Handler
}

// Restore loads the autosaved canvas into the service.
func (c *Container) Restore(ctx context.Context) error {
	restored, err := c.Service.Restore(ctx)
	if err != nil {
		return err
	}
	c.Logger.Info("Canvas ready", zap.Bool("restored", restored))
	return nil
}

// ApplyConfig pushes reloadable settings into running components.
func (c *Container) ApplyConfig(cfg *config.Config) {
	if err := logging.SetLevel(c.Logging.Level, cfg.Logging.Level); err != nil {
		c.Logger.Warn("Ignoring log level from reloaded config", zap.Error(err))
	}
	c.Service.SetDirection(cfg.Direction())
	c.Logger.Info("Configuration applied",
		zap.String("logLevel", cfg.Logging.Level),
		zap.String("direction", cfg.Direction().String()),
	)
}
