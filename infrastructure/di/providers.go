package di

import (
	"context"
	"net/http"

	"github.com/google/wire"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"mindcanvas/application/ports"
	"mindcanvas/application/services"
	"mindcanvas/domain/core/validators"
	"mindcanvas/domain/services/layout"
	"mindcanvas/domain/services/merge"
	"mindcanvas/infrastructure/ai/gemini"
	"mindcanvas/infrastructure/config"
	"mindcanvas/infrastructure/observability"
	"mindcanvas/infrastructure/persistence/filestore"
	"mindcanvas/infrastructure/persistence/memory"
	"mindcanvas/infrastructure/persistence/schema"
	"mindcanvas/interfaces/http/rest"
	"mindcanvas/pkg/errors"
	"mindcanvas/pkg/logging"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogging,
	ProvideLogger,
	ProvideMetrics,
	ProvidePipelineMetrics,
	ProvideTracing,
	ProvideTracer,
	ProvideRepository,
	ProvideGenerator,
	ProvideLayoutEngine,
	ProvideMerger,
	ProvideMigrator,
	validators.NewConceptGraphValidator,
	services.NewCanvasService,
	ProvideErrorHandler,
	rest.NewRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// ProvideLogging creates the application logger from the logging section.
func ProvideLogging(cfg *config.Config) (*logging.Logger, func(), error) {
	logger, err := logging.New(logging.Options{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		File:        cfg.Logging.File,
		MaxSize:     cfg.Logging.MaxSize,
		MaxAge:      cfg.Logging.MaxAge,
		MaxBackups:  cfg.Logging.MaxBackups,
		Compress:    cfg.Logging.Compress,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = logger.Sync()
	}
	return logger, cleanup, nil
}

// ProvideLogger exposes the plain zap logger.
func ProvideLogger(l *logging.Logger) *zap.Logger {
	return l.Logger
}

// ProvideMetrics creates the Prometheus collector, or nil when disabled.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// ProvidePipelineMetrics adapts the collector to the application port.
func ProvidePipelineMetrics(c *observability.Collector) ports.PipelineMetrics {
	if c == nil {
		return ports.NopMetrics{}
	}
	return c
}

// ProvideRepository picks the autosave store.
func ProvideRepository(cfg *config.Config, logger *zap.Logger) (ports.DocumentRepository, error) {
	if cfg.Storage.Ephemeral {
		logger.Info("Using in-memory canvas storage")
		return memory.NewStore(), nil
	}
	store, err := filestore.NewStore(cfg.Storage.Dir, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Using file canvas storage", zap.String("path", store.Path()))
	return store, nil
}

// ProvideTracing starts span export, or returns nil when tracing is off.
// The cleanup flushes buffered spans.
func ProvideTracing(cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Tracing.Enabled {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		ServiceName: cfg.Tracing.ServiceName,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Tracing enabled",
		zap.String("endpoint", cfg.Tracing.Endpoint),
		zap.Float64("sampleRate", cfg.Tracing.SampleRate),
	)
	return tp, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Failed to flush spans", zap.Error(err))
		}
	}, nil
}

// ProvideTracer returns the application tracer, a no-op one when tracing
// is off.
func ProvideTracer(tp *observability.TracerProvider) trace.Tracer {
	if tp == nil {
		return noop.NewTracerProvider().Tracer("mindcanvas")
	}
	return tp.Tracer()
}

// ProvideGenerator creates the traced Gemini client.
func ProvideGenerator(cfg *config.Config, tracer trace.Tracer, logger *zap.Logger) (ports.GraphGenerator, error) {
	generator, err := NewGenerator(cfg, logger)
	if err != nil {
		return nil, err
	}
	return observability.TraceGenerator(generator, tracer), nil
}

// NewGenerator creates the Gemini client. Without an API key the canvas
// still works; generation requests fail with a clear error.
func NewGenerator(cfg *config.Config, logger *zap.Logger) (ports.GraphGenerator, error) {
	if cfg.AI.APIKey == "" {
		logger.Warn("No Gemini API key configured, generation is disabled")
		return gemini.Unconfigured{}, nil
	}
	client, err := gemini.NewClient(cfg.GeminiConfig(), logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ProvideLayoutEngine creates the layout engine.
func ProvideLayoutEngine(cfg *config.Config) *layout.Engine {
	return layout.NewEngine(cfg.Layout.Options)
}

// ProvideMerger creates the merger with the configured direction and policy.
func ProvideMerger(engine *layout.Engine, cfg *config.Config) *merge.Merger {
	return merge.NewMerger(engine, merge.Options{
		Direction: cfg.Direction(),
		Policy:    cfg.MergePolicy(),
	})
}

// ProvideMigrator creates the schema migrator.
func ProvideMigrator(logger *zap.Logger) *schema.Migrator {
	return schema.NewMigrator(logger)
}

// ProvideErrorHandler renders errors, with stack traces outside production.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, !cfg.IsProduction())
}

// ProvideHTTPHandler builds the routed handler, with request spans when
// tracing is on.
func ProvideHTTPHandler(router *rest.Router, tp *observability.TracerProvider) http.Handler {
	if tp != nil {
		router = router.WithTracer(tp.Tracer())
	}
	return router.Setup()
}
