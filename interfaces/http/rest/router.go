package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"mindcanvas/application/services"
	"mindcanvas/infrastructure/config"
	"mindcanvas/infrastructure/observability"
	"mindcanvas/interfaces/http/rest/handlers"
	"mindcanvas/interfaces/http/rest/middleware"
	"mindcanvas/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	service      *services.CanvasService
	collector    *observability.Collector
	errorHandler *errors.ErrorHandler
	cfg          *config.Config
	logger       *zap.Logger
	tracer       trace.Tracer
}

// NewRouter creates a new router instance. collector may be nil when
// metrics are disabled.
func NewRouter(
	service *services.CanvasService,
	collector *observability.Collector,
	errorHandler *errors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		service:      service,
		collector:    collector,
		errorHandler: errorHandler,
		cfg:          cfg,
		logger:       logger,
	}
}

// WithTracer adds a server span to every request.
func (rt *Router) WithTracer(tracer trace.Tracer) *Router {
	rt.tracer = tracer
	return rt
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	if rt.tracer != nil {
		router.Use(observability.TracingMiddleware(rt.tracer))
	}
	router.Use(middleware.Logger(rt.logger, "/health", "/ready"))
	if rt.collector != nil {
		router.Use(observability.MetricsMiddleware(rt.collector))
	}
	router.Use(chimiddleware.RequestSize(rt.cfg.Server.MaxRequestSize))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         rt.cfg.CORS.MaxAge,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil {
		router.Handle(rt.cfg.Metrics.Path, rt.collector.Handler())
	}

	canvasHandler := handlers.NewCanvasHandler(rt.service, rt.errorHandler, rt.logger)
	nodeHandler := handlers.NewNodeHandler(rt.service, rt.errorHandler, rt.logger)
	edgeHandler := handlers.NewEdgeHandler(rt.service, rt.errorHandler, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/canvas", func(r chi.Router) {
			r.Get("/", canvasHandler.GetCanvas)
			r.Delete("/", canvasHandler.Clear)
			r.Post("/generate", canvasHandler.Generate)
			r.Post("/expand", canvasHandler.Expand)
			r.Post("/merge", canvasHandler.Merge)
			r.Post("/layout", canvasHandler.Layout)
			r.Post("/import", canvasHandler.Import)
			r.Get("/export", canvasHandler.Export)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.CreateNode)
			r.Patch("/{nodeID}", nodeHandler.UpdateNode)
			r.Put("/{nodeID}/position", nodeHandler.MoveNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", edgeHandler.CreateEdge)
			r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
		})

		r.Put("/selection", canvasHandler.Select)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	rt.respond(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}

// readinessCheck reports whether the canvas can be served and generated.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	rt.respond(w, http.StatusOK, map[string]interface{}{
		"status":       "ready",
		"environment":  rt.cfg.Environment,
		"aiConfigured": rt.cfg.AI.APIKey != "",
		"direction":    rt.service.Direction(),
	})
}

func (rt *Router) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rt.logger.Error("Failed to encode response", zap.Error(err))
	}
}
