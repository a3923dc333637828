package server

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushub/coursecat/internal/api/http"
	"github.com/campushub/coursecat/internal/api/middleware"
	"github.com/campushub/coursecat/internal/api/ws"
	"github.com/campushub/coursecat/internal/catalog"
	"github.com/campushub/coursecat/internal/infrastructure/config"
	"github.com/campushub/coursecat/internal/infrastructure/logging"
	"github.com/campushub/coursecat/internal/infrastructure/monitoring"
	"github.com/campushub/coursecat/internal/infrastructure/tracing"
)

// ServiceName is the resource name every span carries.
const ServiceName = "course-catalog-service"

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	httpSrv *nethttp.Server
	tracer  *tracing.Tracer
	stream  *ws.StreamExporter
	store   *catalog.Store
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		File:        cfg.Logging.File,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	logger.Info("Initializing course catalog service",
		zap.String("port", cfg.Server.Port),
		zap.String("catalog_file", cfg.Data.CatalogPath()),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	metrics := monitoring.NewMetrics()

	stream := ws.NewStreamExporter(logger)
	tracer, err := buildTracer(cfg, logger, metrics, stream)
	if err != nil {
		return nil, err
	}

	storeOpts := []catalog.StoreOption{}
	if cfg.Cache.Enabled {
		storeOpts = append(storeOpts, catalog.WithCache(cfg.Cache.MaxEntries))
	}
	store := catalog.NewStore(cfg.Data.CatalogPath(), tracer, logger, storeOpts...)
	store.OnLoad = metrics.RecordCatalogLoad

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.AccessLog(logger))
	router.Use(middleware.CORS())
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	handlers := http.NewHandlers(store, tracer, metrics, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Catalog
	router.GET("/catalog", handlers.Catalog)
	router.GET("/add_course", handlers.AddCourseForm)
	router.POST("/add_course", handlers.AddCourse)
	router.GET("/course/:code", handlers.CourseDetails)
	router.GET("/contacts", handlers.Contacts)

	// Trace demonstration routes
	router.GET("/manual-trace", handlers.ManualTrace)
	router.GET("/auto-instrumented", handlers.AutoInstrumented)

	// Live span feed
	router.GET("/spans/stream", stream.HandleConnection)

	// Prometheus exposition
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		tracer:  tracer,
		stream:  stream,
		store:   store,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// buildTracer assembles the span pipeline: recorder, batch processor, and
// the configured exporter fan-out.
func buildTracer(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics, stream *ws.StreamExporter) (*tracing.Tracer, error) {
	if !cfg.Telemetry.Enabled {
		logger.Info("Telemetry disabled, spans are discarded")
		return tracing.New(ServiceName, logger, nil), nil
	}

	exporters := []tracing.Exporter{
		tracing.NewFileExporter(cfg.Telemetry.SpanPath(cfg.Data.Dir)),
	}
	if cfg.Logging.Development {
		exporters = append(exporters, tracing.NewConsoleExporter(logger))
	}
	if cfg.Telemetry.AgentEnabled {
		agent, err := tracing.NewAgentExporter(cfg.Telemetry.AgentAddr, ServiceName)
		if err != nil {
			// Best-effort sink; the file exporter still records everything.
			logger.Warn("trace agent unavailable", zap.String("addr", cfg.Telemetry.AgentAddr), zap.Error(err))
		} else {
			exporters = append(exporters, agent)
			logger.Info("Trace agent exporter enabled", zap.String("addr", cfg.Telemetry.AgentAddr))
		}
	}
	exporters = append(exporters, stream)

	processor := tracing.NewBatchProcessor(tracing.ProcessorConfig{
		BatchSize:     cfg.Telemetry.BatchSize,
		FlushInterval: cfg.Telemetry.FlushInterval,
		QueueSize:     cfg.Telemetry.QueueSize,
	}, logger, exporters...)
	processor.OnExport = metrics.RecordSpanExport
	processor.OnDrop = metrics.RecordSpanDrop

	logger.Info("Span pipeline initialized",
		zap.String("span_file", cfg.Telemetry.SpanPath(cfg.Data.Dir)),
		zap.Int("batch_size", cfg.Telemetry.BatchSize),
		zap.Duration("flush_interval", cfg.Telemetry.FlushInterval),
	)

	return tracing.New(ServiceName, logger, processor), nil
}

// Router exposes the gin engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))

	s.httpSrv = &nethttp.Server{
		Addr:    addr,
		Handler: s.router,
	}
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then flushes and closes the span
// pipeline so no recorded span is lost.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if err := s.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("span pipeline shutdown: %w", err))
	}

	s.logger.Sync()
	return errors.Join(errs...)
}
