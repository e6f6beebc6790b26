// Package server wires the builder backend together: providers, engine,
// store, copy engine, HTTP routes, and the WebSocket event stream.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/pagecraft/backend/internal/api/http"
	"github.com/pagecraft/backend/internal/api/middleware"
	"github.com/pagecraft/backend/internal/domain/crosscopy"
	"github.com/pagecraft/backend/internal/domain/layout"
	"github.com/pagecraft/backend/internal/domain/schema"
	"github.com/pagecraft/backend/internal/domain/store"
	"github.com/pagecraft/backend/internal/engine"
	"github.com/pagecraft/backend/internal/engine/cache"
	"github.com/pagecraft/backend/internal/engine/sandbox"
	"github.com/pagecraft/backend/internal/infrastructure/config"
	"github.com/pagecraft/backend/internal/infrastructure/logging"
	"github.com/pagecraft/backend/internal/infrastructure/monitoring"
	"github.com/pagecraft/backend/internal/providers/bundle"
	"github.com/pagecraft/backend/internal/ws"
)

// Server wraps the HTTP server and its dependencies
type Server struct {
	router *gin.Engine
	http   *http.Server
	store  *store.Store
	logger *logging.Logger
}

// NewServer creates a fully wired server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()
	schemas := schema.NewRegistry()

	var provider bundle.Provider
	if cfg.Bundles.RemoteURL != "" {
		provider = bundle.NewRemoteProvider(cfg.Bundles.RemoteURL, cfg.Bundles.FetchTimeout, logger)
		logger.Info("using remote bundle provider", zap.String("url", cfg.Bundles.RemoteURL))
	} else {
		provider = bundle.NewFSProvider(cfg.Bundles.Root, schemas, logger)
		logger.Info("using filesystem bundle provider", zap.String("root", cfg.Bundles.Root))
	}

	evaluator := sandbox.New(sandbox.Config{
		Timeout:      cfg.Sandbox.Timeout,
		MaxCallStack: cfg.Sandbox.MaxCallStack,
	}, sandbox.ElementRuntime{}, logger)

	eng := engine.New(engine.Options{
		Provider:     provider,
		Evaluator:    evaluator,
		Cache:        cache.New(),
		Metrics:      metrics,
		Logger:       logger,
		FetchTimeout: cfg.Bundles.FetchTimeout,
	})

	st := store.New(store.Options{
		HistoryDepth: cfg.Store.HistoryDepth,
		Logger:       logger,
		Metrics:      metrics,
	})
	copier := crosscopy.New(st, schemas, logger, metrics)

	layouts, err := layout.NewManager(cfg.Layouts.Dir, logger)
	if err != nil {
		return nil, err
	}

	handlers := apihttp.NewHandlers(eng, st, copier, layouts, schemas, provider, logger)
	wsHandler := ws.NewHandler(st, logger, metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Widget resolution
	router.GET("/widgets/:name/resolve", handlers.ResolveWidget)
	router.GET("/widgets/:name/exists", handlers.CheckWidget)
	router.POST("/widgets/cache/evict", handlers.EvictCache)
	router.GET("/widgets/cache/stats", handlers.CacheStats)
	router.POST("/widgets/download", handlers.DownloadBundles)

	// Builder state
	router.GET("/state", handlers.GetState)
	router.POST("/state/undo", handlers.Undo)
	router.POST("/state/redo", handlers.Redo)
	router.POST("/state/clear", handlers.ClearState)
	router.POST("/state/copy", handlers.CopyCanvas)
	router.GET("/state/export", handlers.ExportState)
	router.POST("/state/import", handlers.ImportState)

	// Components
	router.POST("/components", handlers.AddComponent)
	router.PATCH("/components/:id", handlers.UpdateComponent)
	router.DELETE("/components/:id", handlers.RemoveComponent)
	router.POST("/components/select", handlers.SelectComponent)

	// Layout persistence
	router.GET("/layouts", handlers.ListLayouts)
	router.GET("/layouts/:project", handlers.GetLayout)
	router.POST("/layouts/:project", handlers.SaveLayout)
	router.DELETE("/layouts/:project", handlers.DeleteLayout)

	// WebSocket event stream
	router.GET("/stream", wsHandler.HandleConnection)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: router,
		},
		store:  st,
		logger: logger,
	}, nil
}

// Run starts the server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("starting builder backend", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	err := s.http.Shutdown(ctx)
	_ = s.logger.Sync()
	return err
}
