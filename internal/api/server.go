package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ra-risk-server/internal/domain"
	"github.com/ra-risk-server/internal/feedback"
	"github.com/ra-risk-server/internal/middleware"
	"github.com/ra-risk-server/internal/service"
)

// Checker is a named readiness check, e.g. the feedback database.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies are the collaborators the HTTP layer serves.
type Dependencies struct {
	Engine    *service.Engine
	Feedback  feedback.Store
	Readiness []Checker
	Logger    *logrus.Logger
}

// Server represents the HTTP server
type Server struct {
	config    *domain.Config
	engine    *service.Engine
	feedback  feedback.Store
	readiness []Checker
	logger    *logrus.Logger
	router    *gin.Engine
	server    *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(config *domain.Config, deps Dependencies) *Server {
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	store := deps.Feedback
	if store == nil {
		store = feedback.Disabled{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware(config.CORS.AllowedOrigins))
	if config.RateLimit.Enabled {
		limiter := middleware.NewClientRateLimiter(config.RateLimit.RequestsPerSecond, config.RateLimit.Burst)
		router.Use(limiter.Middleware())
	}
	router.Use(middleware.BodyLimit(config.Server.BodyLimit))
	router.Use(middleware.RequestTimeout(config.Server.RequestTimeout))

	s := &Server{
		config:    config,
		engine:    deps.Engine,
		feedback:  store,
		readiness: deps.Readiness,
		logger:    deps.Logger,
		router:    router,
	}

	s.setupRoutes()

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleLiveness)
	s.router.GET("/readyz", s.handleReadiness)

	api := s.router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/recommendations-health", s.handleRecommendationsHealth)
		api.POST("/predict-ra-risk", s.handlePredict)
		api.POST("/compare-ra-risk", s.handleCompare)
		api.POST("/generate-recommendations", s.handleRecommend)
	}

	v1 := s.router.Group("/api/v1/feedback")
	{
		v1.POST("", s.handleSaveFeedback)
		v1.GET("", s.handleListFeedback)
		v1.GET("/export", s.handleExportFeedback)
		v1.GET("/:assessment_id", s.handleGetFeedback)
		v1.DELETE("/:id", s.handleDeleteFeedback)
	}
}

// corsMiddleware answers preflight requests and tags responses for the
// configured origins. "*" allows any origin without credentials.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	allowAll := false
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		origins[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && origins[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "X-Correlation-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
