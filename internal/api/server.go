package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/liver-risk-server/internal/domain"
	"github.com/liver-risk-server/internal/middleware"
	"github.com/liver-risk-server/internal/service"
	"github.com/liver-risk-server/internal/session"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server represents the HTTP server
type Server struct {
	cfg      *domain.Config
	service  *service.PredictionService
	sessions *session.Store
	logger   *logrus.Logger
	router   *gin.Engine
	server   *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *domain.Config, svc *service.PredictionService, sessions *session.Store, logger *logrus.Logger) (*Server, error) {
	// Set Gin mode based on log level unless a test already chose one
	if gin.Mode() != gin.TestMode {
		if cfg.Logging.Level == "debug" {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	router.Use(middleware.CorrelationID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuditLogger(logger))

	server := &Server{
		cfg:      cfg,
		service:  svc,
		sessions: sessions,
		logger:   logger,
		router:   router,
	}

	server.setupRoutes()

	return server, nil
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.cfg.Server
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
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the form and API routes
func (s *Server) setupRoutes() {
	var limited []gin.HandlerFunc
	if s.cfg.RateLimit.Enabled {
		limiter := middleware.NewClientLimiter(s.cfg.RateLimit)
		limited = append(limited, middleware.RateLimit(limiter, s.logger))
	}

	s.router.GET("/health", s.handleHealth)

	// Form
	s.router.GET("/", s.handleIndex)
	s.router.POST("/predict", append(limited, s.handlePredictForm)...)
	s.router.POST("/refresh", s.handleRefresh)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/fields", s.handleFields)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/predict", append(limited, s.handlePredictJSON)...)
	}
}

// statusFor maps an application error code to its HTTP status
func statusFor(code string) int {
	switch code {
	case domain.ErrInvalidInput:
		return http.StatusBadRequest
	case domain.ErrNoDataEntered, domain.ErrValidation:
		return http.StatusUnprocessableEntity
	case domain.ErrModelNotFound, domain.ErrModelLoad:
		return http.StatusServiceUnavailable
	case domain.ErrRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// asAppError converts any error into the AppError sent to clients.
func asAppError(err error) *domain.AppError {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return domain.WrapAppError(domain.ErrInternalServer, "An unexpected error occurred.", err)
}
