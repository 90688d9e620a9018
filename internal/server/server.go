package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/AyushSingh360/Aryan-portfolio/internal/circuitbreaker"
	"github.com/AyushSingh360/Aryan-portfolio/internal/config"
	"github.com/AyushSingh360/Aryan-portfolio/internal/handler"
	"github.com/AyushSingh360/Aryan-portfolio/internal/healthcheck"
	"github.com/AyushSingh360/Aryan-portfolio/internal/middleware"
	"github.com/AyushSingh360/Aryan-portfolio/internal/notify"
	"github.com/AyushSingh360/Aryan-portfolio/internal/ratelimit"
	"github.com/AyushSingh360/Aryan-portfolio/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/net/netutil"
)

// Dependencies are built by the caller so tests can swap any of them.
// Health, MailBreaker and RequestLog are optional.
type Dependencies struct {
	Limiter     ratelimit.Limiter
	Notifier    notify.Notifier
	Health      *healthcheck.Checker
	MailBreaker *circuitbreaker.Breaker
	RequestLog  *middleware.RequestLogRecorder
}

type Server struct {
	router         *gin.Engine
	config         *config.Config
	deps           Dependencies
	contactHandler *handler.ContactHandler
	healthHandler  *handler.HealthHandler
	httpServer     *http.Server
}

func New(cfg *config.Config, deps Dependencies) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	contactService := service.NewContactService(deps.Notifier)

	healthHandler := handler.NewHealthHandler(deps.Health)
	if deps.MailBreaker != nil {
		healthHandler.AddBreaker("smtp_breaker", deps.MailBreaker)
	}

	s := &Server{
		router:         router,
		config:         cfg,
		deps:           deps,
		contactHandler: handler.NewContactHandler(contactService),
		healthHandler:  healthHandler,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	if s.deps.RequestLog != nil {
		s.router.Use(s.deps.RequestLog.Middleware())
	}
	s.router.Use(middleware.Recovery())
	// cors.New panics on an empty allow-list, so no origins means no CORS headers
	if origins := s.config.Server.AllowedOrigins; len(origins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Content-Type"},
			ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
			MaxAge:        10 * time.Minute,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler.Check)

	api := s.router.Group("/api")
	{
		api.OPTIONS("/contact", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		api.POST("/contact", middleware.RateLimit(s.deps.Limiter), s.contactHandler.Submit)
	}
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if limit := s.config.Server.MaxConnections; limit > 0 {
		ln = netutil.LimitListener(ln, limit)
	}

	log.Printf("Starting contact API on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	return s.httpServer.Serve(ln)
}

// Shutdown drains in-flight requests, then flushes the request log.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	if s.deps.RequestLog != nil {
		s.deps.RequestLog.Stop()
	}

	return err
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
