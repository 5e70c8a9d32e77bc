package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/config"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/api"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/middleware"
)

// Handlers carries the route handlers the server mounts.
type Handlers struct {
	Kakao      *api.KakaoHandler
	Dialogflow *api.DialogflowHandler
	Publish    *api.PublishHandler
	Settings   *api.SettingsHandler
	Health     *api.HealthHandler
}

// Server is the HTTP front of the bot: webhook routes guarded by the
// shared platform token, and the JWT-scoped settings surface with CORS
// for the browser settings page.
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

func New(cfg *config.Config, verifier middleware.TokenVerifier, limiter *middleware.RateLimiter, handlers Handlers, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	webhooks := router.Group("/", middleware.WebhookAuth(verifier))
	{
		handlers.Kakao.RegisterRoutes(webhooks)
		handlers.Dialogflow.RegisterRoutes(webhooks)
		handlers.Publish.RegisterRoutes(webhooks)
		handlers.Health.RegisterRoutes(webhooks)
	}

	settings := router.Group("/", cors.New(cors.Config{
		AllowOrigins:  []string{cfg.Settings.AllowOrigin},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Access-Control-Allow-Origin", "Access-Control-Allow-Headers"},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	if limiter != nil {
		settings.Use(limiter.Middleware())
	}
	handlers.Settings.RegisterRoutes(settings)
	// Preflight requests need a matching route for the group middleware
	// to run; the CORS middleware answers them before these fire.
	noContent := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	settings.OPTIONS("/user/settings", noContent)
	settings.OPTIONS("/user/usage-data", noContent)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    ":" + cfg.Server.Port,
			Handler: router,
		},
		logger: logger,
	}
}

// Start runs the server until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("server started", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
