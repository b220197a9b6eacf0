package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/auth"
	"github.com/jon4hz/mealtrack/internal/api/handler"
	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/jon4hz/mealtrack/internal/gravatar"
	"github.com/jon4hz/mealtrack/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP frontend of the tracker.
type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	tracker   *tracker.Tracker
	oidc      *auth.OIDCProvider
}

// New creates the server and registers all routes.
func New(ctx context.Context, cfg *config.Config, tr *tracker.Tracker, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if tr == nil {
		return nil, fmt.Errorf("tracker is required")
	}

	if err := gravatar.Validate(cfg.Gravatar); err != nil {
		return nil, err
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		tracker:   tr,
	}

	if cfg.IsOIDCEnabled() {
		var err error
		s.oidc, err = auth.NewOIDCProvider(ctx, cfg.Auth.OIDC, tr)
		if err != nil {
			return nil, fmt.Errorf("failed to create oidc provider: %w", err)
		}
	}

	s.ginEngine.Use(gin.Recovery(), requestLogger(), gzip.Gzip(gzip.DefaultCompression))
	s.setupSession()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(s.cfg.ServerURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(auth.SessionName, store))
}

func (s *Server) setupRoutes() {
	h := handler.New(s.tracker, s.cfg.Gravatar)
	authHandler := auth.NewHandler(s.tracker, s.cfg.Gravatar)

	api := s.ginEngine.Group("/api")
	api.GET("/health", h.Health)

	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	if s.oidc != nil {
		api.GET("/oauth/login", s.oidc.Login)
		api.GET("/oauth/callback", s.oidc.Callback)
	}

	protected := api.Group("")
	protected.Use(auth.RequireAuth(s.tracker))

	protected.GET("/me", h.Me)
	protected.PUT("/me", h.UpdateMe)
	protected.PUT("/me/password", h.ChangePassword)

	protected.GET("/meals", h.ListMeals)
	protected.POST("/meals", h.AddMeal)
	protected.POST("/meals/combo", h.AddCombo)
	protected.PUT("/meals/:id", h.EditMeal)
	protected.DELETE("/meals/:id", h.DeleteMeal)

	protected.GET("/presets", h.ListPresets)
	protected.POST("/presets", h.CreatePreset)
	protected.PUT("/presets/:id", h.UpdatePreset)
	protected.DELETE("/presets/:id", h.DeletePreset)
	protected.POST("/presets/:id/log", h.LogPreset)

	protected.GET("/food-items", h.ListFoodItems)
	protected.POST("/food-items", h.CreateFoodItem)
	protected.PUT("/food-items/:id", h.UpdateFoodItem)
	protected.DELETE("/food-items/:id", h.DeleteFoodItem)

	protected.GET("/stats", h.Stats)
	protected.GET("/dashboard", h.Dashboard)

	protected.GET("/settings", h.GetSettings)
	protected.POST("/settings", h.UpdateSettings)
	protected.PUT("/settings", h.UpdateSettings)
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting API server", "listen", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Request", fields...)
		default:
			log.Debug("Request", fields...)
		}
	}
}
