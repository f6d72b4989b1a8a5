package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"trade-journal/internal/logging"
	"trade-journal/internal/notify"
	"trade-journal/internal/resilience"
	"trade-journal/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	healthTimeout   = 2 * time.Second
)

// Server serves the journal API.
type Server struct {
	journal *service.Journal
	feed    *notify.Recorder
	logger  zerolog.Logger
	router  *gin.Engine
	checker *resilience.Checker
}

// NewServer builds the router. feed, when set, backs GET /notifications.
// mode is a gin mode; empty keeps gin's current mode.
func NewServer(j *service.Journal, feed *notify.Recorder, logger zerolog.Logger, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{
		journal: j,
		feed:    feed,
		logger:  logging.WithComponent(logger, "api"),
		checker: resilience.NewChecker(healthTimeout),
	}
	s.checker.Register("storage", resilience.PingCheck(j.Ping))

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.logger))
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/trades", s.listTrades)
		v1.POST("/trades", s.addTrade)
		v1.GET("/trades/:id", s.getTrade)
		v1.PATCH("/trades/:id", s.updateTrade)
		v1.DELETE("/trades/:id", s.deleteTrade)

		v1.GET("/achievements", s.listAchievements)
		v1.GET("/achievements/:id", s.getAchievement)

		v1.GET("/profile", s.getProfile)
		v1.PATCH("/profile", s.updateIdentity)
		v1.PATCH("/profile/settings", s.updateSettings)
		v1.POST("/profile/experience", s.addExperience)
		v1.POST("/profile/badges", s.addBadge)
		v1.DELETE("/profile/badges/:name", s.removeBadge)

		v1.GET("/streaks", s.listStreaks)
		v1.GET("/challenges", s.listChallenges)
		v1.PUT("/challenges/:id/progress", s.setChallengeProgress)

		v1.GET("/playbooks", s.listPlaybooks)
		v1.POST("/playbooks", s.addPlaybook)
		v1.GET("/playbooks/:id", s.getPlaybook)
		v1.PATCH("/playbooks/:id", s.updatePlaybook)
		v1.DELETE("/playbooks/:id", s.deletePlaybook)
		v1.POST("/playbooks/:id/activate", s.activatePlaybook)

		v1.GET("/stats/summary", s.statsSummary)
		v1.GET("/stats/breakdown", s.statsBreakdown)
		v1.GET("/stats/calendar", s.statsCalendar)

		v1.GET("/notifications", s.listNotifications)
	}
	s.router = r
	return s
}

// RegisterCheck adds a component to GET /health.
func (s *Server) RegisterCheck(name string, check resilience.HealthCheck) {
	s.checker.Register(name, check)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("API listening")
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

	s.logger.Info().Msg("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// RequestLogger logs one line per request with method, path, status and
// latency. 4xx and 5xx responses log at warn and error.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
