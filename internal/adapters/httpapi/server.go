// Package httpapi expone el core por HTTP (gin): leaderboard unificado,
// TruthScore, datos por plataforma, apuestas simuladas y resolución.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/leaderboard"
	"github.com/alejandrodnm/truthbounty/internal/ports"
	"github.com/alejandrodnm/truthbounty/internal/resolver"
	"github.com/alejandrodnm/truthbounty/internal/simulation"
	"github.com/alejandrodnm/truthbounty/internal/truthscore"
)

// Config del servidor HTTP.
type Config struct {
	Addr           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
}

// LeaderboardReader sirve páginas del leaderboard unificado.
type LeaderboardReader interface {
	Get(ctx context.Context, q leaderboard.Query) (leaderboard.Page, error)
}

// ScoreReader calcula el TruthScore de una dirección.
type ScoreReader interface {
	Get(ctx context.Context, address string) (truthscore.Result, error)
}

// BetPlacer registra apuestas simuladas.
type BetPlacer interface {
	Place(ctx context.Context, req simulation.Request) (domain.Bet, error)
}

// ResolutionRunner ejecuta el job de resolución de una plataforma.
type ResolutionRunner interface {
	RunByPlatform(ctx context.Context, p domain.Platform) (resolver.RunReport, error)
}

// BetLister lista apuestas simuladas.
type BetLister interface {
	ListBets(ctx context.Context, filter domain.BetFilter) ([]domain.Bet, error)
}

// PlatformSource da acceso a los adapters de cada plataforma.
type PlatformSource interface {
	Markets(p domain.Platform) (ports.MarketProvider, error)
	Leaderboard(p domain.Platform) (ports.LeaderboardProvider, error)
	Get(p domain.Platform) (ports.PlatformAdapter, error)
}

// HealthCheck es una dependencia verificada por /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Deps agrupa los servicios que atiende el servidor.
type Deps struct {
	Platforms   PlatformSource
	Leaderboard LeaderboardReader
	TruthScore  ScoreReader
	Simulator   BetPlacer
	Resolver    ResolutionRunner
	Bets        BetLister
	Health      []HealthCheck
	Metrics     http.Handler
}

// Server es el servidor HTTP.
type Server struct {
	cfg    Config
	deps   Deps
	engine *gin.Engine
}

// New construye el router con todas las rutas.
func New(cfg Config, deps Deps) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}

	s := &Server{cfg: cfg, deps: deps}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(corsConfig(s.cfg.AllowedOrigins)))

	router.GET("/healthz", s.healthz)
	if s.deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(s.deps.Metrics))
	}

	api := router.Group("/api")
	{
		api.GET("/leaderboard", s.getLeaderboard)
		api.GET("/truthscore/:address", s.getTruthScore)
		api.GET("/bets", s.listBets)

		api.GET("/:platform", s.getPlatform)
		api.POST("/:platform/simulate", s.simulate)
		api.GET("/:platform/resolve", s.resolve)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Handler devuelve el http.Handler (tests, embedding).
func (s *Server) Handler() http.Handler { return s.engine }

// Run sirve hasta que ctx se cancele y luego hace un shutdown ordenado.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("httpapi.Run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpapi.Run: shutdown: %w", err)
	}
	slog.Info("http server stopped")
	return nil
}

// requestLogger registra cada request con slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).Round(time.Microsecond),
		)
	}
}
