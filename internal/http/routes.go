package http

import (
	"shell_game/internal/config"
	"shell_game/internal/http/handlers"
	"shell_game/internal/http/middleware"
	"shell_game/internal/repository"
	"shell_game/internal/service"
	"shell_game/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires every endpoint. db may be nil, which disables round
// history. The returned hub must be closed on shutdown.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, shell *service.ShellService, cfg *config.Config) *ws.Hub {
	var rounds handlers.RoundHistory
	if db != nil {
		rounds = repository.NewRoundRepository(db)
	}
	h := handlers.NewHandler(shell, rounds)
	healthHandler := handlers.NewHealthHandler(db, middleware.RedisClient(), shell.ActiveSessionsCount, cfg.AppVersion)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg)

	// Legacy /api routes
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, cfg)

	// WebSocket stream of the player's round
	hub := ws.NewHub(shell)
	r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigin))

	return hub
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	api.POST("/session", h.Session)

	// Game rate limiter middleware (per player, not per IP)
	gameRL := middleware.GameRateLimit(cfg.GameRateLimit, cfg.GameRateWindow)

	shell := api.Group("/game/shell")
	{
		shell.GET("/info", h.ShellInfo)
		shell.GET("/state", middleware.JWT(), h.ShellState)
		shell.POST("/start", middleware.JWT(), gameRL, h.ShellStart)
		shell.POST("/guess", middleware.JWT(), gameRL, h.ShellGuess)
		shell.POST("/reset", middleware.JWT(), gameRL, h.ShellReset)
		shell.POST("/reshuffle", middleware.JWT(), gameRL, h.ShellReshuffle)
	}

	api.GET("/me/rounds", middleware.JWT(), h.MyRounds)
}
