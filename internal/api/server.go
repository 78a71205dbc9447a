// Package api exposes the bot over HTTP: manual trade triggers, model
// training, and a websocket event feed.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"solana-trading-bot/internal/ai/behavior"
	"solana-trading-bot/internal/circuit"
	"solana-trading-bot/internal/events"
	"solana-trading-bot/internal/strategy"
	"solana-trading-bot/internal/trader"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	Host            string
	AllowedOrigins  string
	ProductionMode  bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP API server. The model and trader are shared with the
// strategy loop; both are safe for concurrent use.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	trader     *trader.AutoTrader
	model      *behavior.BehaviorModel
	states     trader.StateLoader
	runner     *strategy.Runner
	breaker    *circuit.Breaker
	bus        *events.EventBus
	hub        *WSHub
	config     ServerConfig
	logger     zerolog.Logger
	startTime  time.Time
	baseCtx    context.Context
}

// NewServer creates the API server. runner and breaker may be nil when the
// scheduled strategy is disabled.
func NewServer(config ServerConfig, t *trader.AutoTrader, model *behavior.BehaviorModel, states trader.StateLoader, runner *strategy.Runner, breaker *circuit.Breaker, bus *events.EventBus, logger zerolog.Logger) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:    gin.New(),
		trader:    t,
		model:     model,
		states:    states,
		runner:    runner,
		breaker:   breaker,
		bus:       bus,
		hub:       NewWSHub(logger),
		config:    config,
		logger:    logger.With().Str("component", "APIServer").Logger(),
		startTime: time.Now(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(config.AllowedOrigins),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	s.setupRoutes()
	return s
}

func splitOrigins(origins string) []string {
	if origins == "" || origins == "*" {
		return []string{"*"}
	}
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.POST("/trade", s.handleTrade)
		api.POST("/predict", s.handlePredict)
		api.POST("/train", s.handleTrain)
		api.GET("/model/progress", s.handleTrainingProgress)
		api.GET("/model/weights", s.handleExportWeights)
		api.POST("/model/weights", s.handleImportWeights)
		api.POST("/strategy/start", s.handleStrategyStart)
		api.POST("/strategy/stop", s.handleStrategyStop)
	}
}

// Start runs the server and the websocket hub. Blocks until the listener
// fails or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.baseCtx = ctx
	go s.hub.Run(ctx)
	s.bus.SubscribeAll(s.hub.ForwardEvent)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info().Str("addr", addr).Msg("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
