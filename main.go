package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-trading-bot/config"
	"solana-trading-bot/internal/ai/behavior"
	"solana-trading-bot/internal/api"
	"solana-trading-bot/internal/circuit"
	"solana-trading-bot/internal/events"
	"solana-trading-bot/internal/jupiter"
	"solana-trading-bot/internal/logging"
	"solana-trading-bot/internal/solana"
	"solana-trading-bot/internal/strategy"
	"solana-trading-bot/internal/trader"
	"solana-trading-bot/internal/wallet"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:      cfg.LoggingConfig.Level,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})
	logger.Info().Msg("Starting solana trading bot")

	eventBus := events.NewEventBus()

	// Chain provider: live RPC or deterministic mock data
	var provider solana.Provider
	if cfg.SolanaConfig.MockMode {
		logger.Warn().Msg("Mock mode enabled, using simulated chain data")
		provider = solana.NewMockClient()
	} else {
		provider = solana.NewClient(cfg.SolanaConfig.RPCURL, cfg.SolanaConfig.Commitment)
	}

	// Optional Redis-backed token list cache
	var tokenCache *jupiter.TokenCache
	if cfg.RedisConfig.Enabled {
		tokenCache = jupiter.NewTokenCache(jupiter.CacheConfig{
			Address:  cfg.RedisConfig.Address,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
			PoolSize: cfg.RedisConfig.PoolSize,
		}, logger)
		defer tokenCache.Close()
	}

	swapClient := jupiter.NewClient(
		cfg.JupiterConfig.QuoteAPIURL,
		cfg.JupiterConfig.TokenListURL,
		provider,
		cfg.SolanaConfig.WalletPubkey,
		logger,
		jupiter.Options{
			PlatformFeeBps: cfg.JupiterConfig.PlatformFeeBps,
			FeeAccount:     cfg.JupiterConfig.FeeAccount,
			ConfirmTimeout: cfg.JupiterConfig.ConfirmTimeout(),
			TokenCache:     tokenCache,
		},
	)

	modelCfg := behavior.DefaultConfig()
	modelCfg.HiddenUnits1 = cfg.ModelConfig.HiddenUnits1
	modelCfg.HiddenUnits2 = cfg.ModelConfig.HiddenUnits2
	modelCfg.DropoutRate = cfg.ModelConfig.DropoutRate
	modelCfg.TrainingEpochs = cfg.ModelConfig.TrainingEpochs
	model := behavior.NewBehaviorModel(modelCfg)

	aggregator := wallet.NewAggregator(provider, logger)

	autoTrader := trader.NewAutoTrader(aggregator, model, swapClient, eventBus, logger, &trader.Config{
		ConfidenceThreshold: cfg.ModelConfig.ConfidenceThreshold,
		DryRun:              cfg.TradingConfig.DryRun,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := autoTrader.Init(ctx); err != nil {
		logger.Error().Err(err).Msg("Swap client init failed, token metadata unavailable")
	}

	var breaker *circuit.Breaker
	if cfg.CircuitBreakerConfig.Enabled {
		breaker = circuit.NewBreaker(&circuit.Config{
			Enabled:             true,
			MaxConsecutiveFails: cfg.CircuitBreakerConfig.MaxConsecutiveFails,
			CooldownMinutes:     cfg.CircuitBreakerConfig.CooldownMinutes,
			MaxTradesPerMinute:  cfg.CircuitBreakerConfig.MaxTradesPerMinute,
			MaxDailyTrades:      cfg.CircuitBreakerConfig.MaxDailyTrades,
		})
		breaker.OnTrip(func(reason string) {
			eventBus.Publish(events.Event{Type: events.EventBreakerTripped, Data: map[string]interface{}{"reason": reason}})
		})
		breaker.OnReset(func() {
			eventBus.Publish(events.Event{Type: events.EventBreakerReset, Data: map[string]interface{}{}})
		})
	}

	var runner *strategy.Runner
	if cfg.StrategyConfig.WalletAddress != "" {
		runner = strategy.NewRunner(strategy.Config{
			WalletAddress: cfg.StrategyConfig.WalletAddress,
			TickInterval:  time.Duration(cfg.StrategyConfig.TickIntervalSecs) * time.Second,
			MaxAmount:     cfg.TradingConfig.MaxAmount,
			Slippage:      cfg.TradingConfig.Slippage,
		}, autoTrader, breaker, eventBus, logger)

		if cfg.StrategyConfig.Enabled {
			runner.Start(ctx)
			logger.Info().
				Str("wallet", cfg.StrategyConfig.WalletAddress).
				Int("interval_secs", cfg.StrategyConfig.TickIntervalSecs).
				Msg("Strategy loop started")
		}
	}

	server := api.NewServer(api.ServerConfig{
		Port:            cfg.ServerConfig.Port,
		Host:            cfg.ServerConfig.Host,
		AllowedOrigins:  cfg.ServerConfig.AllowedOrigins,
		ProductionMode:  cfg.ServerConfig.ProductionMode,
		ReadTimeout:     time.Duration(cfg.ServerConfig.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(cfg.ServerConfig.WriteTimeout) * time.Second,
		ShutdownTimeout: time.Duration(cfg.ServerConfig.ShutdownTimeout) * time.Second,
	}, autoTrader, model, aggregator, runner, breaker, eventBus, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("API server stopped")
		}
	}

	if runner != nil {
		runner.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Shutdown complete")
}
