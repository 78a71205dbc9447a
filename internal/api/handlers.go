package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"solana-trading-bot/internal/ai/behavior"
	"solana-trading-bot/internal/events"
	"solana-trading-bot/internal/trader"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	status := gin.H{
		"uptime":            time.Since(s.startTime).String(),
		"training_progress": s.model.TrainingProgress(),
		"strategy_running":  false,
	}

	if s.runner != nil {
		status["strategy_running"] = s.runner.IsRunning()
		if result, at := s.runner.LastResult(); result != nil {
			status["last_run"] = at
			status["last_result"] = result
		}
	}
	if s.breaker != nil {
		state, reason := s.breaker.State()
		status["breaker_state"] = state
		if reason != "" {
			status["breaker_reason"] = reason
		}
	}

	c.JSON(http.StatusOK, status)
}

// handleTrade triggers one manual pipeline pass. Invalid params are the
// only 400; everything downstream resolves to a TradeResult.
func (s *Server) handleTrade(c *gin.Context) {
	var params trader.TradeParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := s.trader.ExecuteTradeStrategy(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, trader.ErrInvalidParams) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type predictRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// handlePredict runs state aggregation and classification without trading.
func (s *Server) handlePredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	state, err := s.states.GetWalletState(c.Request.Context(), req.WalletAddress)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	prediction, err := s.model.Predict(state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":      state,
		"prediction": prediction,
	})
}

type trainRequest struct {
	Examples []behavior.TrainingExample `json:"examples"`
}

// handleTrain retrains the model in the background; poll /api/model/progress.
func (s *Server) handleTrain(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	go func() {
		if err := s.model.Train(req.Examples); err != nil {
			s.logger.Error().Err(err).Msg("Training failed")
			s.bus.PublishError("model", err.Error())
			return
		}
		s.bus.Publish(events.Event{Type: events.EventModelTrained, Data: map[string]interface{}{
			"examples": len(req.Examples),
		}})
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":   "training started",
		"examples": len(req.Examples),
	})
}

func (s *Server) handleTrainingProgress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"progress": s.model.TrainingProgress()})
}

func (s *Server) handleExportWeights(c *gin.Context) {
	data, err := s.model.ExportWeights()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handleImportWeights(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	if err := s.model.ImportWeights(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "weights imported"})
}

func (s *Server) handleStrategyStart(c *gin.Context) {
	if s.runner == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "strategy loop is not configured"})
		return
	}
	// Runner lifetime is tied to the server, not this request.
	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	s.runner.Start(ctx)
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

func (s *Server) handleStrategyStop(c *gin.Context) {
	if s.runner == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "strategy loop is not configured"})
		return
	}
	s.runner.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}
