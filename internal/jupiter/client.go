// Package jupiter talks to the swap aggregator: route discovery, route
// selection, and swap execution against the chain.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-trading-bot/internal/solana"
)

// lamportsPerUnit converts between human amounts and the aggregator's
// base-unit integers. SOL-denominated pairs use 9 decimals.
const lamportsPerUnit = 1e9

// Client queries the aggregator's quote API and executes swaps through a
// chain provider.
type Client struct {
	apiURL       string
	tokenListURL string
	httpClient   *http.Client
	provider     solana.Provider
	userPubkey   string
	logger       zerolog.Logger

	platformFeeBps int
	feeAccount     string
	confirmTimeout time.Duration

	tokenCache *TokenCache

	mu        sync.RWMutex
	tokenList []TokenInfo
}

// Options configures optional client behavior.
type Options struct {
	PlatformFeeBps int
	FeeAccount     string
	ConfirmTimeout time.Duration
	TokenCache     *TokenCache // Optional Redis-backed token list cache
}

// NewClient creates a new aggregator client. provider executes and
// confirms the resulting transactions; userPubkey is the account swaps
// are built for.
func NewClient(apiURL, tokenListURL string, provider solana.Provider, userPubkey string, logger zerolog.Logger, opts Options) *Client {
	confirmTimeout := opts.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = 60 * time.Second
	}

	return &Client{
		apiURL:         apiURL,
		tokenListURL:   tokenListURL,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
		provider:       provider,
		userPubkey:     userPubkey,
		logger:         logger.With().Str("component", "JupiterClient").Logger(),
		platformFeeBps: opts.PlatformFeeBps,
		feeAccount:     opts.FeeAccount,
		confirmTimeout: confirmTimeout,
		tokenCache:     opts.TokenCache,
	}
}

// Init loads the token metadata list once. The list is read-only after
// this call; concurrent refresh is out of scope.
func (c *Client) Init(ctx context.Context) error {
	if c.tokenCache != nil {
		if tokens, ok := c.tokenCache.Get(ctx); ok {
			c.mu.Lock()
			c.tokenList = tokens
			c.mu.Unlock()
			c.logger.Info().Int("tokens", len(tokens)).Msg("Token list loaded from cache")
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokenListURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching token list: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading token list: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token list error: %s", string(body))
	}

	var tokens []TokenInfo
	if err := json.Unmarshal(body, &tokens); err != nil {
		return fmt.Errorf("error parsing token list: %w", err)
	}

	c.mu.Lock()
	c.tokenList = tokens
	c.mu.Unlock()

	if c.tokenCache != nil {
		c.tokenCache.Set(ctx, tokens)
	}

	c.logger.Info().Int("tokens", len(tokens)).Msg("Token list loaded")
	return nil
}

// GetRoutes quotes candidate routes for a swap. amount is in human units
// and slippage is a fraction; both are converted to the provider's
// base-unit and basis-point conventions before the query. A legitimate
// no-route answer is an empty slice, not an error, and nothing is retried
// here: retry policy belongs to the caller.
func (c *Client) GetRoutes(ctx context.Context, inputMint, outputMint string, amount, slippage float64) ([]SwapRoute, error) {
	if !ValidateSlippage(slippage) {
		c.logger.Warn().Float64("slippage", slippage).Msg("Slippage outside the practical 0.1%-5% range")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"inputMint":        inputMint,
		"outputMint":       outputMint,
		"amount":           fmt.Sprintf("%d", int64(amount*lamportsPerUnit)),
		"slippageBps":      int(math.Round(slippage * 10000)),
		"onlyDirectRoutes": false,
		"maxAccounts":      5,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/quote", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGetRoutes, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGetRoutes, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGetRoutes, resp.StatusCode)
	}

	var quotes []json.RawMessage
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrGetRoutes, err)
	}

	routes := make([]SwapRoute, 0, len(quotes))
	for _, raw := range quotes {
		route, err := parseRoute(raw)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *route)
	}

	c.logger.Debug().
		Str("input_mint", inputMint).
		Str("output_mint", outputMint).
		Float64("amount", amount).
		Int("routes", len(routes)).
		Msg("Routes quoted")

	return routes, nil
}

// swapResponse is the aggregator's swap-transaction payload.
type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// ExecuteSwap requests a signable transaction for the chosen route,
// submits it, and waits for on-chain confirmation. The confirmation wait
// is bounded; exceeding it maps to ErrConfirmationTimeout rather than
// hanging the pipeline.
func (c *Client) ExecuteSwap(ctx context.Context, route *SwapRoute) (string, error) {
	body := map[string]interface{}{
		"quoteResponse":             route.RouteInfo,
		"userPublicKey":             c.userPubkey,
		"wrapAndUnwrapSol":          true,
		"asLegacyTransaction":       true,
		"prioritizationFeeLamports": "auto",
		"dynamicComputeUnitLimit":   true,
	}
	if c.feeAccount != "" {
		body["feeAccount"] = c.feeAccount
		body["platformFeeBps"] = c.platformFeeBps
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/swap", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGetSwapTransaction, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGetSwapTransaction, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrGetSwapTransaction, resp.StatusCode)
	}

	var swap swapResponse
	if err := json.Unmarshal(respBody, &swap); err != nil || swap.SwapTransaction == "" {
		return "", fmt.Errorf("%w: malformed response", ErrGetSwapTransaction)
	}

	txid, err := c.provider.SendTransaction(ctx, swap.SwapTransaction)
	if err != nil {
		return "", err
	}

	confirmCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	confirmation, err := c.provider.ConfirmTransaction(confirmCtx, txid)
	if err != nil {
		if confirmCtx.Err() == context.DeadlineExceeded {
			return "", ErrConfirmationTimeout
		}
		return "", err
	}
	if confirmation.Err != nil {
		return "", fmt.Errorf("transaction failed: %s", *confirmation.Err)
	}

	c.logger.Info().Str("txid", txid).Float64("out_amount", route.OutAmount).Msg("Swap confirmed")
	return txid, nil
}

// ValidateSlippage reports whether a slippage fraction is within the
// range the aggregator accepts in practice (0.1% to 5%).
func ValidateSlippage(slippage float64) bool {
	return slippage >= 0.001 && slippage <= 0.05
}

// GetTokenInfo looks up a mint in the loaded token list.
func (c *Client) GetTokenInfo(mint string) (*TokenInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.tokenList {
		if c.tokenList[i].Address == mint {
			return &c.tokenList[i], true
		}
	}
	return nil, false
}

// IsTokenSupported reports whether a mint appears in the token list.
func (c *Client) IsTokenSupported(mint string) bool {
	_, ok := c.GetTokenInfo(mint)
	return ok
}

// ResolveMint maps a token symbol to its mint address using the loaded
// list. Unknown symbols resolve to themselves so callers can pass mint
// addresses directly.
func (c *Client) ResolveMint(symbol string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.tokenList {
		if c.tokenList[i].Symbol == symbol {
			return c.tokenList[i].Address
		}
	}
	return symbol
}
