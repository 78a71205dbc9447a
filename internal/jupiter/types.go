package jupiter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Collaborator failure sentinels. These are caught at the orchestrator
// boundary and converted to failed trade results.
var (
	ErrGetRoutes           = errors.New("failed to get routes")
	ErrGetSwapTransaction  = errors.New("failed to get swap transaction")
	ErrConfirmationTimeout = errors.New("confirmation timeout")
)

// TokenInfo is one entry of the aggregator's token metadata list.
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

// quoteResponse is the provider's raw quote payload. Amount fields arrive
// as base-unit decimal strings.
type quoteResponse struct {
	InputMint            string `json:"inputMint"`
	OutputMint           string `json:"outputMint"`
	InAmount             string `json:"inAmount"`
	OutAmount            string `json:"outAmount"`
	OtherAmountThreshold string `json:"otherAmountThreshold"`
	PriceImpactPct       string `json:"priceImpactPct"`
}

// SwapRoute is one validated candidate execution path. Routes are created
// fresh per quote call and never cached; quotes are time-sensitive.
type SwapRoute struct {
	// RouteInfo is the provider's quote verbatim, passed back when
	// requesting the swap transaction.
	RouteInfo   json.RawMessage `json:"routeInfo"`
	OutAmount   float64         `json:"outAmount"`   // Human units
	Fee         float64         `json:"fee"`         // Human units
	PriceImpact float64         `json:"priceImpact"` // Fraction of price moved by this trade
}

// parseRoute validates one raw quote and converts it into a SwapRoute.
// Malformed payloads are rejected here, at the collaborator boundary,
// so undefined fields never enter the pipeline.
func parseRoute(raw json.RawMessage) (*SwapRoute, error) {
	var quote quoteResponse
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("%w: malformed quote: %v", ErrGetRoutes, err)
	}

	outAmount, err := parseBaseUnits(quote.OutAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: bad outAmount %q", ErrGetRoutes, quote.OutAmount)
	}
	fee, err := parseBaseUnits(quote.OtherAmountThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: bad otherAmountThreshold %q", ErrGetRoutes, quote.OtherAmountThreshold)
	}

	priceImpact := 0.0
	if quote.PriceImpactPct != "" {
		priceImpact, err = strconv.ParseFloat(quote.PriceImpactPct, 64)
		if err != nil || math.IsNaN(priceImpact) || math.IsInf(priceImpact, 0) || priceImpact < 0 {
			return nil, fmt.Errorf("%w: bad priceImpactPct %q", ErrGetRoutes, quote.PriceImpactPct)
		}
	}

	return &SwapRoute{
		RouteInfo:   raw,
		OutAmount:   outAmount,
		Fee:         fee,
		PriceImpact: priceImpact,
	}, nil
}

// parseBaseUnits converts a non-negative base-unit decimal string into
// human units.
func parseBaseUnits(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("negative or non-finite amount")
	}
	return v / lamportsPerUnit, nil
}
