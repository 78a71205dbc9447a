package jupiter

import "context"

// SwapClient is the route discovery and execution surface consumed by the
// trade orchestrator. Implemented by Client; tests substitute mocks.
type SwapClient interface {
	Init(ctx context.Context) error
	GetRoutes(ctx context.Context, inputMint, outputMint string, amount, slippage float64) ([]SwapRoute, error)
	ExecuteSwap(ctx context.Context, route *SwapRoute) (string, error)
	ResolveMint(symbol string) string
}
