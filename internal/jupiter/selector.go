package jupiter

import "math"

// outAmountEpsilon is the output-unit difference below which two routes
// are considered tied on output and price impact decides.
const outAmountEpsilon = 0.01

// SelectBestRoute picks one route from candidates. Higher output amount
// wins outright; near-ties (difference under outAmountEpsilon) go to the
// route with lower price impact. Returns nil on empty input, which
// callers treat as "no executable route", not an error.
func SelectBestRoute(routes []SwapRoute) *SwapRoute {
	if len(routes) == 0 {
		return nil
	}

	best := &routes[0]
	for i := 1; i < len(routes); i++ {
		candidate := &routes[i]
		diff := candidate.OutAmount - best.OutAmount

		if math.Abs(diff) < outAmountEpsilon {
			if candidate.PriceImpact < best.PriceImpact {
				best = candidate
			}
			continue
		}
		if diff > 0 {
			best = candidate
		}
	}
	return best
}
