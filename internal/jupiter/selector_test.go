package jupiter

import "testing"

func route(outAmount, priceImpact float64) SwapRoute {
	return SwapRoute{OutAmount: outAmount, PriceImpact: priceImpact}
}

func TestSelectBestRouteEmpty(t *testing.T) {
	if best := SelectBestRoute(nil); best != nil {
		t.Errorf("expected nil for no routes, got %+v", best)
	}
	if best := SelectBestRoute([]SwapRoute{}); best != nil {
		t.Errorf("expected nil for empty routes, got %+v", best)
	}
}

func TestSelectBestRouteHigherOutput(t *testing.T) {
	routes := []SwapRoute{
		route(1.0, 0.001),
		route(1.5, 0.02),
		route(1.2, 0.0001),
	}

	best := SelectBestRoute(routes)
	if best == nil {
		t.Fatal("expected a route")
	}
	if best.OutAmount != 1.5 {
		t.Errorf("expected route with out amount 1.5, got %v", best.OutAmount)
	}
}

func TestSelectBestRouteNearTiePrefersLowerImpact(t *testing.T) {
	// Within the 0.01 epsilon the lower price impact wins even though its
	// output is marginally smaller.
	routes := []SwapRoute{
		route(1.005, 0.03),
		route(1.0, 0.001),
	}

	best := SelectBestRoute(routes)
	if best.PriceImpact != 0.001 {
		t.Errorf("expected low-impact route, got impact %v", best.PriceImpact)
	}
}

func TestSelectBestRouteDeterministic(t *testing.T) {
	routes := []SwapRoute{
		route(2.0, 0.01),
		route(2.004, 0.01),
		route(1.998, 0.01),
	}

	first := SelectBestRoute(routes)
	for i := 0; i < 10; i++ {
		if got := SelectBestRoute(routes); got.OutAmount != first.OutAmount {
			t.Fatalf("selection not deterministic: %v vs %v", got.OutAmount, first.OutAmount)
		}
	}
}

func TestSelectBestRouteSingle(t *testing.T) {
	routes := []SwapRoute{route(0.5, 0.1)}
	best := SelectBestRoute(routes)
	if best == nil || best.OutAmount != 0.5 {
		t.Errorf("expected the only route back, got %+v", best)
	}
}
