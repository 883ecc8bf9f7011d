package poolclient

import (
	"testing"

	"poolpulse/internal/model"
)

func TestAvgPrice(t *testing.T) {
	got, err := AvgPrice("200", "100")
	if err != nil {
		t.Fatalf("AvgPrice: %v", err)
	}
	if got != "150" {
		t.Fatalf("avg = %s, want 150", got)
	}
}

func TestAvgPriceEmptyInputs(t *testing.T) {
	got, err := AvgPrice("", "")
	if err != nil {
		t.Fatalf("AvgPrice: %v", err)
	}
	if got != "0" {
		t.Fatalf("avg = %s, want 0", got)
	}
}

func TestAvgPriceInvalid(t *testing.T) {
	if _, err := AvgPrice("abc", "100"); err == nil {
		t.Fatal("expected error for non-decimal input")
	}
}

func TestTotalLiquidity(t *testing.T) {
	// 1e18 tokens in minor units at a mid price of 1e18 wei per whole
	// token values the token leg at 1e18 wei; plus 2e18 wei in reserve.
	got, err := TotalLiquidity(
		"1000000000000000000",
		"1000000000000000000",
		"2000000000000000000",
	)
	if err != nil {
		t.Fatalf("TotalLiquidity: %v", err)
	}
	if got != "3000000000000000000" {
		t.Fatalf("liquidity = %s, want 3000000000000000000", got)
	}
}

func TestTotalLiquidityEmptyPool(t *testing.T) {
	got, err := TotalLiquidity("0", "0", "0")
	if err != nil {
		t.Fatalf("TotalLiquidity: %v", err)
	}
	if got != "0" {
		t.Fatalf("liquidity = %s, want 0", got)
	}
}

func TestYield(t *testing.T) {
	events := []model.PoolFeesEvent{
		{Amount: "5", Timestamp: 1000000},
		{Amount: "5", Timestamp: 1000000 + secondsPerDay},
	}

	got, err := Yield(events, "1000")
	if err != nil {
		t.Fatalf("Yield: %v", err)
	}
	// 10 fee units over one day against 1000 liquidity.
	if got != "0.010000000000000000" {
		t.Fatalf("yield = %s, want 0.010000000000000000", got)
	}
}

func TestYieldGuards(t *testing.T) {
	cases := []struct {
		name      string
		events    []model.PoolFeesEvent
		liquidity string
	}{
		{name: "no events", events: nil, liquidity: "1000"},
		{
			name:      "single event",
			events:    []model.PoolFeesEvent{{Amount: "5", Timestamp: 1000}},
			liquidity: "1000",
		},
		{
			name: "zero liquidity",
			events: []model.PoolFeesEvent{
				{Amount: "5", Timestamp: 1000},
				{Amount: "5", Timestamp: 2000},
			},
			liquidity: "0",
		},
		{
			name: "zero time span",
			events: []model.PoolFeesEvent{
				{Amount: "5", Timestamp: 1000},
				{Amount: "5", Timestamp: 1000},
			},
			liquidity: "1000",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Yield(tc.events, tc.liquidity)
			if err != nil {
				t.Fatalf("Yield: %v", err)
			}
			if got != "0" {
				t.Fatalf("yield = %s, want 0", got)
			}
		})
	}
}

func TestYieldUnorderedEvents(t *testing.T) {
	// The window spans min..max timestamps regardless of event order.
	events := []model.PoolFeesEvent{
		{Amount: "5", Timestamp: 1000000 + secondsPerDay},
		{Amount: "5", Timestamp: 1000000},
	}

	got, err := Yield(events, "1000")
	if err != nil {
		t.Fatalf("Yield: %v", err)
	}
	if got != "0.010000000000000000" {
		t.Fatalf("yield = %s, want 0.010000000000000000", got)
	}
}

func TestAPR(t *testing.T) {
	got, err := APR("0.01")
	if err != nil {
		t.Fatalf("APR: %v", err)
	}
	if got != "365.000000000000000000" {
		t.Fatalf("apr = %s, want 365.000000000000000000", got)
	}
}

func TestAPRZero(t *testing.T) {
	got, err := APR("0")
	if err != nil {
		t.Fatalf("APR: %v", err)
	}
	if got != "0.000000000000000000" {
		t.Fatalf("apr = %s, want 0.000000000000000000", got)
	}
}

func TestAPRInvalid(t *testing.T) {
	if _, err := APR("not-a-rate"); err == nil {
		t.Fatal("expected error for malformed yield")
	}
}
