package carts

import (
	"context"
	"testing"

	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/stories/pricing"
)

func TestAddAccumulatesSameKey(t *testing.T) {
	var cart Cart

	cart.Add(LineKey{ProductID: 1, Height: "60"}, 10)
	cart.Add(LineKey{ProductID: 1, Height: "60"}, 15)

	if len(cart.Lines) != 1 {
		t.Fatalf("lines = %d, want 1 (same key accumulates)", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 25 {
		t.Errorf("quantity = %d, want 25", cart.Lines[0].Quantity)
	}
}

func TestAddDifferentHeightsAreSeparateLines(t *testing.T) {
	var cart Cart

	cart.Add(LineKey{ProductID: 1, Height: "60"}, 10)
	cart.Add(LineKey{ProductID: 1, Height: "70"}, 10)
	cart.Add(LineKey{ProductID: 1}, 5)

	if len(cart.Lines) != 3 {
		t.Fatalf("lines = %d, want 3 independent lines", len(cart.Lines))
	}
}

func TestAddRejectsNonPositive(t *testing.T) {
	var cart Cart

	cart.Add(LineKey{ProductID: 1}, 0)
	cart.Add(LineKey{ProductID: 1}, -5)

	if !cart.IsEmpty() {
		t.Error("non-positive quantities must not create lines")
	}
}

func TestRemoveAndClear(t *testing.T) {
	var cart Cart
	cart.Add(LineKey{ProductID: 1}, 5)
	cart.Add(LineKey{ProductID: 2}, 5)

	cart.Remove(LineKey{ProductID: 1})
	if len(cart.Lines) != 1 || cart.Lines[0].Key.ProductID != 2 {
		t.Fatalf("after Remove lines = %+v, want only product 2", cart.Lines)
	}

	cart.Clear()
	if !cart.IsEmpty() {
		t.Error("Clear() must empty the cart")
	}
}

func TestLineKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  LineKey
		want string
	}{
		{name: "bare product", key: LineKey{ProductID: 42}, want: "42"},
		{name: "with height", key: LineKey{ProductID: 42, Height: "60"}, want: "42_h60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

type productStub map[int64]catalog.Product

func (s productStub) Product(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := s[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

type fixedRate float64

func (r fixedRate) Rate() float64 { return float64(r) }

func TestPriceCartScenario(t *testing.T) {
	// 25 x (0.85 USD по курсу 41.5) = 25 * 35.28 = 882.00
	products := productStub{1: {ID: 1, Name: "Freedom", PriceUSD: 0.85}}
	pricer := pricing.NewService(fixedRate(41.5), 5)

	var cart Cart
	cart.Add(LineKey{ProductID: 1}, 25)

	priced, err := PriceCart(context.Background(), &cart, products, pricer, false)
	if err != nil {
		t.Fatalf("PriceCart() error = %v", err)
	}

	if priced.Lines[0].UnitPrice != 35.28 {
		t.Errorf("unit price = %v, want 35.28", priced.Lines[0].UnitPrice)
	}
	if priced.Total != 882.00 {
		t.Errorf("total = %v, want 882.00", priced.Total)
	}
}

func TestPriceCartWholesaleScenario(t *testing.T) {
	products := productStub{1: {ID: 1, Name: "Freedom", PriceUSD: 0.85}}
	pricer := pricing.NewService(fixedRate(41.5), 5)

	var cart Cart
	cart.Add(LineKey{ProductID: 1}, 25)

	priced, err := PriceCart(context.Background(), &cart, products, pricer, true)
	if err != nil {
		t.Fatalf("PriceCart() error = %v", err)
	}

	// round(35.275 * 0.95, 2) = 33.51
	if priced.Lines[0].UnitPrice != 33.51 {
		t.Errorf("wholesale unit price = %v, want 33.51", priced.Lines[0].UnitPrice)
	}
}

func TestPriceCartSkipsMissingProducts(t *testing.T) {
	products := productStub{1: {ID: 1, PriceUAH: 100}}
	pricer := pricing.NewService(fixedRate(41.5), 5)

	var cart Cart
	cart.Add(LineKey{ProductID: 1}, 2)
	cart.Add(LineKey{ProductID: 999}, 3)

	priced, err := PriceCart(context.Background(), &cart, products, pricer, false)
	if err != nil {
		t.Fatalf("PriceCart() error = %v", err)
	}

	if priced.Total != 200 {
		t.Errorf("total = %v, want 200 (missing line excluded)", priced.Total)
	}
	if len(priced.Missing) != 1 || priced.Missing[0].ProductID != 999 {
		t.Errorf("missing = %+v, want product 999", priced.Missing)
	}
}

func TestPriceCartHeightAware(t *testing.T) {
	products := productStub{1: {ID: 1, HeightPrices: "60:1.00, 70:2.00"}}
	pricer := pricing.NewService(fixedRate(40), 5)

	var cart Cart
	cart.Add(LineKey{ProductID: 1, Height: "60"}, 1)
	cart.Add(LineKey{ProductID: 1, Height: "70"}, 1)

	priced, err := PriceCart(context.Background(), &cart, products, pricer, false)
	if err != nil {
		t.Fatalf("PriceCart() error = %v", err)
	}

	if priced.Lines[0].UnitPrice != 40 || priced.Lines[1].UnitPrice != 80 {
		t.Errorf("unit prices = %v, %v; want 40, 80", priced.Lines[0].UnitPrice, priced.Lines[1].UnitPrice)
	}
	if priced.Total != 120 {
		t.Errorf("total = %v, want 120", priced.Total)
	}
}
