package orders

import (
	"testing"

	"github.com/samber/lo"

	"kvitka-bot/internal/stories/customers"
)

var testRules = LedgerRules{
	PointDivisor:       1000,
	TenthOrderDiscount: 1000,
	ReferralBonus:      200,
}

func TestCompletionAccruesAggregates(t *testing.T) {
	order := Order{ID: 1, TotalUAH: 7500}
	customer := customers.Customer{ID: 1, TotalOrders: 3, TotalSpent: 20000, LoyaltyPoints: 20}

	applied, events := ApplyStatusTransition(StatusShipped, StatusCompleted, order, customer, testRules)

	if applied.TotalOrders != 4 {
		t.Errorf("TotalOrders = %d, want 4", applied.TotalOrders)
	}
	if applied.TotalSpent != 27500 {
		t.Errorf("TotalSpent = %v, want 27500", applied.TotalSpent)
	}
	// floor(7500/1000) = 7, никогда не вверх
	if applied.LoyaltyPoints != 27 {
		t.Errorf("LoyaltyPoints = %d, want 27", applied.LoyaltyPoints)
	}
	if len(events) != 0 {
		t.Errorf("events = %+v, want none", events)
	}
}

func TestLoyaltyPointsTruncate(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		want  int
	}{
		{name: "just under", total: 999.99, want: 0},
		{name: "exact", total: 1000, want: 1},
		{name: "truncates", total: 1999.99, want: 1},
		{name: "large", total: 12345, want: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loyaltyPoints(tt.total, 1000); got != tt.want {
				t.Errorf("loyaltyPoints(%v) = %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}

func TestTenthOrderGrantsDiscount(t *testing.T) {
	order := Order{ID: 1, TotalUAH: 5000}
	customer := customers.Customer{ID: 1, TotalOrders: 9}

	applied, events := ApplyStatusTransition(StatusNew, StatusCompleted, order, customer, testRules)

	if applied.NextOrderDiscount != 1000 {
		t.Errorf("NextOrderDiscount = %v, want 1000", applied.NextOrderDiscount)
	}

	found := false
	for _, e := range events {
		if e.Type == EventTenthOrderDiscountGranted && e.Amount == 1000 {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %+v, want tenth order discount grant", events)
	}
}

func TestToggleCompletionNetsSingleDelta(t *testing.T) {
	order := Order{ID: 1, TotalUAH: 7500}
	customer := customers.Customer{ID: 1, TotalOrders: 3, TotalSpent: 20000, LoyaltyPoints: 20}

	// completed -> cancelled -> completed должно дать тот же итог,
	// что и единственное выполнение
	once, _ := ApplyStatusTransition(StatusNew, StatusCompleted, order, customer, testRules)

	toggled, _ := ApplyStatusTransition(StatusNew, StatusCompleted, order, customer, testRules)
	toggled, _ = ApplyStatusTransition(StatusCompleted, StatusCancelled, order, toggled, testRules)
	toggled, _ = ApplyStatusTransition(StatusCancelled, StatusCompleted, order, toggled, testRules)

	if toggled.TotalSpent != once.TotalSpent {
		t.Errorf("TotalSpent after toggle = %v, want %v", toggled.TotalSpent, once.TotalSpent)
	}
	if toggled.TotalOrders != once.TotalOrders {
		t.Errorf("TotalOrders after toggle = %d, want %d", toggled.TotalOrders, once.TotalOrders)
	}
	if toggled.LoyaltyPoints != once.LoyaltyPoints {
		t.Errorf("LoyaltyPoints after toggle = %d, want %d", toggled.LoyaltyPoints, once.LoyaltyPoints)
	}
}

func TestReversalClampsAtZero(t *testing.T) {
	order := Order{ID: 1, TotalUAH: 7500}
	customer := customers.Customer{ID: 1, TotalOrders: 0, TotalSpent: 100, LoyaltyPoints: 2}

	applied, _ := ApplyStatusTransition(StatusCompleted, StatusCancelled, order, customer, testRules)

	if applied.TotalSpent != 0 {
		t.Errorf("TotalSpent = %v, want clamped 0", applied.TotalSpent)
	}
	if applied.TotalOrders != 0 {
		t.Errorf("TotalOrders = %d, want clamped 0", applied.TotalOrders)
	}
	if applied.LoyaltyPoints != 0 {
		t.Errorf("LoyaltyPoints = %d, want clamped 0", applied.LoyaltyPoints)
	}
}

func TestReferralBonusPaidOnce(t *testing.T) {
	order := Order{ID: 1, TotalUAH: 5000}
	customer := customers.Customer{ID: 2, ReferredBy: lo.ToPtr[int64](1)}

	applied, events := ApplyStatusTransition(StatusNew, StatusCompleted, order, customer, testRules)

	var bonus *LedgerEvent
	for i, e := range events {
		if e.Type == EventReferralBonusDue {
			bonus = &events[i]
		}
	}
	if bonus == nil {
		t.Fatalf("events = %+v, want referral bonus", events)
	}
	if bonus.ReferrerID != 1 || bonus.Amount != 200 {
		t.Errorf("bonus = %+v, want referrer 1 amount 200", bonus)
	}
	if !applied.ReferralBonusAwarded {
		t.Error("ReferralBonusAwarded latch must be set")
	}

	// Осцилляция статуса не платит бонус второй раз
	applied, _ = ApplyStatusTransition(StatusCompleted, StatusCancelled, order, applied, testRules)
	if applied.ReferralBonusAwarded != true {
		t.Error("latch must survive reversal")
	}
	_, events = ApplyStatusTransition(StatusCancelled, StatusCompleted, order, applied, testRules)
	for _, e := range events {
		if e.Type == EventReferralBonusDue {
			t.Error("referral bonus must be paid at most once")
		}
	}
}

func TestReferralDeductionCommittedOnFirstCompletion(t *testing.T) {
	order := Order{ID: 1, TotalUAH: 4800, ReferralDiscountPending: 200}
	customer := customers.Customer{ID: 1, ReferralBalance: 350}

	applied, events := ApplyStatusTransition(StatusNew, StatusCompleted, order, customer, testRules)

	if applied.ReferralBalance != 150 {
		t.Errorf("ReferralBalance = %v, want 150", applied.ReferralBalance)
	}

	found := false
	for _, e := range events {
		if e.Type == EventReferralDeductionCommitted && e.Amount == 200 {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %+v, want deduction committed", events)
	}

	// После обнуления pending повторное completed ничего не списывает
	order.ReferralDiscountPending = 0
	applied, _ = ApplyStatusTransition(StatusCompleted, StatusCancelled, order, applied, testRules)
	applied, events = ApplyStatusTransition(StatusCancelled, StatusCompleted, order, applied, testRules)
	if applied.ReferralBalance != 150 {
		t.Errorf("ReferralBalance after churn = %v, want still 150", applied.ReferralBalance)
	}
	for _, e := range events {
		if e.Type == EventReferralDeductionCommitted {
			t.Error("deduction must not repeat on status churn")
		}
	}
}

func TestDiscountGrantNotReversed(t *testing.T) {
	order := Order{ID: 1, TotalUAH: 5000}
	customer := customers.Customer{ID: 1, TotalOrders: 9}

	applied, _ := ApplyStatusTransition(StatusNew, StatusCompleted, order, customer, testRules)
	applied, _ = ApplyStatusTransition(StatusCompleted, StatusCancelled, order, applied, testRules)

	if applied.NextOrderDiscount != 1000 {
		t.Errorf("NextOrderDiscount = %v, want 1000 (grant is one-way)", applied.NextOrderDiscount)
	}
}

func TestNonCompletedTransitionsAreNeutral(t *testing.T) {
	order := Order{ID: 1, TotalUAH: 5000}
	customer := customers.Customer{ID: 1, TotalOrders: 2, TotalSpent: 9000, LoyaltyPoints: 9}

	applied, events := ApplyStatusTransition(StatusNew, StatusShipped, order, customer, testRules)

	if applied != customer {
		t.Errorf("customer mutated on neutral transition: %+v", applied)
	}
	if len(events) != 0 {
		t.Errorf("events = %+v, want none", events)
	}
}
