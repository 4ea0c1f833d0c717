package orders

import (
	"math"

	"kvitka-bot/internal/stories/customers"
)

// LedgerRules - параметры начислений из конфигурации магазина.
type LedgerRules struct {
	PointDivisor       float64 // 1 балл за каждые N гривен
	TenthOrderDiscount float64 // фиксированная скидка за каждый 10-й заказ
	ReferralBonus      float64 // бонус рефереру за первый выполненный заказ приведённого
}

type LedgerEventType string

const (
	// EventReferralBonusDue - начислить бонус рефереру (платится максимум один раз
	// на приведённого покупателя, независимо от дальнейших скачков статуса).
	EventReferralBonusDue LedgerEventType = "referral_bonus_due"

	// EventReferralDeductionCommitted - реферальный баланс списан за применённую
	// при оформлении скидку; pending на заказе нужно обнулить, чтобы списание
	// не повторилось при следующих переходах в completed.
	EventReferralDeductionCommitted LedgerEventType = "referral_deduction_committed"

	// EventTenthOrderDiscountGranted - выдана скидка на следующий заказ.
	EventTenthOrderDiscountGranted LedgerEventType = "tenth_order_discount_granted"
)

type LedgerEvent struct {
	Type       LedgerEventType
	Amount     float64
	ReferrerID int64 // заполнен для EventReferralBonusDue
}

// ApplyStatusTransition - чистая функция бухгалтерии статусных переходов.
// Возвращает обновлённого покупателя и события, которые сервис должен
// применить к внешним записям (баланс реферера, pending на заказе).
//
// Односторонние рёбра: выдача скидки за 10-й заказ и реферальный бонус
// при обратном переходе из completed не откатываются - они считаются
// уже использованными.
func ApplyStatusTransition(from, to Status, order Order, customer customers.Customer, rules LedgerRules) (customers.Customer, []LedgerEvent) {
	var events []LedgerEvent

	wasCompleted := from == StatusCompleted
	isCompleted := to == StatusCompleted

	switch {
	case !wasCompleted && isCompleted:
		customer.TotalSpent += order.TotalUAH
		customer.TotalOrders++
		customer.LoyaltyPoints += loyaltyPoints(order.TotalUAH, rules.PointDivisor)

		if customer.TotalOrders%10 == 0 {
			customer.NextOrderDiscount = rules.TenthOrderDiscount
			events = append(events, LedgerEvent{
				Type:   EventTenthOrderDiscountGranted,
				Amount: rules.TenthOrderDiscount,
			})
		}

		if customer.ReferredBy != nil && !customer.ReferralBonusAwarded {
			customer.ReferralBonusAwarded = true
			events = append(events, LedgerEvent{
				Type:       EventReferralBonusDue,
				Amount:     rules.ReferralBonus,
				ReferrerID: *customer.ReferredBy,
			})
		}

		if order.ReferralDiscountPending > 0 {
			customer.ReferralBalance = math.Max(0, customer.ReferralBalance-order.ReferralDiscountPending)
			events = append(events, LedgerEvent{
				Type:   EventReferralDeductionCommitted,
				Amount: order.ReferralDiscountPending,
			})
		}

	case wasCompleted && !isCompleted:
		customer.TotalSpent = math.Max(0, customer.TotalSpent-order.TotalUAH)
		if customer.TotalOrders > 0 {
			customer.TotalOrders--
		}
		customer.LoyaltyPoints -= loyaltyPoints(order.TotalUAH, rules.PointDivisor)
		if customer.LoyaltyPoints < 0 {
			customer.LoyaltyPoints = 0
		}
	}

	return customer, events
}

// loyaltyPoints - 1 балл за каждые divisor гривен, всегда с усечением вниз.
func loyaltyPoints(total, divisor float64) int {
	if divisor <= 0 {
		return 0
	}
	return int(math.Floor(total / divisor))
}
