package customers

import "time"

// CustomerType определяет право на оптовую скидку.
type CustomerType string

const (
	TypeFlowerShop CustomerType = "flower_shop"
	TypeWholesale  CustomerType = "wholesale"
)

type Customer struct {
	ID         int64
	TelegramID int64

	Name     string
	Phone    string
	Address  string
	City     string
	Language string

	CustomerType CustomerType

	TotalOrders   int
	TotalSpent    float64
	LoyaltyPoints int

	// Одноразовая скидка за каждый 10-й выполненный заказ
	NextOrderDiscount float64

	ReferralCode    string
	ReferralBalance float64
	ReferralCount   int
	ReferredBy      *int64
	// Одноразовая защёлка: бонус рефереру платится не больше одного раза
	ReferralBonusAwarded bool

	IsBlocked bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type GetCriteria struct {
	ID           *int64
	TelegramID   *int64
	ReferralCode *string
}

type ListCriteria struct {
	NotBlocked bool
	Limit      int
	Offset     int
}

type UpdateParams struct {
	Name         *string
	Phone        *string
	Address      *string
	City         *string
	Language     *string
	CustomerType *CustomerType

	TotalOrders       *int
	TotalSpent        *float64
	LoyaltyPoints     *int
	NextOrderDiscount *float64

	ReferralBalance      *float64
	ReferralCount        *int
	ReferredBy           *int64
	ReferralBonusAwarded *bool

	IsBlocked *bool
}
