package orders

import (
	"errors"
	"time"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusConfirmed  Status = "confirmed"
	StatusAssembling Status = "assembling"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// KnownStatuses в порядке обычного жизненного цикла заказа.
var KnownStatuses = []Status{
	StatusNew, StatusConfirmed, StatusAssembling,
	StatusShipped, StatusCompleted, StatusCancelled,
}

func (s Status) Valid() bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ErrDuplicateOrderNumber - коллизия номера заказа, вставка повторяется с новым номером.
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// ErrOrderNotFound возвращается при смене статуса несуществующего заказа.
var ErrOrderNotFound = errors.New("order not found")

type Order struct {
	ID          int64
	OrderNumber string
	CustomerID  int64
	Status      Status

	TotalUAH float64
	Comment  string

	// Реферальная скидка применена при оформлении, но баланс списывается
	// только при первом переходе заказа в completed.
	ReferralDiscountPending float64

	Items []Item

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item - строка заказа с замороженной на момент оформления ценой.
// Цены после коммита никогда не пересчитываются.
type Item struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Height      string
	Quantity    int
	PriceUAH    float64
	TotalUAH    float64
}

type GetCriteria struct {
	ID          *int64
	OrderNumber *string
}

type ListCriteria struct {
	CustomerID *int64
	Limit      int
}

type UpdateParams struct {
	Status                  *Status
	ReferralDiscountPending *float64
}
