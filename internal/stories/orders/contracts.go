package orders

import (
	"context"

	"kvitka-bot/internal/stories/customers"
)

type (
	Storage interface {
		// CreateOrder пишет заказ вместе со строками одной транзакцией.
		CreateOrder(ctx context.Context, order Order) (*Order, error)
		GetOrder(ctx context.Context, criteria GetCriteria) (*Order, error)
		ListOrders(ctx context.Context, criteria ListCriteria) ([]*Order, error)
		UpdateOrder(ctx context.Context, criteria GetCriteria, params UpdateParams) (*Order, error)
	}

	CustomerStorage interface {
		GetCustomer(ctx context.Context, criteria customers.GetCriteria) (*customers.Customer, error)
		UpdateCustomer(ctx context.Context, criteria customers.GetCriteria, params customers.UpdateParams) (*customers.Customer, error)
	}
)
