package customers

import "context"

type (
	Storage interface {
		CreateCustomer(ctx context.Context, customer Customer) (*Customer, error)
		GetCustomer(ctx context.Context, criteria GetCriteria) (*Customer, error)
		UpdateCustomer(ctx context.Context, criteria GetCriteria, params UpdateParams) (*Customer, error)
		ListCustomers(ctx context.Context, criteria ListCriteria) ([]*Customer, error)
	}
)
