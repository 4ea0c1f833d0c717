package catalog

import "context"

type (
	Storage interface {
		ListProducts(ctx context.Context, criteria ProductListCriteria) ([]Product, error)
		ListCountries(ctx context.Context) ([]Country, error)
		ListPlantations(ctx context.Context) ([]Plantation, error)
		ListFlowerTypes(ctx context.Context) ([]FlowerType, error)
	}
)

// ProductListCriteria - критерии выборки товаров из хранилища.
type ProductListCriteria struct {
	ActiveOnly bool
}
