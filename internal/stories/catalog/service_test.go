package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
)

type storageStub struct {
	products    []Product
	countries   []Country
	plantations []Plantation
	types       []FlowerType
	listCalls   int
}

func (s *storageStub) ListProducts(context.Context, ProductListCriteria) ([]Product, error) {
	s.listCalls++
	return s.products, nil
}

func (s *storageStub) ListCountries(context.Context) ([]Country, error) {
	return s.countries, nil
}

func (s *storageStub) ListPlantations(context.Context) ([]Plantation, error) {
	return s.plantations, nil
}

func (s *storageStub) ListFlowerTypes(context.Context) ([]FlowerType, error) {
	return s.types, nil
}

func testStorage() *storageStub {
	return &storageStub{
		countries: []Country{
			{ID: 1, Name: "Еквадор"},
			{ID: 2, Name: "Кенія"},
			{ID: 3, Name: "Нідерланди"},
		},
		plantations: []Plantation{
			{ID: 10, Name: "Rosaprima", CountryID: 1},
			{ID: 11, Name: "Freedom", CountryID: 1},
			{ID: 12, Name: "Oserian", CountryID: 2},
		},
		types: []FlowerType{
			{ID: 100, Name: "Троянда"},
			{ID: 101, Name: "Гвоздика"},
		},
		products: []Product{
			{
				ID: 1, Name: "Freedom Red", CatalogType: CatalogTypePreorder, Category: CategoryFlower,
				CountryID: lo.ToPtr[int64](1), PlantationID: lo.ToPtr[int64](10), TypeID: lo.ToPtr[int64](100),
				Height: "50, 60", Color: "red", FlowerClass: "premium", PriceUSD: 0.85,
			},
			{
				ID: 2, Name: "Mondial", CatalogType: CatalogTypePreorder, Category: CategoryFlower,
				CountryID: lo.ToPtr[int64](1), PlantationID: lo.ToPtr[int64](11), TypeID: lo.ToPtr[int64](100),
				Height: "60, 70", Color: "white", FlowerClass: "premium", PriceUSD: 0.95,
			},
			{
				ID: 3, Name: "Стоковая троянда", CatalogType: CatalogTypeInstock, Category: CategoryFlower,
				CountryID: lo.ToPtr[int64](3), TypeID: lo.ToPtr[int64](100),
				Height: "50", Color: "pink", PriceUAH: 45,
			},
			{
				ID: 4, Name: "Крафт-папір", CatalogType: CatalogTypeInstock, Category: CategoryPackaging,
				PriceUAH: 25,
			},
		},
	}
}

func TestCountriesDerivedPerCatalogType(t *testing.T) {
	svc := NewService(testStorage(), time.Minute)
	ctx := context.Background()

	preorder, err := svc.Countries(ctx, CatalogTypePreorder)
	if err != nil {
		t.Fatalf("Countries() error = %v", err)
	}
	if len(preorder) != 1 || preorder[0].ID != 1 {
		t.Errorf("Countries(preorder) = %+v, want only Еквадор", preorder)
	}

	instock, err := svc.Countries(ctx, CatalogTypeInstock)
	if err != nil {
		t.Fatalf("Countries() error = %v", err)
	}
	if len(instock) != 1 || instock[0].ID != 3 {
		t.Errorf("Countries(instock) = %+v, want only Нідерланди", instock)
	}
	// Кенія без товаров не предлагается никогда
	for _, c := range append(preorder, instock...) {
		if c.ID == 2 {
			t.Error("country with no products must not be offered")
		}
	}
}

func TestFarmsOnlyNonEmpty(t *testing.T) {
	svc := NewService(testStorage(), time.Minute)

	farms, err := svc.Farms(context.Background(), CatalogTypePreorder, 1)
	if err != nil {
		t.Fatalf("Farms() error = %v", err)
	}
	if len(farms) != 2 {
		t.Fatalf("Farms() = %+v, want Rosaprima and Freedom", farms)
	}
	for _, f := range farms {
		if f.ID == 12 {
			t.Error("farm from another country must not be offered")
		}
	}
}

func TestCandidatesByCursor(t *testing.T) {
	svc := NewService(testStorage(), time.Minute)

	got, err := svc.Candidates(context.Background(), Cursor{
		CatalogType: CatalogTypePreorder,
		CountryID:   lo.ToPtr[int64](1),
		TypeID:      lo.ToPtr[int64](100),
	}, Filters{})
	if err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Candidates() = %d products, want 2", len(got))
	}

	// instock: плантация не участвует в курсоре
	got, err = svc.Candidates(context.Background(), Cursor{
		CatalogType: CatalogTypeInstock,
		CountryID:   lo.ToPtr[int64](3),
		TypeID:      lo.ToPtr[int64](100),
	}, Filters{})
	if err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("Candidates(instock) = %+v, want product 3", got)
	}
}

func TestProductNotFound(t *testing.T) {
	svc := NewService(testStorage(), time.Minute)

	_, err := svc.Product(context.Background(), 999)
	if err != ErrProductNotFound {
		t.Fatalf("Product(999) error = %v, want ErrProductNotFound", err)
	}
}

func TestPackagingProductsByCategory(t *testing.T) {
	svc := NewService(testStorage(), time.Minute)

	got, err := svc.PackagingProducts(context.Background())
	if err != nil {
		t.Fatalf("PackagingProducts() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 4 {
		t.Fatalf("PackagingProducts() = %+v, want product 4", got)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	svc := NewService(testStorage(), time.Minute)

	got, err := svc.Search(context.Background(), "mondial")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("Search(mondial) = %+v, want product 2", got)
	}
}

func TestCacheAvoidsRefetchWithinTTL(t *testing.T) {
	stub := testStorage()
	svc := NewService(stub, time.Minute)
	ctx := context.Background()

	if _, err := svc.Countries(ctx, CatalogTypePreorder); err != nil {
		t.Fatalf("Countries() error = %v", err)
	}
	if _, err := svc.Search(ctx, "rose"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if stub.listCalls != 1 {
		t.Errorf("storage hit %d times within TTL, want 1", stub.listCalls)
	}
}
