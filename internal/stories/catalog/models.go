package catalog

import "time"

type CatalogType string

const (
	CatalogTypePreorder CatalogType = "preorder"
	CatalogTypeInstock  CatalogType = "instock"
)

// Category - явный признак категории товара вместо эвристик по названию
type Category string

const (
	CategoryFlower    Category = "flower"
	CategoryPackaging Category = "packaging"
	CategoryOther     Category = "other"
)

type Product struct {
	ID          int64
	Name        string
	CatalogType CatalogType
	Category    Category

	// База цены: либо таблица цен по ростовкам, либо USD (preorder), либо UAH (instock)
	PriceUSD     float64
	PriceUAH     float64
	HeightPrices string // "60:1.20, 70:2.20" - ростовка -> цена в USD

	IsPromo      bool
	PromoPercent float64
	PromoEndDate *time.Time

	FlowerClass string
	Height      string // может быть списком: "40, 50, 60"
	Color       string // может быть списком: "red, white"

	TypeID       *int64
	CountryID    *int64
	PlantationID *int64 // у instock товаров плантации нет

	ImageURL string
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasHeightTable сообщает, что цена товара задана таблицей по ростовкам.
func (p Product) HasHeightTable() bool {
	return p.HeightPrices != ""
}

// PromoActive проверяет что акция действует на момент now.
func (p Product) PromoActive(now time.Time) bool {
	if !p.IsPromo || p.PromoPercent <= 0 {
		return false
	}
	if p.PromoEndDate != nil && p.PromoEndDate.Before(now) {
		return false
	}
	return true
}

type Country struct {
	ID   int64
	Name string
}

type Plantation struct {
	ID        int64
	Name      string
	CountryID int64
}

type FlowerType struct {
	ID   int64
	Name string
}

// Cursor - пройденный путь по каталогу, нужен для "назад" и пересчёта фильтров.
type Cursor struct {
	CatalogType  CatalogType
	CountryID    *int64
	PlantationID *int64
	TypeID       *int64
}

// Filters - выбранные значения фасетов.
type Filters struct {
	FlowerClass string
	Height      string
	Color       string
}

func (f Filters) Empty() bool {
	return f.FlowerClass == "" && f.Height == "" && f.Color == ""
}

// Facet - фильтруемый атрибут с вариантами значений.
type Facet struct {
	Name   FacetName
	Values []string
}

type FacetName string

const (
	FacetFlowerClass FacetName = "class"
	FacetHeight      FacetName = "height"
	FacetColor       FacetName = "color"
)
