package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"kvitka-bot/internal/stories/catalog"
)

const productsTable = "products"

var productRowFields = fields(productRow{})

type productRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	CatalogType string `db:"catalog_type"`
	Category    string `db:"category"`

	PriceUSD     float64 `db:"price_usd"`
	PriceUAH     float64 `db:"price_uah"`
	HeightPrices string  `db:"height_prices"`

	IsPromo      bool         `db:"is_promo"`
	PromoPercent float64      `db:"promo_percent"`
	PromoEndDate sql.NullTime `db:"promo_end_date"`

	FlowerClass string `db:"flower_class"`
	Height      string `db:"height"`
	Color       string `db:"color"`

	TypeID       sql.NullInt64 `db:"type_id"`
	CountryID    sql.NullInt64 `db:"country_id"`
	PlantationID sql.NullInt64 `db:"plantation_id"`

	ImageURL string `db:"image_url"`
	IsActive bool   `db:"is_active"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (p productRow) ToModel() catalog.Product {
	product := catalog.Product{
		ID:          p.ID,
		Name:        p.Name,
		CatalogType: catalog.CatalogType(p.CatalogType),
		Category:    catalog.Category(p.Category),

		PriceUSD:     p.PriceUSD,
		PriceUAH:     p.PriceUAH,
		HeightPrices: p.HeightPrices,

		IsPromo:      p.IsPromo,
		PromoPercent: p.PromoPercent,

		FlowerClass: p.FlowerClass,
		Height:      p.Height,
		Color:       p.Color,

		ImageURL: p.ImageURL,
		IsActive: p.IsActive,

		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if p.PromoEndDate.Valid {
		product.PromoEndDate = &p.PromoEndDate.Time
	}
	if p.TypeID.Valid {
		product.TypeID = &p.TypeID.Int64
	}
	if p.CountryID.Valid {
		product.CountryID = &p.CountryID.Int64
	}
	if p.PlantationID.Valid {
		product.PlantationID = &p.PlantationID.Int64
	}

	return product
}

func (s *storageImpl) ListProducts(ctx context.Context, criteria catalog.ProductListCriteria) ([]catalog.Product, error) {
	query := s.stmtBuilder().
		Select(productRowFields).
		From(productsTable)

	if criteria.ActiveOnly {
		query = query.Where(sq.Eq{"is_active": true})
	}

	query = query.OrderBy("name ASC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []productRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []catalog.Product
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}
