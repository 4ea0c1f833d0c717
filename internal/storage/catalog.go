package storage

import (
	"context"
	"fmt"

	"kvitka-bot/internal/stories/catalog"
)

const (
	countriesTable   = "countries"
	plantationsTable = "plantations"
	flowerTypesTable = "flower_types"
)

type countryRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type plantationRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	CountryID int64  `db:"country_id"`
}

type flowerTypeRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func (s *storageImpl) ListCountries(ctx context.Context) ([]catalog.Country, error) {
	q, args, err := s.stmtBuilder().
		Select(fields(countryRow{})).
		From(countriesTable).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []countryRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []catalog.Country
	for _, row := range rows {
		result = append(result, catalog.Country{ID: row.ID, Name: row.Name})
	}

	return result, nil
}

func (s *storageImpl) ListPlantations(ctx context.Context) ([]catalog.Plantation, error) {
	q, args, err := s.stmtBuilder().
		Select(fields(plantationRow{})).
		From(plantationsTable).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []plantationRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []catalog.Plantation
	for _, row := range rows {
		result = append(result, catalog.Plantation{ID: row.ID, Name: row.Name, CountryID: row.CountryID})
	}

	return result, nil
}

func (s *storageImpl) ListFlowerTypes(ctx context.Context) ([]catalog.FlowerType, error) {
	q, args, err := s.stmtBuilder().
		Select(fields(flowerTypeRow{})).
		From(flowerTypesTable).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []flowerTypeRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []catalog.FlowerType
	for _, row := range rows {
		result = append(result, catalog.FlowerType{ID: row.ID, Name: row.Name})
	}

	return result, nil
}
