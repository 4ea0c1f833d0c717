package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ErrProductNotFound - товар пропал из каталога (удалён или скрыт в админке).
var ErrProductNotFound = errors.New("product not found")

// Service - навигатор по каталогу. Все списки стран/плантаций/сортов
// выводятся из набора товаров: пустые ветки никогда не предлагаются.
type Service struct {
	cache *productCache
}

func NewService(storage Storage, cacheTTL time.Duration) *Service {
	return &Service{cache: newProductCache(storage, cacheTTL)}
}

// Countries возвращает страны, у которых есть хотя бы один товар данного типа каталога.
func (s *Service) Countries(ctx context.Context, ct CatalogType) ([]Country, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var result []Country
	for _, p := range snap.products {
		if p.CatalogType != ct || p.CountryID == nil || seen[*p.CountryID] {
			continue
		}
		country, ok := snap.countries[*p.CountryID]
		if !ok {
			continue
		}
		seen[*p.CountryID] = true
		result = append(result, country)
	}

	return sortByName(result, func(c Country) string { return c.Name }), nil
}

// Farms возвращает плантации страны с товарами данного типа каталога.
// Для instock не вызывается - у instock товаров плантаций нет.
func (s *Service) Farms(ctx context.Context, ct CatalogType, countryID int64) ([]Plantation, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var result []Plantation
	for _, p := range snap.products {
		if p.CatalogType != ct || p.CountryID == nil || *p.CountryID != countryID {
			continue
		}
		if p.PlantationID == nil || seen[*p.PlantationID] {
			continue
		}
		plantation, ok := snap.plantations[*p.PlantationID]
		if !ok {
			continue
		}
		seen[*p.PlantationID] = true
		result = append(result, plantation)
	}

	return sortByName(result, func(pl Plantation) string { return pl.Name }), nil
}

// FlowerTypes возвращает сорта, доступные на текущем шаге навигации.
func (s *Service) FlowerTypes(ctx context.Context, cursor Cursor) ([]FlowerType, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var result []FlowerType
	for _, p := range snap.products {
		if !matchesCursor(p, cursor) || p.TypeID == nil || seen[*p.TypeID] {
			continue
		}
		ft, ok := snap.types[*p.TypeID]
		if !ok {
			continue
		}
		seen[*p.TypeID] = true
		result = append(result, ft)
	}

	return sortByName(result, func(ft FlowerType) string { return ft.Name }), nil
}

// Candidates - товары, сужённые курсором навигации и применёнными фильтрами.
func (s *Service) Candidates(ctx context.Context, cursor Cursor, filters Filters) ([]Product, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	matched := lo.Filter(snap.products, func(p Product, _ int) bool {
		return matchesCursor(p, cursor)
	})

	return ApplyFilters(matched, filters), nil
}

// Product находит товар по ID среди активных.
func (s *Service) Product(ctx context.Context, id int64) (Product, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return Product{}, err
	}

	for _, p := range snap.products {
		if p.ID == id {
			return p, nil
		}
	}

	return Product{}, ErrProductNotFound
}

// PackagingProducts - товары-упаковка для шага упаковки в оформлении заказа.
func (s *Service) PackagingProducts(ctx context.Context) ([]Product, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Filter(snap.products, func(p Product, _ int) bool {
		return p.Category == CategoryPackaging
	}), nil
}

// PromoProducts - товары с действующей акцией.
func (s *Service) PromoProducts(ctx context.Context) ([]Product, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return lo.Filter(snap.products, func(p Product, _ int) bool {
		return p.PromoActive(now)
	}), nil
}

// Search ищет товары по подстроке названия без учёта регистра.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	return lo.Filter(snap.products, func(p Product, _ int) bool {
		return strings.Contains(strings.ToLower(p.Name), query)
	}), nil
}

// CountryName возвращает имя страны для рендера экранов.
func (s *Service) CountryName(ctx context.Context, id int64) string {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return ""
	}
	return snap.countries[id].Name
}

// FarmName возвращает имя плантации для рендера экранов.
func (s *Service) FarmName(ctx context.Context, id int64) string {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return ""
	}
	return snap.plantations[id].Name
}

// FlowerTypeName возвращает имя сорта для рендера экранов.
func (s *Service) FlowerTypeName(ctx context.Context, id int64) string {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return ""
	}
	return snap.types[id].Name
}

func matchesCursor(p Product, cursor Cursor) bool {
	if p.CatalogType != cursor.CatalogType {
		return false
	}
	if cursor.CountryID != nil && (p.CountryID == nil || *p.CountryID != *cursor.CountryID) {
		return false
	}
	if cursor.PlantationID != nil && (p.PlantationID == nil || *p.PlantationID != *cursor.PlantationID) {
		return false
	}
	if cursor.TypeID != nil && (p.TypeID == nil || *p.TypeID != *cursor.TypeID) {
		return false
	}
	return true
}

func sortByName[T any](items []T, name func(T) string) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return name(items[i]) < name(items[j])
	})
	return items
}
