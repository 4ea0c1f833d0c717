package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// SplitMulti разбирает поле со списком значений ("40, 50, 60") в слайс.
func SplitMulti(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return lo.Uniq(values)
}

// MatchesMulti проверяет вхождение значения в список значений поля,
// а не равенство целиком: товар с height "40, 50, 60" подходит под фильтр "50".
func MatchesMulti(field, value string) bool {
	for _, v := range SplitMulti(field) {
		if v == value {
			return true
		}
	}
	return false
}

// Facets строит фасеты по текущим кандидатам. Фасет предлагается только
// если среди кандидатов больше одного различного значения - фасет
// с единственным значением ничего не сужает.
func Facets(products []Product, applied Filters) []Facet {
	var facets []Facet

	if applied.FlowerClass == "" {
		if values := distinctValues(products, func(p Product) string { return p.FlowerClass }); len(values) > 1 {
			facets = append(facets, Facet{Name: FacetFlowerClass, Values: values})
		}
	}
	if applied.Height == "" {
		if values := distinctMultiValues(products, func(p Product) string { return p.Height }); len(values) > 1 {
			facets = append(facets, Facet{Name: FacetHeight, Values: values})
		}
	}
	if applied.Color == "" {
		if values := distinctMultiValues(products, func(p Product) string { return p.Color }); len(values) > 1 {
			facets = append(facets, Facet{Name: FacetColor, Values: values})
		}
	}

	return facets
}

// ApplyFilters сужает кандидатов по выбранным значениям фасетов.
func ApplyFilters(products []Product, filters Filters) []Product {
	if filters.Empty() {
		return products
	}

	return lo.Filter(products, func(p Product, _ int) bool {
		if filters.FlowerClass != "" && p.FlowerClass != filters.FlowerClass {
			return false
		}
		if filters.Height != "" && !MatchesMulti(p.Height, filters.Height) {
			return false
		}
		if filters.Color != "" && !MatchesMulti(p.Color, filters.Color) {
			return false
		}
		return true
	})
}

func distinctValues(products []Product, get func(Product) string) []string {
	var values []string
	for _, p := range products {
		if v := strings.TrimSpace(get(p)); v != "" {
			values = append(values, v)
		}
	}
	return sortValues(lo.Uniq(values))
}

func distinctMultiValues(products []Product, get func(Product) string) []string {
	var values []string
	for _, p := range products {
		values = append(values, SplitMulti(get(p))...)
	}
	return sortValues(lo.Uniq(values))
}

// sortValues сортирует численно где возможно (ростовки), иначе лексикографически.
func sortValues(values []string) []string {
	sort.Slice(values, func(i, j int) bool {
		a, aErr := strconv.Atoi(values[i])
		b, bErr := strconv.Atoi(values[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		return values[i] < values[j]
	})
	return values
}
