package catalog

import (
	"testing"
)

func TestSplitMulti(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single value", input: "50", want: []string{"50"}},
		{name: "multi value with spaces", input: "40, 50, 60", want: []string{"40", "50", "60"}},
		{name: "duplicates removed", input: "red, red, white", want: []string{"red", "white"}},
		{name: "empty parts dropped", input: "40,, 50,", want: []string{"40", "50"}},
		{name: "empty string", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitMulti(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitMulti(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("SplitMulti(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMatchesMulti(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  bool
	}{
		{name: "member of list", field: "40, 50, 60", value: "50", want: true},
		{name: "not a member", field: "40, 50, 60", value: "55", want: false},
		{name: "no substring match", field: "40, 150", value: "50", want: false},
		{name: "exact single", field: "60", value: "60", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesMulti(tt.field, tt.value); got != tt.want {
				t.Errorf("MatchesMulti(%q, %q) = %v, want %v", tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestFacetsSuppressSingleValued(t *testing.T) {
	products := []Product{
		{ID: 1, FlowerClass: "premium", Height: "40, 50", Color: "red"},
		{ID: 2, FlowerClass: "premium", Height: "60", Color: "red"},
	}

	facets := Facets(products, Filters{})

	// Класс и цвет одинаковы у всех кандидатов - предлагается только ростовка
	if len(facets) != 1 {
		t.Fatalf("Facets() returned %d facets, want 1: %+v", len(facets), facets)
	}
	if facets[0].Name != FacetHeight {
		t.Errorf("facet = %s, want %s", facets[0].Name, FacetHeight)
	}

	want := []string{"40", "50", "60"}
	if len(facets[0].Values) != len(want) {
		t.Fatalf("height values = %v, want %v", facets[0].Values, want)
	}
	for i := range want {
		if facets[0].Values[i] != want[i] {
			t.Errorf("height values[%d] = %q, want %q", i, facets[0].Values[i], want[i])
		}
	}
}

func TestFacetsSkipApplied(t *testing.T) {
	products := []Product{
		{ID: 1, FlowerClass: "premium", Height: "40", Color: "red"},
		{ID: 2, FlowerClass: "standard", Height: "50", Color: "white"},
	}

	facets := Facets(products, Filters{Height: "40"})

	for _, f := range facets {
		if f.Name == FacetHeight {
			t.Error("applied height facet must not be offered again")
		}
	}
}

func TestApplyFiltersMembership(t *testing.T) {
	products := []Product{
		{ID: 1, Height: "40, 50, 60"},
		{ID: 2, Height: "70"},
	}

	got := ApplyFilters(products, Filters{Height: "50"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("ApplyFilters(height=50) = %+v, want only product 1", got)
	}

	got = ApplyFilters(products, Filters{Height: "55"})
	if len(got) != 0 {
		t.Fatalf("ApplyFilters(height=55) = %+v, want empty", got)
	}
}

func TestApplyFiltersCombined(t *testing.T) {
	products := []Product{
		{ID: 1, FlowerClass: "premium", Height: "50, 60", Color: "red, white"},
		{ID: 2, FlowerClass: "premium", Height: "50", Color: "pink"},
		{ID: 3, FlowerClass: "standard", Height: "50", Color: "red"},
	}

	got := ApplyFilters(products, Filters{FlowerClass: "premium", Height: "50", Color: "red"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("ApplyFilters() = %+v, want only product 1", got)
	}
}
