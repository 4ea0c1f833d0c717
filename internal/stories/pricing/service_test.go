package pricing

import (
	"errors"
	"testing"
	"time"

	"kvitka-bot/internal/stories/catalog"
)

type fixedRate float64

func (r fixedRate) Rate() float64 { return float64(r) }

func newTestService(rate float64) *Service {
	s := NewService(fixedRate(rate), 5)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestPriceUSDBasis(t *testing.T) {
	svc := newTestService(41.5)

	p := catalog.Product{ID: 1, PriceUSD: 0.85}

	got, err := svc.Price(p, Opts{})
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if got != 35.28 {
		t.Errorf("Price() = %v, want 35.28", got)
	}
}

func TestPriceWholesaleStacksAfterPromo(t *testing.T) {
	svc := newTestService(41.5)

	tests := []struct {
		name string
		p    catalog.Product
		opts Opts
		want float64
	}{
		{
			name: "wholesale only",
			p:    catalog.Product{ID: 1, PriceUSD: 0.85},
			opts: Opts{Wholesale: true},
			want: 33.51, // round(0.85*41.5*0.95, 2)
		},
		{
			name: "promo only",
			p:    catalog.Product{ID: 2, PriceUAH: 100, IsPromo: true, PromoPercent: 10},
			want: 90,
		},
		{
			name: "promo then wholesale",
			p:    catalog.Product{ID: 3, PriceUAH: 100, IsPromo: true, PromoPercent: 10},
			opts: Opts{Wholesale: true},
			want: 85.5, // 100 * 0.9 * 0.95
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Price(tt.p, tt.opts)
			if err != nil {
				t.Fatalf("Price() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Price() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriceExpiredPromoIgnored(t *testing.T) {
	svc := newTestService(41.5)

	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := catalog.Product{ID: 1, PriceUAH: 100, IsPromo: true, PromoPercent: 50, PromoEndDate: &past}

	got, err := svc.Price(p, Opts{})
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if got != 100 {
		t.Errorf("Price() = %v, want 100 (expired promo must not apply)", got)
	}
}

func TestPriceHeightTable(t *testing.T) {
	svc := newTestService(40)

	p := catalog.Product{
		ID:           7,
		HeightPrices: "60:1.20, 70:2.20",
		PriceUAH:     9999, // таблица ростовок имеет приоритет
	}

	got, err := svc.Price(p, Opts{Height: "70"})
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if got != 88 {
		t.Errorf("Price() = %v, want 88", got)
	}
}

func TestPriceMissingHeightIsError(t *testing.T) {
	svc := newTestService(40)

	p := catalog.Product{ID: 7, HeightPrices: "60:1.20, 70:2.20"}

	_, err := svc.Price(p, Opts{Height: "80"})
	if !errors.Is(err, ErrHeightNotPriced) {
		t.Fatalf("Price() error = %v, want ErrHeightNotPriced", err)
	}
}

func TestPriceNoBasisIsError(t *testing.T) {
	svc := newTestService(40)

	_, err := svc.Price(catalog.Product{ID: 9}, Opts{})
	if !errors.Is(err, ErrNoPriceBasis) {
		t.Fatalf("Price() error = %v, want ErrNoPriceBasis", err)
	}
}

func TestParseHeightPrices(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]float64
		wantErr bool
	}{
		{
			name:  "two pairs",
			input: "60:1.20, 70:2.20",
			want:  map[string]float64{"60": 1.2, "70": 2.2},
		},
		{
			name:  "spaces around pairs",
			input: " 40 : 0.55 ,50:0.70 ",
			want:  map[string]float64{"40": 0.55, "50": 0.7},
		},
		{
			name:    "missing colon",
			input:   "60-1.20",
			wantErr: true,
		},
		{
			name:    "bad price",
			input:   "60:abc",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHeightPrices(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHeightPrices(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHeightPrices(%q) error = %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseHeightPrices(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("ParseHeightPrices(%q)[%s] = %v, want %v", tt.input, k, got[k], v)
				}
			}
		})
	}
}
