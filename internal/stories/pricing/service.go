package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"kvitka-bot/internal/stories/catalog"
)

// Service считает цену единицы товара для конкретного покупателя.
type Service struct {
	rate             RateSource
	wholesalePercent float64
	now              func() time.Time
}

func NewService(rate RateSource, wholesalePercent float64) *Service {
	return &Service{
		rate:             rate,
		wholesalePercent: wholesalePercent,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Price возвращает цену в UAH, округлённую до копеек.
//
// Порядок: база (таблица ростовок / USD*курс / UAH), затем акция,
// затем оптовая скидка. Порядок важен - скидки умножаются после акции.
func (s *Service) Price(p catalog.Product, opts Opts) (float64, error) {
	base, err := s.basePrice(p, opts.Height)
	if err != nil {
		return 0, err
	}

	if p.PromoActive(s.now()) {
		base *= 1 - p.PromoPercent/100
	}

	if opts.Wholesale {
		base *= 1 - s.wholesalePercent/100
	}

	return Round2(base), nil
}

func (s *Service) basePrice(p catalog.Product, height string) (float64, error) {
	// Товары с таблицей ростовок считаются только по ней
	if p.HasHeightTable() && height != "" {
		table, err := ParseHeightPrices(p.HeightPrices)
		if err != nil {
			return 0, fmt.Errorf("parse height prices for product %d: %w", p.ID, err)
		}
		usd, ok := table[height]
		if !ok {
			return 0, fmt.Errorf("product %d height %q: %w", p.ID, height, ErrHeightNotPriced)
		}
		return usd * s.rate.Rate(), nil
	}

	if p.PriceUSD > 0 {
		return p.PriceUSD * s.rate.Rate(), nil
	}

	if p.PriceUAH > 0 {
		return p.PriceUAH, nil
	}

	return 0, fmt.Errorf("product %d: %w", p.ID, ErrNoPriceBasis)
}

// ParseHeightPrices разбирает строку вида "60:1.20, 70:2.20" в таблицу ростовка -> USD.
func ParseHeightPrices(raw string) (map[string]float64, error) {
	table := make(map[string]float64)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed height price pair %q", pair)
		}

		height := strings.TrimSpace(parts[0])
		price, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed price in pair %q: %w", pair, err)
		}

		table[height] = price
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("empty height price table %q", raw)
	}

	return table, nil
}

// Round2 округляет до 2 знаков (half-up).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
