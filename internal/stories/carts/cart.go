package carts

import (
	"context"
	"errors"
	"fmt"

	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/stories/pricing"
)

// LineKey - идентичность строки корзины. Один и тот же товар на разных
// ростовках - независимые строки.
type LineKey struct {
	ProductID int64
	Height    string // пустая если ростовка не выбиралась
}

func (k LineKey) String() string {
	if k.Height == "" {
		return fmt.Sprintf("%d", k.ProductID)
	}
	return fmt.Sprintf("%d_h%s", k.ProductID, k.Height)
}

type Line struct {
	Key      LineKey
	Quantity int
}

// Cart - упорядоченный список строк. Количества всегда положительные.
type Cart struct {
	Lines []Line
}

// Add добавляет qty к существующей строке или создаёт новую.
// Неположительное количество игнорируется.
func (c *Cart) Add(key LineKey, qty int) {
	if qty <= 0 {
		return
	}

	for i := range c.Lines {
		if c.Lines[i].Key == key {
			c.Lines[i].Quantity += qty
			return
		}
	}

	c.Lines = append(c.Lines, Line{Key: key, Quantity: qty})
}

// Remove убирает строку целиком.
func (c *Cart) Remove(key LineKey) {
	for i := range c.Lines {
		if c.Lines[i].Key == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) TotalQuantity() int {
	var total int
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

type (
	// Pricer считает цену единицы с учётом ростовки и типа покупателя.
	Pricer interface {
		Price(p catalog.Product, opts pricing.Opts) (float64, error)
	}

	// ProductSource отдаёт товар по ID.
	ProductSource interface {
		Product(ctx context.Context, id int64) (catalog.Product, error)
	}
)

// PricedLine - строка корзины с расчитанной ценой.
type PricedLine struct {
	Line
	Product   catalog.Product
	UnitPrice float64
	LineTotal float64
}

// Priced - итог корзины. Строки с пропавшими из каталога товарами
// не участвуют в сумме и перечислены в Missing.
type Priced struct {
	Lines   []PricedLine
	Missing []LineKey
	Total   float64
}

// PriceCart считает все строки корзины через движок цен.
func PriceCart(ctx context.Context, cart *Cart, products ProductSource, pricer Pricer, wholesale bool) (*Priced, error) {
	result := &Priced{}

	for _, line := range cart.Lines {
		product, err := products.Product(ctx, line.Key.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				result.Missing = append(result.Missing, line.Key)
				continue
			}
			return nil, fmt.Errorf("resolve product %d: %w", line.Key.ProductID, err)
		}

		unit, err := pricer.Price(product, pricing.Opts{Height: line.Key.Height, Wholesale: wholesale})
		if err != nil {
			return nil, fmt.Errorf("price line %s: %w", line.Key, err)
		}

		lineTotal := pricing.Round2(unit * float64(line.Quantity))
		result.Lines = append(result.Lines, PricedLine{
			Line:      line,
			Product:   product,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		result.Total += lineTotal
	}

	result.Total = pricing.Round2(result.Total)
	return result, nil
}
