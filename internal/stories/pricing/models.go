package pricing

import "errors"

var (
	// ErrHeightNotPriced - выбранная ростовка отсутствует в таблице цен товара.
	// Это ошибка данных, а не нулевая цена.
	ErrHeightNotPriced = errors.New("selected height is not present in the price table")

	// ErrNoPriceBasis - у товара нет ни таблицы ростовок, ни USD, ни UAH цены.
	ErrNoPriceBasis = errors.New("product has no price basis")
)

// Opts - параметры расчёта цены для конкретной строки корзины.
type Opts struct {
	Height    string // выбранная ростовка, пустая если не выбрана
	Wholesale bool   // оптовый покупатель получает дополнительную скидку
}
