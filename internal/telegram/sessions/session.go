package sessions

import (
	"time"

	"kvitka-bot/internal/stories/carts"
	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/stories/customers"
)

type Step string

const (
	StepLanguage Step = "language"
	StepCity     Step = "city"
	StepType     Step = "type"
	StepMenu     Step = "menu"

	StepCatalogType    Step = "catalog_type"
	StepCatalogCountry Step = "catalog_country"
	StepCatalogFarm    Step = "catalog_farm"
	StepCatalogFlower  Step = "catalog_flower"
	StepCatalogFilters Step = "catalog_filters"
	StepCatalogItems   Step = "catalog_items"

	StepCheckoutName            Step = "checkout_name"
	StepCheckoutPhone           Step = "checkout_phone"
	StepCheckoutAddress         Step = "checkout_address"
	StepCheckoutPackaging       Step = "checkout_packaging"
	StepCheckoutSelectPackaging Step = "checkout_select_packaging"
	StepAwaitingConfirmation    Step = "awaiting_confirmation"

	StepQuantity  Step = "quantity"
	StepSearch    Step = "search"
	StepBroadcast Step = "broadcast"
	StepSetRate   Step = "set_rate"
)

// Checkout - данные, собираемые пошагово при оформлении заказа.
type Checkout struct {
	Name           string
	Phone          string
	Address        string
	NeedsPackaging bool
}

// Session - всё состояние диалога с покупателем.
// Живёт только в памяти: после рестарта бот начинает диалог заново.
type Session struct {
	TelegramID int64
	CustomerID int64

	Language     string
	City         string
	CustomerType customers.CustomerType

	Step Step

	Cart      carts.Cart
	Favorites map[int64]bool

	Cursor  catalog.Cursor
	Filters catalog.Filters

	// Строка, для которой ждём ввода количества.
	PendingLine *carts.LineKey

	// Реферальный код из /start, ждёт регистрации покупателя.
	PendingReferral string

	Checkout Checkout

	LastInteraction time.Time
}

// ResetCatalog сбрасывает путь по каталогу и выбранные фильтры.
func (s *Session) ResetCatalog() {
	s.Cursor = catalog.Cursor{}
	s.Filters = catalog.Filters{}
}

// ResetCheckout очищает данные оформления, корзину не трогает.
func (s *Session) ResetCheckout() {
	s.Checkout = Checkout{}
}

func (s *Session) ToggleFavorite(productID int64) bool {
	if s.Favorites == nil {
		s.Favorites = make(map[int64]bool)
	}
	if s.Favorites[productID] {
		delete(s.Favorites, productID)
		return false
	}
	s.Favorites[productID] = true
	return true
}
