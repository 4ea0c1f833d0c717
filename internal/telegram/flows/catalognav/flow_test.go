package catalognav

import (
	"context"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/stories/pricing"
	"kvitka-bot/internal/telegram/sessions"
)

type botStub struct {
	texts []string
}

func (b *botStub) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		b.texts = append(b.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (b *botStub) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *botStub) last() string {
	if len(b.texts) == 0 {
		return ""
	}
	return b.texts[len(b.texts)-1]
}

type catalogStub struct {
	countries  []catalog.Country
	farms      []catalog.Plantation
	types      []catalog.FlowerType
	candidates []catalog.Product
	products   map[int64]catalog.Product

	farmsCalled bool
}

func (c *catalogStub) Countries(context.Context, catalog.CatalogType) ([]catalog.Country, error) {
	return c.countries, nil
}

func (c *catalogStub) Farms(context.Context, catalog.CatalogType, int64) ([]catalog.Plantation, error) {
	c.farmsCalled = true
	return c.farms, nil
}

func (c *catalogStub) FlowerTypes(context.Context, catalog.Cursor) ([]catalog.FlowerType, error) {
	return c.types, nil
}

func (c *catalogStub) Candidates(context.Context, catalog.Cursor, catalog.Filters) ([]catalog.Product, error) {
	return c.candidates, nil
}

func (c *catalogStub) Product(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (c *catalogStub) CountryName(context.Context, int64) string { return "Еквадор" }

func (c *catalogStub) FarmName(context.Context, int64) string { return "Rosaprima" }

func (c *catalogStub) FlowerTypeName(context.Context, int64) string { return "Троянда" }

type pricerStub struct{}

func (pricerStub) Price(p catalog.Product, _ pricing.Opts) (float64, error) {
	return p.PriceUAH, nil
}

type l10nStub struct{}

func (l10nStub) Get(_, key string, _ map[string]interface{}) string { return key }

func newTestFlow(bot *botStub, stub *catalogStub) *Flow {
	return NewFlow(bot, stub, pricerStub{}, l10nStub{}, slog.Default())
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 10}},
	}
}

func TestBackWithLostCursorRecovers(t *testing.T) {
	bot := &botStub{}
	f := newTestFlow(bot, &catalogStub{})

	s := &sessions.Session{TelegramID: 1, Language: "ua", Step: sessions.StepCatalogFilters}

	handled, err := f.HandleCallback(context.Background(), s, callback("catback"))
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}
	if !handled {
		t.Fatal("catback not handled")
	}

	if s.Step != sessions.StepMenu {
		t.Errorf("Step = %q, want %q", s.Step, sessions.StepMenu)
	}
	if got := bot.last(); got != "common.start_over" {
		t.Errorf("sent %q, want recovery prompt", got)
	}
}

func TestInstockSkipsFarms(t *testing.T) {
	bot := &botStub{}
	stub := &catalogStub{
		countries: []catalog.Country{{ID: 1, Name: "Еквадор"}},
		types:     []catalog.FlowerType{{ID: 7, Name: "Троянда"}},
	}
	f := newTestFlow(bot, stub)

	s := &sessions.Session{TelegramID: 1, Language: "ua"}

	if _, err := f.HandleCallback(context.Background(), s, callback("cat:instock")); err != nil {
		t.Fatalf("cat:instock error = %v", err)
	}
	if _, err := f.HandleCallback(context.Background(), s, callback("country:1")); err != nil {
		t.Fatalf("country:1 error = %v", err)
	}

	if stub.farmsCalled {
		t.Error("Farms() called for instock catalog")
	}
	if s.Step != sessions.StepCatalogFlower {
		t.Errorf("Step = %q, want %q", s.Step, sessions.StepCatalogFlower)
	}
}

func TestFacetAutoAdvanceWhenAllSingleValued(t *testing.T) {
	bot := &botStub{}
	one := int64(1)
	stub := &catalogStub{
		candidates: []catalog.Product{
			{ID: 1, Name: "Freedom", FlowerClass: "premium", Height: "60", Color: "red", PriceUAH: 35},
		},
	}
	f := newTestFlow(bot, stub)

	s := &sessions.Session{
		TelegramID: 1,
		Language:   "ua",
		Step:       sessions.StepCatalogFlower,
		Cursor:     catalog.Cursor{CatalogType: catalog.CatalogTypePreorder, CountryID: &one},
	}

	if _, err := f.HandleCallback(context.Background(), s, callback("ftype:7")); err != nil {
		t.Fatalf("ftype:7 error = %v", err)
	}

	// Все фасеты с единственным значением подавлены - сразу список товаров
	if s.Step != sessions.StepCatalogItems {
		t.Errorf("Step = %q, want %q", s.Step, sessions.StepCatalogItems)
	}
}

func TestBackWalksPath(t *testing.T) {
	bot := &botStub{}
	one, seven := int64(1), int64(7)
	stub := &catalogStub{
		countries: []catalog.Country{{ID: 1, Name: "Еквадор"}},
		types:     []catalog.FlowerType{{ID: 7, Name: "Троянда"}},
	}
	f := newTestFlow(bot, stub)

	s := &sessions.Session{
		TelegramID: 1,
		Language:   "ua",
		Step:       sessions.StepCatalogItems,
		Cursor: catalog.Cursor{
			CatalogType: catalog.CatalogTypeInstock,
			CountryID:   &one,
			TypeID:      &seven,
		},
	}

	// items -> сорта
	if _, err := f.HandleCallback(context.Background(), s, callback("catback")); err != nil {
		t.Fatalf("catback error = %v", err)
	}
	if s.Step != sessions.StepCatalogFlower {
		t.Fatalf("Step = %q, want %q", s.Step, sessions.StepCatalogFlower)
	}
	if s.Cursor.TypeID != nil {
		t.Error("TypeID not cleared on back")
	}

	// сорта -> страны (instock: плантаций в пути нет)
	if _, err := f.HandleCallback(context.Background(), s, callback("catback")); err != nil {
		t.Fatalf("catback error = %v", err)
	}
	if s.Step != sessions.StepCatalogCountry {
		t.Errorf("Step = %q, want %q", s.Step, sessions.StepCatalogCountry)
	}
	if s.Cursor.CountryID != nil {
		t.Error("CountryID not cleared on back")
	}
}

func TestQuantityInputAddsToCart(t *testing.T) {
	bot := &botStub{}
	stub := &catalogStub{
		products: map[int64]catalog.Product{
			5: {ID: 5, Name: "Mondial", PriceUAH: 40},
		},
	}
	f := newTestFlow(bot, stub)

	s := &sessions.Session{TelegramID: 1, Language: "ua", Step: sessions.StepCatalogItems}

	if _, err := f.HandleCallback(context.Background(), s, callback("buy:5:60")); err != nil {
		t.Fatalf("buy error = %v", err)
	}
	if s.Step != sessions.StepQuantity || s.PendingLine == nil {
		t.Fatalf("buy did not arm quantity step: step=%q pending=%v", s.Step, s.PendingLine)
	}

	if err := f.HandleQuantity(context.Background(), s, 10, "abc"); err != nil {
		t.Fatalf("HandleQuantity(abc) error = %v", err)
	}
	if got := bot.last(); got != "catalog.invalid_quantity" {
		t.Errorf("sent %q, want invalid quantity reprompt", got)
	}
	if !s.Cart.IsEmpty() {
		t.Error("cart changed on invalid input")
	}

	if err := f.HandleQuantity(context.Background(), s, 10, "25"); err != nil {
		t.Fatalf("HandleQuantity(25) error = %v", err)
	}
	if s.Cart.TotalQuantity() != 25 {
		t.Errorf("TotalQuantity = %d, want 25", s.Cart.TotalQuantity())
	}
	if s.PendingLine != nil || s.Step != sessions.StepCatalogItems {
		t.Errorf("quantity step not finished: step=%q pending=%v", s.Step, s.PendingLine)
	}
}
