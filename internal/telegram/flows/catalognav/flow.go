package catalognav

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/carts"
	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/stories/pricing"
	"kvitka-bot/internal/telegram/sessions"
)

// Flow ведёт покупателя по каталогу: тип каталога -> страна -> плантация
// (пропускается для instock) -> сорт -> фильтры -> товары.
type Flow struct {
	bot     botApi
	catalog catalogService
	pricer  pricer
	l10n    localizer
	logger  *slog.Logger
}

func NewFlow(bot botApi, catalogSvc catalogService, pricer pricer, l10n localizer, logger *slog.Logger) *Flow {
	return &Flow{
		bot:     bot,
		catalog: catalogSvc,
		pricer:  pricer,
		l10n:    l10n,
		logger:  logger,
	}
}

// Start показывает выбор типа каталога и сбрасывает путь навигации.
func (f *Flow) Start(s *sessions.Session, chatID int64) error {
	s.ResetCatalog()
	s.Step = sessions.StepCatalogType

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.t(s, "catalog.preorder"), "cat:preorder"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.t(s, "catalog.instock"), "cat:instock"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.t(s, "common.main_menu"), "menu"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, f.t(s, "catalog.choose_type"))
	msg.ReplyMarkup = keyboard
	_, err := f.bot.Send(msg)
	return err
}

// HandleCallback обрабатывает callback-кнопки каталога.
// Возвращает false, если callback не относится к каталогу.
func (f *Flow) HandleCallback(ctx context.Context, s *sessions.Session, query *tgbotapi.CallbackQuery) (bool, error) {
	if query.Message == nil {
		return false, nil
	}
	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case strings.HasPrefix(data, "cat:"):
		return true, f.handleCatalogType(ctx, s, chatID, strings.TrimPrefix(data, "cat:"))
	case strings.HasPrefix(data, "country:"):
		return true, f.handleCountry(ctx, s, chatID, strings.TrimPrefix(data, "country:"))
	case strings.HasPrefix(data, "farm:"):
		return true, f.handleFarm(ctx, s, chatID, strings.TrimPrefix(data, "farm:"))
	case strings.HasPrefix(data, "ftype:"):
		return true, f.handleFlowerType(ctx, s, chatID, strings.TrimPrefix(data, "ftype:"))
	case strings.HasPrefix(data, "facet:"):
		return true, f.handleFacet(ctx, s, chatID, strings.TrimPrefix(data, "facet:"))
	case data == "show":
		return true, f.showProductList(ctx, s, chatID)
	case data == "catback":
		return true, f.handleBack(ctx, s, chatID)
	case strings.HasPrefix(data, "prod:"):
		return true, f.handleProduct(ctx, s, chatID, strings.TrimPrefix(data, "prod:"))
	case strings.HasPrefix(data, "buy:"):
		return true, f.handleBuy(ctx, s, chatID, strings.TrimPrefix(data, "buy:"))
	case strings.HasPrefix(data, "fav:"):
		return true, f.ToggleFavorite(s, chatID, strings.TrimPrefix(data, "fav:"))
	}

	return false, nil
}

func (f *Flow) handleCatalogType(ctx context.Context, s *sessions.Session, chatID int64, raw string) error {
	ct := catalog.CatalogType(raw)
	if ct != catalog.CatalogTypePreorder && ct != catalog.CatalogTypeInstock {
		return f.recover(s, chatID)
	}

	s.ResetCatalog()
	s.Cursor.CatalogType = ct
	return f.showCountries(ctx, s, chatID)
}

func (f *Flow) showCountries(ctx context.Context, s *sessions.Session, chatID int64) error {
	countries, err := f.catalog.Countries(ctx, s.Cursor.CatalogType)
	if err != nil {
		return fmt.Errorf("list countries: %w", err)
	}
	if len(countries) == 0 {
		return f.sendText(s, chatID, "catalog.no_products", nil)
	}

	s.Step = sessions.StepCatalogCountry

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range countries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, fmt.Sprintf("country:%d", c.ID)),
		))
	}
	rows = append(rows, f.navRow(s))

	msg := tgbotapi.NewMessage(chatID, f.t(s, "catalog.choose_country"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = f.bot.Send(msg)
	return err
}

func (f *Flow) handleCountry(ctx context.Context, s *sessions.Session, chatID int64, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || s.Cursor.CatalogType == "" {
		return f.recover(s, chatID)
	}

	s.Cursor.CountryID = &id
	s.Cursor.PlantationID = nil
	s.Cursor.TypeID = nil

	// У instock товаров плантаций нет - сразу к сортам
	if s.Cursor.CatalogType == catalog.CatalogTypeInstock {
		return f.showFlowerTypes(ctx, s, chatID)
	}
	return f.showFarms(ctx, s, chatID)
}

func (f *Flow) showFarms(ctx context.Context, s *sessions.Session, chatID int64) error {
	if s.Cursor.CountryID == nil {
		return f.recover(s, chatID)
	}

	farms, err := f.catalog.Farms(ctx, s.Cursor.CatalogType, *s.Cursor.CountryID)
	if err != nil {
		return fmt.Errorf("list farms: %w", err)
	}
	if len(farms) == 0 {
		return f.showFlowerTypes(ctx, s, chatID)
	}

	s.Step = sessions.StepCatalogFarm

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, farm := range farms {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(farm.Name, fmt.Sprintf("farm:%d", farm.ID)),
		))
	}
	rows = append(rows, f.navRow(s))

	msg := tgbotapi.NewMessage(chatID, f.t(s, "catalog.choose_farm", map[string]interface{}{
		"country": f.catalog.CountryName(ctx, *s.Cursor.CountryID),
	}))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = f.bot.Send(msg)
	return err
}

func (f *Flow) handleFarm(ctx context.Context, s *sessions.Session, chatID int64, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || s.Cursor.CountryID == nil {
		return f.recover(s, chatID)
	}

	s.Cursor.PlantationID = &id
	s.Cursor.TypeID = nil
	return f.showFlowerTypes(ctx, s, chatID)
}

func (f *Flow) showFlowerTypes(ctx context.Context, s *sessions.Session, chatID int64) error {
	types, err := f.catalog.FlowerTypes(ctx, s.Cursor)
	if err != nil {
		return fmt.Errorf("list flower types: %w", err)
	}
	if len(types) == 0 {
		return f.showProductList(ctx, s, chatID)
	}

	s.Step = sessions.StepCatalogFlower

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, ft := range types {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ft.Name, fmt.Sprintf("ftype:%d", ft.ID)),
		))
	}
	rows = append(rows, f.navRow(s))

	msg := tgbotapi.NewMessage(chatID, f.t(s, "catalog.choose_flower_type"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = f.bot.Send(msg)
	return err
}

func (f *Flow) handleFlowerType(ctx context.Context, s *sessions.Session, chatID int64, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || s.Cursor.CatalogType == "" {
		return f.recover(s, chatID)
	}

	s.Cursor.TypeID = &id
	s.Filters = catalog.Filters{}
	return f.showFilters(ctx, s, chatID)
}

// showFilters рендерит фасеты по текущим кандидатам. Когда все фасеты
// схлопнулись до одного значения, сразу показывает товары.
func (f *Flow) showFilters(ctx context.Context, s *sessions.Session, chatID int64) error {
	candidates, err := f.catalog.Candidates(ctx, s.Cursor, s.Filters)
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return f.sendText(s, chatID, "catalog.no_products", nil)
	}

	facets := catalog.Facets(candidates, s.Filters)
	if len(facets) == 0 {
		return f.showProductList(ctx, s, chatID)
	}

	s.Step = sessions.StepCatalogFilters

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, facet := range facets {
		label := f.t(s, "catalog.facet_"+string(facet.Name))
		for _, value := range facet.Values {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%s: %s", label, value),
					fmt.Sprintf("facet:%s:%s", facet.Name, value),
				),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(
			f.t(s, "catalog.show_products", map[string]interface{}{"count": len(candidates)}),
			"show",
		),
	))
	rows = append(rows, f.navRow(s))

	flowerName := ""
	if s.Cursor.TypeID != nil {
		flowerName = f.catalog.FlowerTypeName(ctx, *s.Cursor.TypeID)
	}
	msg := tgbotapi.NewMessage(chatID, f.t(s, "catalog.filters_title", map[string]interface{}{
		"count":  len(candidates),
		"flower": flowerName,
	}))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = f.bot.Send(msg)
	return err
}

func (f *Flow) handleFacet(ctx context.Context, s *sessions.Session, chatID int64, raw string) error {
	name, value, ok := strings.Cut(raw, ":")
	if !ok || s.Cursor.TypeID == nil {
		return f.recover(s, chatID)
	}

	switch catalog.FacetName(name) {
	case catalog.FacetFlowerClass:
		s.Filters.FlowerClass = value
	case catalog.FacetHeight:
		s.Filters.Height = value
	case catalog.FacetColor:
		s.Filters.Color = value
	default:
		return f.recover(s, chatID)
	}

	return f.showFilters(ctx, s, chatID)
}

func (f *Flow) showProductList(ctx context.Context, s *sessions.Session, chatID int64) error {
	candidates, err := f.catalog.Candidates(ctx, s.Cursor, s.Filters)
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}

	title := f.t(s, "menu.catalog")
	if crumb := f.breadcrumb(ctx, s); crumb != "" {
		title += "\n" + crumb
	}
	return f.ShowProducts(s, chatID, candidates, title)
}

// breadcrumb - пройденный путь по каталогу для заголовка списка товаров.
func (f *Flow) breadcrumb(ctx context.Context, s *sessions.Session) string {
	var parts []string
	if s.Cursor.CountryID != nil {
		if name := f.catalog.CountryName(ctx, *s.Cursor.CountryID); name != "" {
			parts = append(parts, name)
		}
	}
	if s.Cursor.PlantationID != nil {
		if name := f.catalog.FarmName(ctx, *s.Cursor.PlantationID); name != "" {
			parts = append(parts, name)
		}
	}
	if s.Cursor.TypeID != nil {
		if name := f.catalog.FlowerTypeName(ctx, *s.Cursor.TypeID); name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " / ")
}

// ShowProducts рендерит список товаров с кнопками карточек.
// Используется и каталогом, и поиском, и избранным, и акциями.
func (f *Flow) ShowProducts(s *sessions.Session, chatID int64, products []catalog.Product, title string) error {
	if len(products) == 0 {
		return f.sendText(s, chatID, "catalog.no_products", nil)
	}

	s.Step = sessions.StepCatalogItems

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		label := p.Name
		if price, err := f.unitPrice(s, p, ""); err == nil && price > 0 {
			label = fmt.Sprintf("%s — %.2f UAH", p.Name, price)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("prod:%d", p.ID)),
		))
	}
	rows = append(rows, f.navRow(s))

	msg := tgbotapi.NewMessage(chatID, title)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := f.bot.Send(msg)
	return err
}

// handleProduct показывает карточку товара: кнопки ростовок из таблицы цен
// либо одну кнопку покупки, плюс избранное.
func (f *Flow) handleProduct(ctx context.Context, s *sessions.Session, chatID int64, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return f.recover(s, chatID)
	}

	product, err := f.catalog.Product(ctx, id)
	if err != nil {
		return f.sendText(s, chatID, "errors.product_not_found", nil)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var cardPrice float64

	if product.HasHeightTable() {
		heights, err := heightOptions(product.HeightPrices)
		if err != nil {
			f.logger.Error("bad height table", "product_id", product.ID, "error", err)
			return f.sendText(s, chatID, "common.error", nil)
		}
		for _, h := range heights {
			price, err := f.unitPrice(s, product, h)
			if err != nil {
				continue
			}
			if cardPrice == 0 {
				cardPrice = price
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%s см — %.2f UAH", h, price),
					fmt.Sprintf("buy:%d:%s", product.ID, h),
				),
			))
		}
	} else {
		price, err := f.unitPrice(s, product, "")
		if err != nil {
			f.logger.Error("price product", "product_id", product.ID, "error", err)
			return f.sendText(s, chatID, "common.error", nil)
		}
		cardPrice = price
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🛒 %.2f UAH", price),
				fmt.Sprintf("buy:%d:", product.ID),
			),
		))
	}

	favLabel := "⭐"
	if s.Favorites[product.ID] {
		favLabel = "★"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(favLabel, fmt.Sprintf("fav:%d", product.ID)),
	))
	rows = append(rows, f.navRow(s))

	text := f.t(s, "catalog.product_card", map[string]interface{}{
		"name":  product.Name,
		"price": fmt.Sprintf("%.2f", cardPrice),
	})

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = f.bot.Send(msg)
	return err
}

// handleBuy запоминает выбранную строку и спрашивает количество.
func (f *Flow) handleBuy(ctx context.Context, s *sessions.Session, chatID int64, raw string) error {
	idRaw, height, ok := strings.Cut(raw, ":")
	if !ok {
		return f.recover(s, chatID)
	}
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil {
		return f.recover(s, chatID)
	}

	if _, err := f.catalog.Product(ctx, id); err != nil {
		return f.sendText(s, chatID, "errors.product_not_found", nil)
	}

	s.PendingLine = &carts.LineKey{ProductID: id, Height: height}
	s.Step = sessions.StepQuantity

	return f.sendText(s, chatID, "catalog.enter_quantity", nil)
}

// HandleQuantity принимает введённое количество и кладёт строку в корзину.
func (f *Flow) HandleQuantity(ctx context.Context, s *sessions.Session, chatID int64, text string) error {
	if s.PendingLine == nil {
		return f.recover(s, chatID)
	}

	qty, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || qty <= 0 {
		return f.sendText(s, chatID, "catalog.invalid_quantity", nil)
	}

	product, err := f.catalog.Product(ctx, s.PendingLine.ProductID)
	if err != nil {
		s.PendingLine = nil
		return f.sendText(s, chatID, "errors.product_not_found", nil)
	}

	s.Cart.Add(*s.PendingLine, qty)
	s.PendingLine = nil
	s.Step = sessions.StepCatalogItems

	return f.sendText(s, chatID, "catalog.added_to_cart", map[string]interface{}{
		"name": product.Name,
		"qty":  qty,
	})
}

// ToggleFavorite переключает товар в избранном.
func (f *Flow) ToggleFavorite(s *sessions.Session, chatID int64, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return f.recover(s, chatID)
	}

	if s.ToggleFavorite(id) {
		return f.sendText(s, chatID, "favorites.added", nil)
	}
	return f.sendText(s, chatID, "favorites.removed", nil)
}

// handleBack идёт на шаг назад по пройденному пути. Если курсор потерян
// (сессия пережила sweep не полностью или бот рестартовал), возвращает
// в корень каталога вместо падения.
func (f *Flow) handleBack(ctx context.Context, s *sessions.Session, chatID int64) error {
	switch s.Step {
	case sessions.StepCatalogCountry:
		return f.Start(s, chatID)
	case sessions.StepCatalogFarm:
		if s.Cursor.CatalogType == "" {
			return f.recover(s, chatID)
		}
		s.Cursor.CountryID = nil
		s.Cursor.PlantationID = nil
		return f.showCountries(ctx, s, chatID)
	case sessions.StepCatalogFlower:
		if s.Cursor.CountryID == nil {
			return f.recover(s, chatID)
		}
		s.Cursor.TypeID = nil
		if s.Cursor.CatalogType == catalog.CatalogTypeInstock {
			s.Cursor.CountryID = nil
			return f.showCountries(ctx, s, chatID)
		}
		s.Cursor.PlantationID = nil
		return f.showFarms(ctx, s, chatID)
	case sessions.StepCatalogFilters, sessions.StepCatalogItems:
		if s.Cursor.TypeID == nil {
			return f.recover(s, chatID)
		}
		s.Cursor.TypeID = nil
		s.Filters = catalog.Filters{}
		return f.showFlowerTypes(ctx, s, chatID)
	default:
		return f.recover(s, chatID)
	}
}

// recover - ответ на устаревшую сессию: предлагаем начать с корня каталога.
func (f *Flow) recover(s *sessions.Session, chatID int64) error {
	s.ResetCatalog()
	s.Step = sessions.StepMenu

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.t(s, "common.to_catalog"), "menu_catalog"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.t(s, "common.main_menu"), "menu"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, f.t(s, "common.start_over"))
	msg.ReplyMarkup = keyboard
	_, err := f.bot.Send(msg)
	return err
}

func (f *Flow) unitPrice(s *sessions.Session, p catalog.Product, height string) (float64, error) {
	return f.pricer.Price(p, pricing.Opts{
		Height:    height,
		Wholesale: s.CustomerType == customers.TypeWholesale,
	})
}

func (f *Flow) navRow(s *sessions.Session) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(f.t(s, "common.back"), "catback"),
		tgbotapi.NewInlineKeyboardButtonData(f.t(s, "common.main_menu"), "menu"),
	)
}

func (f *Flow) sendText(s *sessions.Session, chatID int64, key string, params map[string]interface{}) error {
	msg := tgbotapi.NewMessage(chatID, f.t(s, key, params))
	_, err := f.bot.Send(msg)
	return err
}

func (f *Flow) t(s *sessions.Session, key string, params ...map[string]interface{}) string {
	var p map[string]interface{}
	if len(params) > 0 {
		p = params[0]
	}
	return f.l10n.Get(s.Language, key, p)
}

func heightOptions(raw string) ([]string, error) {
	table, err := pricing.ParseHeightPrices(raw)
	if err != nil {
		return nil, err
	}

	heights := make([]string, 0, len(table))
	for h := range table {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool {
		a, aErr := strconv.Atoi(heights[i])
		b, bErr := strconv.Atoi(heights[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		return heights[i] < heights[j]
	})

	return heights, nil
}
