package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/carts"
	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/stories/orders"
	"kvitka-bot/internal/telegram/sessions"
)

// Flow собирает данные оформления по шагам: имя -> телефон -> адрес ->
// упаковка -> подтверждение -> коммит заказа.
type Flow struct {
	bot       botApi
	orders    orderService
	customers customerService
	catalog   catalogService
	pricer    pricer
	cart      cartView
	l10n      localizer
	logger    *slog.Logger

	minOrderTotal float64
}

func NewFlow(
	bot botApi,
	orderSvc orderService,
	customerSvc customerService,
	catalogSvc catalogService,
	pricer pricer,
	cart cartView,
	l10n localizer,
	minOrderTotal float64,
	logger *slog.Logger,
) *Flow {
	return &Flow{
		bot:           bot,
		orders:        orderSvc,
		customers:     customerSvc,
		catalog:       catalogSvc,
		pricer:        pricer,
		cart:          cart,
		l10n:          l10n,
		minOrderTotal: minOrderTotal,
		logger:        logger,
	}
}

// Start проверяет корзину и минимальную сумму и запускает сбор данных.
func (f *Flow) Start(ctx context.Context, s *sessions.Session, chatID int64) error {
	if s.Cart.IsEmpty() {
		return f.sendText(s, chatID, "cart.empty", nil)
	}

	priced, err := f.priceCart(ctx, s)
	if err != nil {
		return fmt.Errorf("price cart: %w", err)
	}
	if len(priced.Lines) == 0 {
		s.Cart.Clear()
		return f.sendText(s, chatID, "cart.empty", nil)
	}

	if priced.Total < f.minOrderTotal {
		return f.sendText(s, chatID, "cart.min_order", map[string]interface{}{
			"min": fmt.Sprintf("%.0f", f.minOrderTotal),
		})
	}

	s.ResetCheckout()
	s.Step = sessions.StepCheckoutName

	return f.sendText(s, chatID, "checkout.enter_name", nil)
}

// HandleText принимает текстовый ввод текущего шага оформления.
func (f *Flow) HandleText(ctx context.Context, s *sessions.Session, chatID int64, text string) error {
	switch s.Step {
	case sessions.StepCheckoutName:
		name, ok := ValidateName(text)
		if !ok {
			return f.sendText(s, chatID, "checkout.enter_name", nil)
		}
		s.Checkout.Name = name
		s.Step = sessions.StepCheckoutPhone
		return f.sendText(s, chatID, "checkout.enter_phone", nil)

	case sessions.StepCheckoutPhone:
		phone, ok := ValidatePhone(text)
		if !ok {
			return f.sendText(s, chatID, "checkout.invalid_phone", nil)
		}
		s.Checkout.Phone = phone
		s.Step = sessions.StepCheckoutAddress
		return f.sendText(s, chatID, "checkout.enter_address", nil)

	case sessions.StepCheckoutAddress:
		address, ok := ValidateAddress(text)
		if !ok {
			return f.sendText(s, chatID, "checkout.invalid_address", nil)
		}
		s.Checkout.Address = address
		return f.askPackaging(s, chatID)

	default:
		return f.sendText(s, chatID, "errors.use_buttons", nil)
	}
}

// HandleCallback обрабатывает кнопки оформления.
// Возвращает false, если callback не относится к оформлению.
func (f *Flow) HandleCallback(ctx context.Context, s *sessions.Session, query *tgbotapi.CallbackQuery) (bool, error) {
	if query.Message == nil {
		return false, nil
	}
	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case data == "checkout_start":
		return true, f.Start(ctx, s, chatID)
	case data == "checkout_cancel":
		return true, f.Cancel(ctx, s, chatID)
	case data == "pack:yes":
		s.Checkout.NeedsPackaging = true
		return true, f.showPackagingPicker(ctx, s, chatID)
	case data == "pack:no":
		s.Checkout.NeedsPackaging = false
		return true, f.showSummary(ctx, s, chatID)
	case data == "pack:done":
		return true, f.showSummary(ctx, s, chatID)
	case strings.HasPrefix(data, "pack:"):
		return true, f.addPackaging(ctx, s, chatID, strings.TrimPrefix(data, "pack:"))
	case data == "confirm_order":
		return true, f.Commit(ctx, s, chatID)
	}

	return false, nil
}

// Cancel возвращает к корзине; корзина сохраняется, данные оформления стираются.
func (f *Flow) Cancel(ctx context.Context, s *sessions.Session, chatID int64) error {
	s.ResetCheckout()
	s.Step = sessions.StepMenu

	if err := f.sendText(s, chatID, "checkout.cancelled", nil); err != nil {
		return err
	}
	return f.cart.Execute(ctx, s, chatID)
}

func (f *Flow) askPackaging(s *sessions.Session, chatID int64) error {
	s.Step = sessions.StepCheckoutPackaging

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.t(s, "checkout.yes"), "pack:yes"),
			tgbotapi.NewInlineKeyboardButtonData(f.t(s, "checkout.no"), "pack:no"),
		),
		f.cancelRow(s),
	)

	msg := tgbotapi.NewMessage(chatID, f.t(s, "checkout.packaging_question"))
	msg.ReplyMarkup = keyboard
	_, err := f.bot.Send(msg)
	return err
}

func (f *Flow) showPackagingPicker(ctx context.Context, s *sessions.Session, chatID int64) error {
	products, err := f.catalog.PackagingProducts(ctx)
	if err != nil {
		return fmt.Errorf("list packaging: %w", err)
	}
	if len(products) == 0 {
		return f.showSummary(ctx, s, chatID)
	}

	s.Step = sessions.StepCheckoutSelectPackaging

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Name, fmt.Sprintf("pack:%d", p.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(f.t(s, "checkout.packaging_done"), "pack:done"),
	))
	rows = append(rows, f.cancelRow(s))

	msg := tgbotapi.NewMessage(chatID, f.t(s, "checkout.packaging_choose"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = f.bot.Send(msg)
	return err
}

func (f *Flow) addPackaging(ctx context.Context, s *sessions.Session, chatID int64, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return f.sendText(s, chatID, "errors.use_buttons", nil)
	}

	if _, err := f.catalog.Product(ctx, id); err != nil {
		return f.sendText(s, chatID, "errors.product_not_found", nil)
	}

	s.Cart.Add(carts.LineKey{ProductID: id}, 1)
	return f.showPackagingPicker(ctx, s, chatID)
}

func (f *Flow) showSummary(ctx context.Context, s *sessions.Session, chatID int64) error {
	priced, err := f.priceCart(ctx, s)
	if err != nil {
		return fmt.Errorf("price cart: %w", err)
	}

	customer, err := f.customers.GetOrCreateByTelegramID(ctx, s.TelegramID)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}

	total := priced.Total
	var discounts strings.Builder
	if customer.NextOrderDiscount > 0 && customer.NextOrderDiscount < total {
		discounts.WriteString(f.t(s, "checkout.discount_personal", map[string]interface{}{
			"amount": fmt.Sprintf("%.2f", customer.NextOrderDiscount),
		}))
		total -= customer.NextOrderDiscount
	}
	if customer.ReferralBalance > 0 && total > 0 {
		referral := customer.ReferralBalance
		if referral > total {
			referral = total
		}
		discounts.WriteString(f.t(s, "checkout.discount_referral", map[string]interface{}{
			"amount": fmt.Sprintf("%.2f", referral),
		}))
		total -= referral
	}

	s.Step = sessions.StepAwaitingConfirmation

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.t(s, "checkout.confirm"), "confirm_order"),
			tgbotapi.NewInlineKeyboardButtonData(f.t(s, "checkout.cancel"), "checkout_cancel"),
		),
	)

	text := f.t(s, "checkout.summary", map[string]interface{}{
		"name":      s.Checkout.Name,
		"phone":     s.Checkout.Phone,
		"address":   s.Checkout.Address,
		"lines":     summaryLines(priced),
		"discounts": discounts.String(),
		"total":     fmt.Sprintf("%.2f", total),
	})

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	_, err = f.bot.Send(msg)
	return err
}

// Commit создаёт заказ и очищает корзину с данными оформления.
func (f *Flow) Commit(ctx context.Context, s *sessions.Session, chatID int64) error {
	if s.Step != sessions.StepAwaitingConfirmation {
		return f.sendText(s, chatID, "errors.use_buttons", nil)
	}

	priced, err := f.priceCart(ctx, s)
	if err != nil {
		return fmt.Errorf("price cart: %w", err)
	}

	customer, err := f.customers.GetOrCreateByTelegramID(ctx, s.TelegramID)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}

	result, err := f.orders.Checkout(ctx, orders.CheckoutInput{
		Customer: customer,
		Priced:   priced,
		Name:     s.Checkout.Name,
		Phone:    s.Checkout.Phone,
		Address:  s.Checkout.Address,
	})
	if err != nil {
		f.logger.Error("checkout failed", "telegram_id", s.TelegramID, "error", err)
		return f.sendText(s, chatID, "common.error", nil)
	}

	s.Cart.Clear()
	s.ResetCheckout()
	s.Step = sessions.StepMenu

	var discounts strings.Builder
	if result.PersonalDiscount > 0 {
		discounts.WriteString(f.t(s, "checkout.discount_personal", map[string]interface{}{
			"amount": fmt.Sprintf("%.2f", result.PersonalDiscount),
		}))
	}
	if result.ReferralDiscount > 0 {
		discounts.WriteString(f.t(s, "checkout.discount_referral", map[string]interface{}{
			"amount": fmt.Sprintf("%.2f", result.ReferralDiscount),
		}))
	}

	return f.sendText(s, chatID, "checkout.confirmed", map[string]interface{}{
		"order_number": result.Order.OrderNumber,
		"lines":        summaryLines(priced),
		"discounts":    discounts.String(),
		"total":        fmt.Sprintf("%.2f", result.Order.TotalUAH),
		"points":       result.PointsToEarn,
	})
}

// summaryLines - строки корзины для сводки и подтверждения заказа.
func summaryLines(priced *carts.Priced) string {
	var lines strings.Builder
	for _, line := range priced.Lines {
		height := ""
		if line.Key.Height != "" {
			height = " " + line.Key.Height + " см"
		}
		fmt.Fprintf(&lines, "%s%s x%d = %.2f UAH\n", line.Product.Name, height, line.Quantity, line.LineTotal)
	}
	return strings.TrimRight(lines.String(), "\n")
}

func (f *Flow) priceCart(ctx context.Context, s *sessions.Session) (*carts.Priced, error) {
	wholesale := s.CustomerType == customers.TypeWholesale
	return carts.PriceCart(ctx, &s.Cart, f.catalog, f.pricer, wholesale)
}

func (f *Flow) cancelRow(s *sessions.Session) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(f.t(s, "checkout.cancel"), "checkout_cancel"),
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
