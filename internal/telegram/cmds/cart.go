package cmds

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/carts"
	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/stories/pricing"
	"kvitka-bot/internal/telegram/sessions"
)

type CartCommand struct {
	bot     botApi
	catalog cartProductSource
	pricer  cartPricer
	l10n    localizer
}

type cartProductSource interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
}

type cartPricer interface {
	Price(p catalog.Product, opts pricing.Opts) (float64, error)
}

func NewCartCommand(bot botApi, catalogSvc cartProductSource, pricer cartPricer, l10n localizer) *CartCommand {
	return &CartCommand{bot: bot, catalog: catalogSvc, pricer: pricer, l10n: l10n}
}

// Execute показывает корзину со строками, суммой и кнопками управления.
func (c *CartCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64) error {
	t := func(key string, params map[string]interface{}) string {
		return c.l10n.Get(s.Language, key, params)
	}

	if s.Cart.IsEmpty() {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(t("common.to_catalog", nil), "menu_catalog"),
			),
		)
		msg := tgbotapi.NewMessage(chatID, t("cart.empty", nil))
		msg.ReplyMarkup = keyboard
		_, err := c.bot.Send(msg)
		return err
	}

	wholesale := s.CustomerType == customers.TypeWholesale
	priced, err := carts.PriceCart(ctx, &s.Cart, c.catalog, c.pricer, wholesale)
	if err != nil {
		return fmt.Errorf("price cart: %w", err)
	}

	// Пропавшие из каталога строки убираем из корзины и сообщаем об этом.
	for _, missing := range priced.Missing {
		s.Cart.Remove(missing)
	}

	var text strings.Builder
	text.WriteString(t("cart.title", nil))
	text.WriteString("\n\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, line := range priced.Lines {
		height := ""
		if line.Key.Height != "" {
			height = " " + line.Key.Height + " см"
		}
		text.WriteString(t("cart.line", map[string]interface{}{
			"name":   line.Product.Name,
			"height": height,
			"qty":    line.Quantity,
			"total":  fmt.Sprintf("%.2f", line.LineTotal),
		}))
		text.WriteString("\n")

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("❌ %s%s", line.Product.Name, height),
				fmt.Sprintf("cartrm:%d:%s", line.Key.ProductID, line.Key.Height),
			),
		))
	}

	if len(priced.Missing) > 0 {
		text.WriteString("\n")
		text.WriteString(t("cart.item_unavailable", nil))
		text.WriteString("\n")
	}

	text.WriteString("\n")
	text.WriteString(t("cart.total", map[string]interface{}{
		"total": fmt.Sprintf("%.2f", priced.Total),
	}))

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(t("cart.checkout", nil), "checkout_start"),
		tgbotapi.NewInlineKeyboardButtonData(t("cart.clear", nil), "cart_clear"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(t("common.main_menu", nil), "menu"),
	))

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = c.bot.Send(msg)
	return err
}

// HandleCallback обрабатывает удаление строки и очистку корзины.
func (c *CartCommand) HandleCallback(ctx context.Context, s *sessions.Session, query *tgbotapi.CallbackQuery) (bool, error) {
	if query.Message == nil {
		return false, nil
	}
	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case data == "cart_clear":
		s.Cart.Clear()
		msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "cart.cleared", nil))
		_, err := c.bot.Send(msg)
		return true, err

	case strings.HasPrefix(data, "cartrm:"):
		raw := strings.TrimPrefix(data, "cartrm:")
		idRaw, height, _ := strings.Cut(raw, ":")
		id, err := strconv.ParseInt(idRaw, 10, 64)
		if err != nil {
			return true, nil
		}
		s.Cart.Remove(carts.LineKey{ProductID: id, Height: height})
		return true, c.Execute(ctx, s, chatID)
	}

	return false, nil
}
