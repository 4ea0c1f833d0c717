package cmds

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/orders"
	"kvitka-bot/internal/telegram/sessions"
)

const historyLimit = 10

type HistoryCommand struct {
	bot    botApi
	orders historyOrderService
	l10n   localizer
}

type historyOrderService interface {
	ListByCustomer(ctx context.Context, customerID int64, limit int) ([]*orders.Order, error)
}

func NewHistoryCommand(bot botApi, orderSvc historyOrderService, l10n localizer) *HistoryCommand {
	return &HistoryCommand{bot: bot, orders: orderSvc, l10n: l10n}
}

// Execute показывает последние заказы покупателя.
func (c *HistoryCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64) error {
	t := func(key string, params map[string]interface{}) string {
		return c.l10n.Get(s.Language, key, params)
	}

	var list []*orders.Order
	if s.CustomerID != 0 {
		var err error
		list, err = c.orders.ListByCustomer(ctx, s.CustomerID, historyLimit)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
	}

	if len(list) == 0 {
		msg := tgbotapi.NewMessage(chatID, t("history.empty", nil))
		_, err := c.bot.Send(msg)
		return err
	}

	var text strings.Builder
	text.WriteString(t("history.title", nil))
	text.WriteString("\n\n")
	for _, order := range list {
		text.WriteString(t("history.line", map[string]interface{}{
			"order_number": order.OrderNumber,
			"total":        fmt.Sprintf("%.2f", order.TotalUAH),
			"status":       t("statuses."+string(order.Status), nil),
		}))
		text.WriteString("\n")
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	_, err := c.bot.Send(msg)
	return err
}
