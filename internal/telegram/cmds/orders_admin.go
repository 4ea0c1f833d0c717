package cmds

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/stories/orders"
	"kvitka-bot/internal/telegram/sessions"
)

const adminOrdersLimit = 10

type OrdersAdminCommand struct {
	bot      botApi
	orders   adminOrderService
	notifier statusNotifier
	l10n     localizer
}

type adminOrderService interface {
	ListRecent(ctx context.Context, limit int) ([]*orders.Order, error)
	Get(ctx context.Context, criteria orders.GetCriteria) (*orders.Order, error)
	TransitionStatus(ctx context.Context, orderID int64, to orders.Status) (*orders.Transition, error)
}

type statusNotifier interface {
	NotifyStatusChange(transition *orders.Transition, customer *customers.Customer)
}

func NewOrdersAdminCommand(bot botApi, orderSvc adminOrderService, notifier statusNotifier, l10n localizer) *OrdersAdminCommand {
	return &OrdersAdminCommand{bot: bot, orders: orderSvc, notifier: notifier, l10n: l10n}
}

// Execute показывает последние заказы с кнопками смены статуса.
func (c *OrdersAdminCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64) error {
	list, err := c.orders.ListRecent(ctx, adminOrdersLimit)
	if err != nil {
		return fmt.Errorf("list recent orders: %w", err)
	}

	t := func(key string, params map[string]interface{}) string {
		return c.l10n.Get(s.Language, key, params)
	}

	if len(list) == 0 {
		msg := tgbotapi.NewMessage(chatID, t("admin.no_orders", nil))
		_, err := c.bot.Send(msg)
		return err
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, order := range list {
		label := fmt.Sprintf("%s — %.2f UAH — %s", order.OrderNumber, order.TotalUAH, order.Status)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("admorder:%d", order.ID)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, t("admin.orders_title", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = c.bot.Send(msg)
	return err
}

// HandleCallback обрабатывает выбор заказа и смену статуса.
func (c *OrdersAdminCommand) HandleCallback(ctx context.Context, s *sessions.Session, query *tgbotapi.CallbackQuery) (bool, error) {
	if query.Message == nil {
		return false, nil
	}
	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case strings.HasPrefix(data, "admorder:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "admorder:"), 10, 64)
		if err != nil {
			return true, nil
		}
		return true, c.showStatusChoice(ctx, s, chatID, id)

	case strings.HasPrefix(data, "admst:"):
		raw := strings.TrimPrefix(data, "admst:")
		idRaw, statusRaw, ok := strings.Cut(raw, ":")
		if !ok {
			return true, nil
		}
		id, err := strconv.ParseInt(idRaw, 10, 64)
		if err != nil {
			return true, nil
		}
		return true, c.transition(ctx, s, chatID, id, orders.Status(statusRaw))
	}

	return false, nil
}

func (c *OrdersAdminCommand) showStatusChoice(ctx context.Context, s *sessions.Session, chatID int64, orderID int64) error {
	order, err := c.orders.Get(ctx, orders.GetCriteria{ID: &orderID})
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "admin.no_orders", nil))
		_, err := c.bot.Send(msg)
		return err
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, status := range orders.KnownStatuses {
		if status == order.Status {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				string(status),
				fmt.Sprintf("admst:%d:%s", order.ID, status),
			),
		))
	}

	text := c.l10n.Get(s.Language, "admin.choose_status", map[string]interface{}{
		"order_number": order.OrderNumber,
	})

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = c.bot.Send(msg)
	return err
}

func (c *OrdersAdminCommand) transition(ctx context.Context, s *sessions.Session, chatID int64, orderID int64, to orders.Status) error {
	transition, err := c.orders.TransitionStatus(ctx, orderID, to)
	if err != nil {
		return fmt.Errorf("transition order %d: %w", orderID, err)
	}

	if transition.From != transition.To && transition.Customer != nil {
		c.notifier.NotifyStatusChange(transition, transition.Customer)
	}

	text := c.l10n.Get(s.Language, "admin.status_set", map[string]interface{}{
		"order_number": transition.Order.OrderNumber,
		"status":       string(to),
	})

	msg := tgbotapi.NewMessage(chatID, text)
	_, err = c.bot.Send(msg)
	return err
}
