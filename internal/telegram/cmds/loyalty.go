package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/telegram/sessions"
)

type LoyaltyCommand struct {
	bot       botApi
	customers loyaltyCustomerService
	l10n      localizer
}

type loyaltyCustomerService interface {
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64) (*customers.Customer, error)
}

func NewLoyaltyCommand(bot botApi, customerSvc loyaltyCustomerService, l10n localizer) *LoyaltyCommand {
	return &LoyaltyCommand{bot: bot, customers: customerSvc, l10n: l10n}
}

// Execute показывает баллы и прогресс до скидки за 10-й заказ.
func (c *LoyaltyCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64) error {
	customer, err := c.customers.GetOrCreateByTelegramID(ctx, s.TelegramID)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}

	toNext := 10 - customer.TotalOrders%10

	text := c.l10n.Get(s.Language, "loyalty.title", map[string]interface{}{
		"points":   customer.LoyaltyPoints,
		"orders":   customer.TotalOrders,
		"to_next":  toNext,
		"discount": fmt.Sprintf("%.0f", customer.NextOrderDiscount),
	})

	msg := tgbotapi.NewMessage(chatID, text)
	_, err = c.bot.Send(msg)
	return err
}
