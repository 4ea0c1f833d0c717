package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/telegram/sessions"
)

type ReferralCommand struct {
	bot         botApi
	customers   referralCustomerService
	l10n        localizer
	botUsername string
}

type referralCustomerService interface {
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64) (*customers.Customer, error)
}

func NewReferralCommand(bot botApi, customerSvc referralCustomerService, l10n localizer, botUsername string) *ReferralCommand {
	return &ReferralCommand{bot: bot, customers: customerSvc, l10n: l10n, botUsername: botUsername}
}

// Execute показывает реферальный код, ссылку, баланс и число приглашённых.
func (c *ReferralCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64) error {
	customer, err := c.customers.GetOrCreateByTelegramID(ctx, s.TelegramID)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s", c.botUsername, customer.ReferralCode)

	text := c.l10n.Get(s.Language, "referral.title", map[string]interface{}{
		"code":    customer.ReferralCode,
		"count":   customer.ReferralCount,
		"balance": fmt.Sprintf("%.2f", customer.ReferralBalance),
		"link":    link,
	})

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = c.bot.Send(msg)
	return err
}
