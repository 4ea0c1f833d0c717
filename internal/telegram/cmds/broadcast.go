package cmds

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/telegram/sessions"
)

type BroadcastCommand struct {
	bot        botApi
	customers  broadcastCustomerService
	dispatcher broadcaster
	l10n       localizer
}

type broadcastCustomerService interface {
	ListForBroadcast(ctx context.Context) ([]*customers.Customer, error)
}

type broadcaster interface {
	Broadcast(ctx context.Context, recipients []*customers.Customer, text string) (sent, failed int)
}

func NewBroadcastCommand(bot botApi, customerSvc broadcastCustomerService, dispatcher broadcaster, l10n localizer) *BroadcastCommand {
	return &BroadcastCommand{bot: bot, customers: customerSvc, dispatcher: dispatcher, l10n: l10n}
}

// Prompt просит ввести текст рассылки.
func (c *BroadcastCommand) Prompt(s *sessions.Session, chatID int64) error {
	s.Step = sessions.StepBroadcast
	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "admin.broadcast_prompt", nil))
	_, err := c.bot.Send(msg)
	return err
}

// Execute рассылает текст всем незаблокированным покупателям.
func (c *BroadcastCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64, text string) error {
	recipients, err := c.customers.ListForBroadcast(ctx)
	if err != nil {
		return err
	}

	sent, failed := c.dispatcher.Broadcast(ctx, recipients, text)

	s.Step = sessions.StepMenu
	report := c.l10n.Get(s.Language, "admin.broadcast_done", map[string]interface{}{
		"sent":   sent,
		"failed": failed,
	})

	msg := tgbotapi.NewMessage(chatID, report)
	_, err = c.bot.Send(msg)
	return err
}
