package cmds

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/telegram/sessions"
)

type RateCommand struct {
	bot   botApi
	rates rateSource
	l10n  localizer
}

type rateSource interface {
	Rate() float64
	Set(ctx context.Context, rate float64) error
}

func NewRateCommand(bot botApi, rates rateSource, l10n localizer) *RateCommand {
	return &RateCommand{bot: bot, rates: rates, l10n: l10n}
}

// Prompt показывает текущий курс и просит ввести новый.
func (c *RateCommand) Prompt(s *sessions.Session, chatID int64) error {
	s.Step = sessions.StepSetRate
	text := c.l10n.Get(s.Language, "admin.rate_prompt", map[string]interface{}{
		"rate": c.rates.Rate(),
	})
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := c.bot.Send(msg)
	return err
}

// Execute парсит введённый курс и сохраняет его в настройках.
func (c *RateCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64, text string) error {
	rate, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil || rate <= 0 {
		msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "admin.rate_invalid", nil))
		_, err := c.bot.Send(msg)
		return err
	}

	if err := c.rates.Set(ctx, rate); err != nil {
		return err
	}

	s.Step = sessions.StepMenu
	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "admin.rate_set", map[string]interface{}{
		"rate": rate,
	}))
	_, err = c.bot.Send(msg)
	return err
}
