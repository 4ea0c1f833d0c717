package cmds

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/localization"
	"kvitka-bot/internal/telegram/sessions"
)

type MenuCommand struct {
	bot       botApi
	l10n      localizer
	customers menuCustomerService
}

type menuCustomerService interface {
	SetLanguage(ctx context.Context, customerID int64, language string) error
}

func NewMenuCommand(bot botApi, l10n localizer, customers menuCustomerService) *MenuCommand {
	return &MenuCommand{bot: bot, l10n: l10n, customers: customers}
}

// Execute показывает главное меню - хаб всех экранов.
func (c *MenuCommand) Execute(s *sessions.Session, chatID int64) error {
	s.Step = sessions.StepMenu
	s.ResetCatalog()

	t := func(key string) string { return c.l10n.Get(s.Language, key, nil) }

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t("menu.catalog"), "menu_catalog"),
			tgbotapi.NewInlineKeyboardButtonData(t("menu.cart"), "menu_cart"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t("menu.favorites"), "menu_favorites"),
			tgbotapi.NewInlineKeyboardButtonData(t("menu.search"), "menu_search"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t("menu.promotions"), "menu_promotions"),
			tgbotapi.NewInlineKeyboardButtonData(t("menu.history"), "menu_history"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t("menu.loyalty"), "menu_loyalty"),
			tgbotapi.NewInlineKeyboardButtonData(t("menu.referral"), "menu_referral"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t("menu.settings"), "menu_settings"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, t("menu.title"))
	msg.ReplyMarkup = keyboard
	_, err := c.bot.Send(msg)
	return err
}

// Settings показывает переключение языка.
func (c *MenuCommand) Settings(s *sessions.Session, chatID int64) error {
	var row []tgbotapi.InlineKeyboardButton
	for _, lang := range localization.Languages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(lang, "setlang:"+lang))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(s.Language, "common.main_menu", nil), "menu"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "settings.title", nil))
	msg.ReplyMarkup = keyboard
	_, err := c.bot.Send(msg)
	return err
}

// SetLanguage меняет язык сессии и сохраняет его в профиле покупателя.
func (c *MenuCommand) SetLanguage(ctx context.Context, s *sessions.Session, chatID int64, lang string) error {
	valid := false
	for _, known := range localization.Languages {
		if known == lang {
			valid = true
			break
		}
	}
	if !valid {
		return nil
	}

	s.Language = lang
	if s.CustomerID != 0 {
		if err := c.customers.SetLanguage(ctx, s.CustomerID, lang); err != nil {
			return err
		}
	}

	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "settings.language_set", nil))
	_, err := c.bot.Send(msg)
	if err != nil {
		return err
	}

	return c.Execute(s, chatID)
}
