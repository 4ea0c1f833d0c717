package telegram

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/telegram/cmds"
	"kvitka-bot/internal/telegram/flows/catalognav"
	"kvitka-bot/internal/telegram/flows/checkout"
	"kvitka-bot/internal/telegram/sessions"
)

type Router struct {
	bot          botApi
	store        *sessions.Store
	customers    customerService
	l10n         localizer
	adminChecker adminChecker
	tracer       trace.Tracer
	logger       *slog.Logger

	catalogFlow  *catalognav.Flow
	checkoutFlow *checkout.Flow

	menuCommand       *cmds.MenuCommand
	cartCommand       *cmds.CartCommand
	favoritesCommand  *cmds.FavoritesCommand
	historyCommand    *cmds.HistoryCommand
	loyaltyCommand    *cmds.LoyaltyCommand
	referralCommand   *cmds.ReferralCommand
	promotionsCommand *cmds.PromotionsCommand
	searchCommand     *cmds.SearchCommand
	ordersAdmin       *cmds.OrdersAdminCommand
	broadcastCommand  *cmds.BroadcastCommand
	rateCommand       *cmds.RateCommand
}

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type customerService interface {
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64) (*customers.Customer, error)
	BindReferrer(ctx context.Context, customer *customers.Customer, code string) error
	SetLanguage(ctx context.Context, customerID int64, language string) error
	SetProfile(ctx context.Context, customerID int64, city string, ct customers.CustomerType) error
}

type adminChecker interface {
	IsAdmin(telegramID int64) bool
}

func NewRouter(
	bot botApi,
	store *sessions.Store,
	customerSvc customerService,
	l10n localizer,
	checker adminChecker,
	tracer trace.Tracer,
	logger *slog.Logger,
	catalogFlow *catalognav.Flow,
	checkoutFlow *checkout.Flow,
	menuCommand *cmds.MenuCommand,
	cartCommand *cmds.CartCommand,
	favoritesCommand *cmds.FavoritesCommand,
	historyCommand *cmds.HistoryCommand,
	loyaltyCommand *cmds.LoyaltyCommand,
	referralCommand *cmds.ReferralCommand,
	promotionsCommand *cmds.PromotionsCommand,
	searchCommand *cmds.SearchCommand,
	ordersAdmin *cmds.OrdersAdminCommand,
	broadcastCommand *cmds.BroadcastCommand,
	rateCommand *cmds.RateCommand,
) *Router {
	return &Router{
		bot:               bot,
		store:             store,
		customers:         customerSvc,
		l10n:              l10n,
		adminChecker:      checker,
		tracer:            tracer,
		logger:            logger,
		catalogFlow:       catalogFlow,
		checkoutFlow:      checkoutFlow,
		menuCommand:       menuCommand,
		cartCommand:       cartCommand,
		favoritesCommand:  favoritesCommand,
		historyCommand:    historyCommand,
		loyaltyCommand:    loyaltyCommand,
		referralCommand:   referralCommand,
		promotionsCommand: promotionsCommand,
		searchCommand:     searchCommand,
		ordersAdmin:       ordersAdmin,
		broadcastCommand:  broadcastCommand,
		rateCommand:       rateCommand,
	}
}

type localizer interface {
	Get(lang, key string, params map[string]interface{}) string
}

// Route - единая точка входа для каждого апдейта из long poll.
func (r *Router) Route(update *tgbotapi.Update) error {
	ctx, span := r.tracer.Start(context.Background(), "telegram.update")
	defer span.End()

	telegramID := extractUserID(update)
	chatID := extractChatID(update)
	if telegramID == 0 || chatID == 0 {
		return nil
	}
	span.SetAttributes(attribute.Int64("telegram.user_id", telegramID))

	s, err := r.store.GetOrCreate(ctx, telegramID)
	if err != nil {
		_ = r.sendError(s, chatID)
		return err
	}

	if update.Message != nil && update.Message.IsCommand() {
		span.SetAttributes(attribute.String("telegram.command", update.Message.Command()))
		return r.handleCommand(ctx, s, update)
	}

	if update.CallbackQuery != nil {
		span.SetAttributes(attribute.String("telegram.callback", update.CallbackQuery.Data))
		return r.handleCallback(ctx, s, update.CallbackQuery)
	}

	if update.Message != nil && update.Message.Text != "" {
		return r.handleText(ctx, s, chatID, update.Message.Text)
	}

	return nil
}

func (r *Router) handleCommand(ctx context.Context, s *sessions.Session, update *tgbotapi.Update) error {
	chatID := update.Message.Chat.ID

	switch update.Message.Command() {
	case "start":
		return r.handleStart(ctx, s, chatID, update.Message.CommandArguments())
	case "menu":
		if s.CustomerID == 0 {
			return r.handleStart(ctx, s, chatID, "")
		}
		return r.menuCommand.Execute(s, chatID)
	case "orders":
		if !r.adminChecker.IsAdmin(s.TelegramID) {
			return r.sendText(s, chatID, "admin.no_rights", nil)
		}
		return r.ordersAdmin.Execute(ctx, s, chatID)
	case "broadcast":
		if !r.adminChecker.IsAdmin(s.TelegramID) {
			return r.sendText(s, chatID, "admin.no_rights", nil)
		}
		return r.broadcastCommand.Prompt(s, chatID)
	case "setrate":
		if !r.adminChecker.IsAdmin(s.TelegramID) {
			return r.sendText(s, chatID, "admin.no_rights", nil)
		}
		return r.rateCommand.Prompt(s, chatID)
	default:
		if s.CustomerID == 0 {
			return r.handleStart(ctx, s, chatID, "")
		}
		return r.menuCommand.Execute(s, chatID)
	}
}

// handleStart обрабатывает /start, включая реферальный deep-link /start <code>.
func (r *Router) handleStart(ctx context.Context, s *sessions.Session, chatID int64, payload string) error {
	payload = strings.TrimSpace(payload)

	if s.CustomerID != 0 {
		if payload != "" {
			customer, err := r.customers.GetOrCreateByTelegramID(ctx, s.TelegramID)
			if err == nil {
				if err := r.customers.BindReferrer(ctx, customer, payload); err != nil {
					r.logger.Warn("Referrer binding failed",
						slog.Int64("telegram_id", s.TelegramID),
						slog.Any("error", err))
				}
			}
		}
		return r.menuCommand.Execute(s, chatID)
	}

	// Новый посетитель: код сохраняем до создания записи покупателя
	s.PendingReferral = payload
	s.Step = sessions.StepLanguage

	msg := tgbotapi.NewMessage(chatID, r.l10n.Get("ua", "onboarding.choose_language", nil))
	msg.ReplyMarkup = languageKeyboard()
	_, err := r.bot.Send(msg)
	return err
}

func (r *Router) handleCallback(ctx context.Context, s *sessions.Session, query *tgbotapi.CallbackQuery) error {
	// Ack сразу, чтобы кнопка не «висела»
	_, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, ""))

	if query.Message == nil {
		return nil
	}
	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case data == "menu":
		return r.menuCommand.Execute(s, chatID)
	case data == "menu_catalog":
		return r.catalogFlow.Start(s, chatID)
	case data == "menu_cart":
		return r.cartCommand.Execute(ctx, s, chatID)
	case data == "menu_favorites":
		return r.favoritesCommand.Execute(ctx, s, chatID)
	case data == "menu_search":
		return r.searchCommand.Prompt(s, chatID)
	case data == "menu_promotions":
		return r.promotionsCommand.Execute(ctx, s, chatID)
	case data == "menu_history":
		return r.historyCommand.Execute(ctx, s, chatID)
	case data == "menu_loyalty":
		return r.loyaltyCommand.Execute(ctx, s, chatID)
	case data == "menu_referral":
		return r.referralCommand.Execute(ctx, s, chatID)
	case data == "menu_settings":
		return r.menuCommand.Settings(s, chatID)
	case strings.HasPrefix(data, "lang:"):
		return r.handleOnboardingLanguage(ctx, s, chatID, strings.TrimPrefix(data, "lang:"))
	case strings.HasPrefix(data, "setlang:"):
		return r.menuCommand.SetLanguage(ctx, s, chatID, strings.TrimPrefix(data, "setlang:"))
	case strings.HasPrefix(data, "ctype:"):
		return r.handleCustomerType(ctx, s, chatID, strings.TrimPrefix(data, "ctype:"))
	case strings.HasPrefix(data, "admorder:") || strings.HasPrefix(data, "admst:"):
		if !r.adminChecker.IsAdmin(s.TelegramID) {
			return r.sendText(s, chatID, "admin.no_rights", nil)
		}
		_, err := r.ordersAdmin.HandleCallback(ctx, s, query)
		return err
	}

	if handled, err := r.cartCommand.HandleCallback(ctx, s, query); handled {
		return err
	}
	if handled, err := r.checkoutFlow.HandleCallback(ctx, s, query); handled {
		return err
	}
	if handled, err := r.catalogFlow.HandleCallback(ctx, s, query); handled {
		return err
	}

	return nil
}

func (r *Router) handleText(ctx context.Context, s *sessions.Session, chatID int64, text string) error {
	switch s.Step {
	case sessions.StepLanguage:
		return r.sendText(s, chatID, "errors.use_buttons", nil)

	case sessions.StepCity:
		city := strings.TrimSpace(text)
		if city == "" {
			return r.sendText(s, chatID, "onboarding.choose_city", nil)
		}
		s.City = city
		s.Step = sessions.StepType

		msg := tgbotapi.NewMessage(chatID, r.t(s, "onboarding.choose_type"))
		msg.ReplyMarkup = customerTypeKeyboard(
			r.t(s, "onboarding.type_flower_shop"),
			r.t(s, "onboarding.type_wholesale"),
		)
		_, err := r.bot.Send(msg)
		return err

	case sessions.StepQuantity:
		return r.catalogFlow.HandleQuantity(ctx, s, chatID, text)

	case sessions.StepCheckoutName, sessions.StepCheckoutPhone, sessions.StepCheckoutAddress:
		return r.checkoutFlow.HandleText(ctx, s, chatID, text)

	case sessions.StepSearch:
		return r.searchCommand.Execute(ctx, s, chatID, text)

	case sessions.StepBroadcast:
		if !r.adminChecker.IsAdmin(s.TelegramID) {
			return r.sendText(s, chatID, "admin.no_rights", nil)
		}
		return r.broadcastCommand.Execute(ctx, s, chatID, text)

	case sessions.StepSetRate:
		if !r.adminChecker.IsAdmin(s.TelegramID) {
			return r.sendText(s, chatID, "admin.no_rights", nil)
		}
		return r.rateCommand.Execute(ctx, s, chatID, text)

	default:
		return r.sendText(s, chatID, "errors.use_buttons", nil)
	}
}

// handleOnboardingLanguage регистрирует покупателя при первом выборе языка.
func (r *Router) handleOnboardingLanguage(ctx context.Context, s *sessions.Session, chatID int64, lang string) error {
	s.Language = lang

	customer, err := r.customers.GetOrCreateByTelegramID(ctx, s.TelegramID)
	if err != nil {
		return err
	}
	s.CustomerID = customer.ID

	if err := r.customers.SetLanguage(ctx, customer.ID, lang); err != nil {
		return err
	}

	if s.PendingReferral != "" {
		if err := r.customers.BindReferrer(ctx, customer, s.PendingReferral); err != nil {
			r.logger.Warn("Referrer binding failed",
				slog.Int64("telegram_id", s.TelegramID),
				slog.Any("error", err))
		}
		s.PendingReferral = ""
	}

	s.Step = sessions.StepCity
	return r.sendText(s, chatID, "onboarding.choose_city", nil)
}

func (r *Router) handleCustomerType(ctx context.Context, s *sessions.Session, chatID int64, raw string) error {
	ct := customers.CustomerType(raw)
	if ct != customers.TypeFlowerShop && ct != customers.TypeWholesale {
		return r.sendText(s, chatID, "errors.use_buttons", nil)
	}

	if s.CustomerID != 0 {
		if err := r.customers.SetProfile(ctx, s.CustomerID, s.City, ct); err != nil {
			return err
		}
	}
	s.CustomerType = ct

	if err := r.sendText(s, chatID, "onboarding.welcome", nil); err != nil {
		return err
	}
	return r.menuCommand.Execute(s, chatID)
}

// SetupBotCommands регистрирует команды в меню Telegram.
func (r *Router) SetupBotCommands() error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Почати / Start"},
		{Command: "menu", Description: "Головне меню / Main menu"},
	}

	setCommandsConfig := tgbotapi.NewSetMyCommands(commands...)
	_, err := r.bot.Request(setCommandsConfig)
	return err
}

func (r *Router) sendText(s *sessions.Session, chatID int64, key string, params map[string]interface{}) error {
	msg := tgbotapi.NewMessage(chatID, r.l10n.Get(s.Language, key, params))
	_, err := r.bot.Send(msg)
	return err
}

func (r *Router) sendError(s *sessions.Session, chatID int64) error {
	lang := ""
	if s != nil {
		lang = s.Language
	}
	msg := tgbotapi.NewMessage(chatID, r.l10n.Get(lang, "common.error", nil))
	_, err := r.bot.Send(msg)
	return err
}

func (r *Router) t(s *sessions.Session, key string) string {
	return r.l10n.Get(s.Language, key, nil)
}

func extractUserID(update *tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

func extractChatID(update *tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
