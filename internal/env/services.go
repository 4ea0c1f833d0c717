package environment

import (
	"context"
	"log/slog"

	"kvitka-bot/internal/config"
	"kvitka-bot/internal/localization"
	"kvitka-bot/internal/notifications"
	"kvitka-bot/internal/storage"
	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/stories/orders"
	"kvitka-bot/internal/stories/pricing"
	"kvitka-bot/internal/telegram"
	"kvitka-bot/internal/telegram/cmds"
	"kvitka-bot/internal/telegram/flows/catalognav"
	"kvitka-bot/internal/telegram/flows/checkout"
	"kvitka-bot/internal/telegram/sessions"
	"kvitka-bot/internal/tracing"
	"kvitka-bot/internal/workers"
	"kvitka-bot/internal/workers/ratecache"
	"kvitka-bot/internal/workers/sessionsweep"

	"github.com/pkg/errors"
)

type Services struct {
	TelegramRouter *telegram.Router
	WorkerManager  *workers.Manager
	SessionStore   *sessions.Store
	Dispatcher     *notifications.Dispatcher
}

func newServices(ctx context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var s Services

	if clients.TelegramBot == nil {
		return nil, errors.New("telegram bot не инициализирован - проверьте TELEGRAM_BOT_TOKEN")
	}

	storageImpl := storage.New(clients.SQLiteDB.DB)
	if err := storageImpl.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "migrate schema")
	}

	l10n, err := localization.NewService()
	if err != nil {
		return nil, errors.Wrap(err, "load translations")
	}

	tracer, err := tracing.Init(cfg.Tracing, cfg.Env)
	if err != nil {
		return nil, errors.Wrap(err, "init tracing")
	}

	// Доменные сервисы
	rateCache := pricing.NewRateCache(storageImpl, cfg.Shop.FallbackUSDRate, logger)
	pricingSvc := pricing.NewService(rateCache, cfg.Shop.WholesaleDiscountPercent)
	catalogSvc := catalog.NewService(storageImpl, cfg.Shop.ProductCacheTTL)
	customerSvc := customers.NewService(storageImpl)
	orderSvc := orders.NewService(storageImpl, storageImpl, orders.LedgerRules{
		PointDivisor:       cfg.Shop.LoyaltyPointDivisor,
		TenthOrderDiscount: cfg.Shop.TenthOrderDiscount,
		ReferralBonus:      cfg.Shop.ReferralBonus,
	}, logger)

	dispatcher := notifications.NewDispatcher(clients.TelegramBot, l10n, logger)
	store := sessions.NewStore(customerSvc)
	adminChecker := telegram.NewAdminChecker(&cfg.Telegram)

	bot := clients.TelegramBot

	// Флоу и команды; экран корзины нужен оформлению для возврата по отмене
	catalogFlow := catalognav.NewFlow(bot, catalogSvc, pricingSvc, l10n, logger)
	cartCommand := cmds.NewCartCommand(bot, catalogSvc, pricingSvc, l10n)
	checkoutFlow := checkout.NewFlow(bot, orderSvc, customerSvc, catalogSvc, pricingSvc, cartCommand, l10n, cfg.Shop.MinOrderTotal, logger)

	menuCommand := cmds.NewMenuCommand(bot, l10n, customerSvc)
	favoritesCommand := cmds.NewFavoritesCommand(bot, catalogSvc, catalogFlow, l10n)
	historyCommand := cmds.NewHistoryCommand(bot, orderSvc, l10n)
	loyaltyCommand := cmds.NewLoyaltyCommand(bot, customerSvc, l10n)
	referralCommand := cmds.NewReferralCommand(bot, customerSvc, l10n, cfg.Telegram.BotUsername)
	promotionsCommand := cmds.NewPromotionsCommand(bot, catalogSvc, catalogFlow, l10n)
	searchCommand := cmds.NewSearchCommand(bot, catalogSvc, catalogFlow, l10n)
	ordersAdmin := cmds.NewOrdersAdminCommand(bot, orderSvc, dispatcher, l10n)
	broadcastCommand := cmds.NewBroadcastCommand(bot, customerSvc, dispatcher, l10n)
	rateCommand := cmds.NewRateCommand(bot, rateCache, l10n)

	s.TelegramRouter = telegram.NewRouter(
		bot,
		store,
		customerSvc,
		l10n,
		adminChecker,
		tracer,
		logger,
		catalogFlow,
		checkoutFlow,
		menuCommand,
		cartCommand,
		favoritesCommand,
		historyCommand,
		loyaltyCommand,
		referralCommand,
		promotionsCommand,
		searchCommand,
		ordersAdmin,
		broadcastCommand,
		rateCommand,
	)

	s.WorkerManager = workers.NewManager(logger,
		sessionsweep.NewWorker(store, cfg.Shop.SessionTTL, logger),
		ratecache.NewWorker(rateCache, cfg.Shop.RateRefreshInterval, logger),
	)
	s.SessionStore = store
	s.Dispatcher = dispatcher

	return &s, nil
}
