package checkout

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/stories/orders"
	"kvitka-bot/internal/stories/pricing"
	"kvitka-bot/internal/telegram/sessions"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	orderService interface {
		Checkout(ctx context.Context, in orders.CheckoutInput) (*orders.CheckoutResult, error)
	}

	customerService interface {
		GetOrCreateByTelegramID(ctx context.Context, telegramID int64) (*customers.Customer, error)
	}

	catalogService interface {
		Product(ctx context.Context, id int64) (catalog.Product, error)
		PackagingProducts(ctx context.Context) ([]catalog.Product, error)
	}

	pricer interface {
		Price(p catalog.Product, opts pricing.Opts) (float64, error)
	}

	// cartView рендерит экран корзины (по отмене оформления возвращаемся туда).
	cartView interface {
		Execute(ctx context.Context, s *sessions.Session, chatID int64) error
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
