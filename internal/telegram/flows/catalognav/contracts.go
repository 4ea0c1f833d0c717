package catalognav

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/stories/pricing"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	catalogService interface {
		Countries(ctx context.Context, ct catalog.CatalogType) ([]catalog.Country, error)
		Farms(ctx context.Context, ct catalog.CatalogType, countryID int64) ([]catalog.Plantation, error)
		FlowerTypes(ctx context.Context, cursor catalog.Cursor) ([]catalog.FlowerType, error)
		Candidates(ctx context.Context, cursor catalog.Cursor, filters catalog.Filters) ([]catalog.Product, error)
		Product(ctx context.Context, id int64) (catalog.Product, error)
		CountryName(ctx context.Context, id int64) string
		FarmName(ctx context.Context, id int64) string
		FlowerTypeName(ctx context.Context, id int64) string
	}

	pricer interface {
		Price(p catalog.Product, opts pricing.Opts) (float64, error)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
