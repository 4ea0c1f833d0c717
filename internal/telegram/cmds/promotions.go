package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/telegram/flows/catalognav"
	"kvitka-bot/internal/telegram/sessions"
)

type PromotionsCommand struct {
	bot     botApi
	catalog promoCatalogService
	flow    *catalognav.Flow
	l10n    localizer
}

type promoCatalogService interface {
	PromoProducts(ctx context.Context) ([]catalog.Product, error)
}

func NewPromotionsCommand(bot botApi, catalogSvc promoCatalogService, flow *catalognav.Flow, l10n localizer) *PromotionsCommand {
	return &PromotionsCommand{bot: bot, catalog: catalogSvc, flow: flow, l10n: l10n}
}

// Execute показывает товары с действующими акциями.
func (c *PromotionsCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64) error {
	products, err := c.catalog.PromoProducts(ctx)
	if err != nil {
		return fmt.Errorf("list promo products: %w", err)
	}

	if len(products) == 0 {
		msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "promotions.empty", nil))
		_, err := c.bot.Send(msg)
		return err
	}

	return c.flow.ShowProducts(s, chatID, products, c.l10n.Get(s.Language, "promotions.title", nil))
}
