package cmds

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/telegram/flows/catalognav"
	"kvitka-bot/internal/telegram/sessions"
)

type FavoritesCommand struct {
	bot     botApi
	catalog favoritesProductSource
	flow    *catalognav.Flow
	l10n    localizer
}

type favoritesProductSource interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
}

func NewFavoritesCommand(bot botApi, catalogSvc favoritesProductSource, flow *catalognav.Flow, l10n localizer) *FavoritesCommand {
	return &FavoritesCommand{bot: bot, catalog: catalogSvc, flow: flow, l10n: l10n}
}

// Execute показывает избранные товары. Пропавшие из каталога выпадают
// из избранного молча.
func (c *FavoritesCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64) error {
	var products []catalog.Product
	for id := range s.Favorites {
		p, err := c.catalog.Product(ctx, id)
		if err != nil {
			delete(s.Favorites, id)
			continue
		}
		products = append(products, p)
	}

	if len(products) == 0 {
		msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "favorites.empty", nil))
		_, err := c.bot.Send(msg)
		return err
	}

	return c.flow.ShowProducts(s, chatID, products, c.l10n.Get(s.Language, "favorites.title", nil))
}
