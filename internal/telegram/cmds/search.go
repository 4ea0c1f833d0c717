package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kvitka-bot/internal/stories/catalog"
	"kvitka-bot/internal/telegram/flows/catalognav"
	"kvitka-bot/internal/telegram/sessions"
)

type SearchCommand struct {
	bot     botApi
	catalog searchCatalogService
	flow    *catalognav.Flow
	l10n    localizer
}

type searchCatalogService interface {
	Search(ctx context.Context, query string) ([]catalog.Product, error)
}

func NewSearchCommand(bot botApi, catalogSvc searchCatalogService, flow *catalognav.Flow, l10n localizer) *SearchCommand {
	return &SearchCommand{bot: bot, catalog: catalogSvc, flow: flow, l10n: l10n}
}

// Prompt просит ввести поисковый запрос.
func (c *SearchCommand) Prompt(s *sessions.Session, chatID int64) error {
	s.Step = sessions.StepSearch
	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "search.prompt", nil))
	_, err := c.bot.Send(msg)
	return err
}

// Execute ищет по подстроке названия и показывает результаты.
func (c *SearchCommand) Execute(ctx context.Context, s *sessions.Session, chatID int64, query string) error {
	products, err := c.catalog.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search products: %w", err)
	}

	if len(products) == 0 {
		s.Step = sessions.StepMenu
		msg := tgbotapi.NewMessage(chatID, c.l10n.Get(s.Language, "search.empty", nil))
		_, err := c.bot.Send(msg)
		return err
	}

	return c.flow.ShowProducts(s, chatID, products, c.l10n.Get(s.Language, "search.results", nil))
}
