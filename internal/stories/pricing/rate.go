package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
)

const rateSettingKey = "usd_to_uah_rate"

// RateCache держит курс USD -> UAH в памяти процесса.
// Обновляется воркером раз в минуту; изменение курса админом
// доходит до открытых корзин не позже следующего обновления.
type RateCache struct {
	mu      sync.RWMutex
	rate    float64
	storage SettingsStorage
	logger  *slog.Logger
}

func NewRateCache(storage SettingsStorage, fallbackRate float64, logger *slog.Logger) *RateCache {
	return &RateCache{
		rate:    fallbackRate,
		storage: storage,
		logger:  logger,
	}
}

// Rate возвращает последний известный курс.
func (c *RateCache) Rate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate
}

// Set пишет новый курс в настройки и сразу обновляет кэш,
// не дожидаясь следующего цикла воркера.
func (c *RateCache) Set(ctx context.Context, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("non-positive rate %v", rate)
	}

	if err := c.storage.SetSetting(ctx, rateSettingKey, strconv.FormatFloat(rate, 'f', -1, 64)); err != nil {
		return fmt.Errorf("set setting %s: %w", rateSettingKey, err)
	}

	c.mu.Lock()
	c.rate = rate
	c.mu.Unlock()

	return nil
}

// Refresh перечитывает курс из настроек. При ошибке остаётся старое значение.
func (c *RateCache) Refresh(ctx context.Context) error {
	raw, err := c.storage.GetSetting(ctx, rateSettingKey)
	if err != nil {
		return fmt.Errorf("get setting %s: %w", rateSettingKey, err)
	}
	if raw == "" {
		return fmt.Errorf("setting %s is not set", rateSettingKey)
	}

	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse rate %q: %w", raw, err)
	}
	if rate <= 0 {
		return fmt.Errorf("non-positive rate %v", rate)
	}

	c.mu.Lock()
	old := c.rate
	c.rate = rate
	c.mu.Unlock()

	if old != rate {
		c.logger.Info("Exchange rate updated",
			slog.Float64("old", old),
			slog.Float64("new", rate))
	}

	return nil
}
