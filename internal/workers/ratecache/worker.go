package ratecache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type RateCache interface {
	Refresh(ctx context.Context) error
}

// Worker обновляет кэш курса USD -> UAH. Правка курса в настройках
// доезжает до живых корзин максимум за один интервал.
type Worker struct {
	cache    RateCache
	interval time.Duration
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewWorker(cache RateCache, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		cache:    cache,
		interval: interval,
		logger:   logger,
		cron:     cron.New(),
	}
}

func (w *Worker) Name() string {
	return "ratecache"
}

func (w *Worker) Start() error {
	// Первое чтение сразу, чтобы не ждать интервал с курсом по умолчанию
	if err := w.cache.Refresh(context.Background()); err != nil {
		w.logger.Warn("Initial rate refresh failed", slog.Any("error", err))
	}

	_, err := w.cron.AddFunc(fmt.Sprintf("@every %s", w.interval), func() {
		if err := w.cache.Refresh(context.Background()); err != nil {
			w.logger.Error("Rate refresh failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule rate refresh: %w", err)
	}

	w.cron.Start()
	return nil
}

func (w *Worker) Stop() {
	w.cron.Stop()
}
