package sessionsweep

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Store interface {
	Sweep(maxAge time.Duration) int
	Len() int
}

// Worker выметает просроченные сессии раз в час. Потеря корзины при
// выселении - ожидаемое поведение, не ошибка.
type Worker struct {
	store  Store
	maxAge time.Duration
	logger *slog.Logger
	cron   *cron.Cron
}

func NewWorker(store Store, maxAge time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		store:  store,
		maxAge: maxAge,
		logger: logger,
		cron:   cron.New(),
	}
}

func (w *Worker) Name() string {
	return "sessionsweep"
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc("@hourly", func() {
		removed := w.store.Sweep(w.maxAge)
		if removed > 0 {
			w.logger.Info("Swept idle sessions",
				slog.Int("removed", removed),
				slog.Int("remaining", w.store.Len()))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	w.cron.Start()
	return nil
}

func (w *Worker) Stop() {
	w.cron.Stop()
}
