package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/stories/orders"
)

var (
	sentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvitka_notifications_sent_total",
		Help: "Order status notifications delivered",
	})
	failedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvitka_notifications_failed_total",
		Help: "Order status notifications that failed to deliver",
	})
)

// statusKeys - ключ перевода для каждого статуса заказа.
var statusKeys = map[orders.Status]string{
	orders.StatusNew:        "notifications.status_new",
	orders.StatusConfirmed:  "notifications.status_confirmed",
	orders.StatusAssembling: "notifications.status_assembling",
	orders.StatusShipped:    "notifications.status_shipped",
	orders.StatusCompleted:  "notifications.status_completed",
	orders.StatusCancelled:  "notifications.status_cancelled",
}

// Dispatcher отправляет покупателям сообщения о смене статуса заказа
// и массовые рассылки. Сбои доставки логируются по каждому получателю
// и не прерывают ни вызывающую операцию, ни остальные отправки.
type Dispatcher struct {
	messenger Messenger
	l10n      Localizer
	logger    *slog.Logger
	newPolicy func() backoff.BackOff
}

func NewDispatcher(messenger Messenger, l10n Localizer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		l10n:      l10n,
		logger:    logger,
		newPolicy: defaultPolicy,
	}
}

func defaultPolicy() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second
	return policy
}

// NotifyStatusChange шлёт локализованное сообщение о новом статусе заказа.
func (d *Dispatcher) NotifyStatusChange(transition *orders.Transition, customer *customers.Customer) {
	if customer == nil || customer.TelegramID == 0 {
		return
	}

	key, ok := statusKeys[transition.To]
	if !ok {
		d.logger.Warn("No notification template for status",
			slog.String("status", string(transition.To)))
		return
	}

	text := d.l10n.Get(customer.Language, key, map[string]interface{}{
		"order_number": transition.Order.OrderNumber,
		"total":        fmt.Sprintf("%.2f", transition.Order.TotalUAH),
	})

	if err := d.send(customer.TelegramID, text); err != nil {
		failedTotal.Inc()
		d.logger.Error("Status notification delivery failed",
			slog.Int64("telegram_id", customer.TelegramID),
			slog.String("order_number", transition.Order.OrderNumber),
			slog.Any("error", err))
		return
	}

	sentTotal.Inc()
}

// Broadcast рассылает текст списку покупателей. Один сбой не прерывает
// остальные отправки.
func (d *Dispatcher) Broadcast(ctx context.Context, recipients []*customers.Customer, text string) (sent, failed int) {
	for _, c := range recipients {
		if ctx.Err() != nil {
			return sent, failed
		}
		if c.TelegramID == 0 {
			continue
		}

		if err := d.send(c.TelegramID, text); err != nil {
			failed++
			failedTotal.Inc()
			d.logger.Error("Broadcast delivery failed",
				slog.Int64("telegram_id", c.TelegramID),
				slog.Any("error", err))
			continue
		}

		sent++
		sentTotal.Inc()
	}

	return sent, failed
}

// send повторяет доставку с экспоненциальной задержкой перед тем как сдаться.
func (d *Dispatcher) send(telegramID int64, text string) error {
	return backoff.Retry(func() error {
		return d.messenger.SendMessage(telegramID, text)
	}, d.newPolicy())
}
