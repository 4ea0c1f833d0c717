package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/cenkalti/backoff/v4"

	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/stories/orders"
)

type messengerStub struct {
	sent    []int64
	failFor map[int64]bool
}

func (m *messengerStub) SendMessage(chatID int64, _ string) error {
	if m.failFor[chatID] {
		return fmt.Errorf("chat %d unreachable", chatID)
	}
	m.sent = append(m.sent, chatID)
	return nil
}

type l10nStub struct{}

func (l10nStub) Get(_, key string, _ map[string]interface{}) string { return key }

func newTestDispatcher(m *messengerStub) *Dispatcher {
	d := NewDispatcher(m, l10nStub{}, slog.Default())
	d.newPolicy = func() backoff.BackOff { return &backoff.StopBackOff{} }
	return d
}

func TestBroadcastSurvivesFailures(t *testing.T) {
	m := &messengerStub{failFor: map[int64]bool{2: true}}
	d := newTestDispatcher(m)

	recipients := []*customers.Customer{
		{ID: 1, TelegramID: 1},
		{ID: 2, TelegramID: 2},
		{ID: 3, TelegramID: 3},
	}

	sent, failed := d.Broadcast(context.Background(), recipients, "hello")

	if sent != 2 || failed != 1 {
		t.Errorf("sent=%d failed=%d, want 2/1", sent, failed)
	}
	if len(m.sent) != 2 {
		t.Errorf("delivered to %v, want chats 1 and 3", m.sent)
	}
}

func TestBroadcastSkipsMissingTelegramID(t *testing.T) {
	m := &messengerStub{}
	d := newTestDispatcher(m)

	sent, failed := d.Broadcast(context.Background(), []*customers.Customer{{ID: 1}}, "hi")

	if sent != 0 || failed != 0 {
		t.Errorf("sent=%d failed=%d, want 0/0", sent, failed)
	}
}

func TestNotifyStatusChangeDelivers(t *testing.T) {
	m := &messengerStub{}
	d := newTestDispatcher(m)

	d.NotifyStatusChange(&orders.Transition{
		Order: &orders.Order{OrderNumber: "KV-20250601-AAAA", TotalUAH: 5000},
		To:    orders.StatusShipped,
	}, &customers.Customer{ID: 1, TelegramID: 42, Language: "ua"})

	if len(m.sent) != 1 || m.sent[0] != 42 {
		t.Errorf("delivered to %v, want chat 42", m.sent)
	}
}

func TestNotifyStatusChangeFailureDoesNotPanic(t *testing.T) {
	m := &messengerStub{failFor: map[int64]bool{42: true}}
	d := newTestDispatcher(m)

	// Сбой доставки только логируется
	d.NotifyStatusChange(&orders.Transition{
		Order: &orders.Order{OrderNumber: "KV-20250601-AAAA"},
		To:    orders.StatusCompleted,
	}, &customers.Customer{ID: 1, TelegramID: 42})
}
