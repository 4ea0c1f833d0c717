package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"

	"kvitka-bot/internal/stories/carts"
	"kvitka-bot/internal/stories/customers"
	"kvitka-bot/internal/stories/pricing"
)

var createdTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "kvitka_orders_created_total",
	Help: "Orders committed through checkout",
})

type Service struct {
	storage         Storage
	customerStorage CustomerStorage
	rules           LedgerRules
	logger          *slog.Logger
	now             func() time.Time
}

func NewService(storage Storage, customerStorage CustomerStorage, rules LedgerRules, logger *slog.Logger) *Service {
	return &Service{
		storage:         storage,
		customerStorage: customerStorage,
		rules:           rules,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// CheckoutInput - всё что нужно для коммита заказа после подтверждения.
type CheckoutInput struct {
	Customer *customers.Customer
	Priced   *carts.Priced

	Name    string
	Phone   string
	Address string
}

// CheckoutResult - созданный заказ и данные для подтверждающего сообщения.
type CheckoutResult struct {
	Order *Order

	CartTotal        float64
	PersonalDiscount float64 // использованная скидка за 10-й заказ
	ReferralDiscount float64 // применённый реферальный баланс (ещё не списан)
	PointsToEarn     int     // баллы, которые начислятся при выполнении
}

// Checkout коммитит заказ: обновляет контакты покупателя, применяет скидки,
// пишет заказ со строками одной транзакцией. Баллы и счётчики покупателя
// здесь не трогаются - они начисляются при переходе заказа в completed.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if in.Priced == nil || len(in.Priced.Lines) == 0 {
		return nil, errors.New("empty cart")
	}

	customer, err := s.customerStorage.UpdateCustomer(ctx,
		customers.GetCriteria{ID: &in.Customer.ID},
		customers.UpdateParams{Name: &in.Name, Phone: &in.Phone, Address: &in.Address},
	)
	if err != nil {
		return nil, fmt.Errorf("update customer contacts: %w", err)
	}

	total := in.Priced.Total
	result := &CheckoutResult{CartTotal: total}

	// Одноразовая скидка за 10-й заказ: вычитается и обнуляется
	if customer.NextOrderDiscount > 0 && customer.NextOrderDiscount < total {
		result.PersonalDiscount = customer.NextOrderDiscount
		total = pricing.Round2(total - customer.NextOrderDiscount)

		if _, err := s.customerStorage.UpdateCustomer(ctx,
			customers.GetCriteria{ID: &customer.ID},
			customers.UpdateParams{NextOrderDiscount: lo.ToPtr(0.0)},
		); err != nil {
			return nil, fmt.Errorf("consume next order discount: %w", err)
		}
	}

	// Реферальный баланс применяется как скидка, но списывается только
	// при выполнении заказа - отменённый заказ баланс не тратит
	var referralPending float64
	if customer.ReferralBalance > 0 && total > 0 {
		referralPending = lo.Min([]float64{customer.ReferralBalance, total})
		result.ReferralDiscount = referralPending
		total = pricing.Round2(total - referralPending)
	}

	order := Order{
		CustomerID:              customer.ID,
		Status:                  StatusNew,
		TotalUAH:                total,
		Comment:                 s.buildComment(in, result),
		ReferralDiscountPending: referralPending,
		Items:                   buildItems(in.Priced),
	}

	created, err := s.createWithRetry(ctx, order)
	if err != nil {
		return nil, err
	}

	createdTotal.Inc()

	result.Order = created
	result.PointsToEarn = loyaltyPoints(total, s.rules.PointDivisor)
	return result, nil
}

// createWithRetry повторяет вставку один раз при коллизии номера заказа.
func (s *Service) createWithRetry(ctx context.Context, order Order) (*Order, error) {
	for attempt := 0; attempt < 2; attempt++ {
		order.OrderNumber = NewOrderNumber(s.now())

		created, err := s.storage.CreateOrder(ctx, order)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			return nil, fmt.Errorf("create order: %w", err)
		}

		s.logger.Warn("Order number collision, regenerating",
			slog.String("order_number", order.OrderNumber))
	}

	return nil, fmt.Errorf("create order: %w", ErrDuplicateOrderNumber)
}

func (s *Service) buildComment(in CheckoutInput, result *CheckoutResult) string {
	var b strings.Builder

	for _, line := range in.Priced.Lines {
		fmt.Fprintf(&b, "%s", line.Product.Name)
		if line.Key.Height != "" {
			fmt.Fprintf(&b, " (%s см)", line.Key.Height)
		}
		fmt.Fprintf(&b, " x%d = %.2f грн\n", line.Quantity, line.LineTotal)
	}

	if result.PersonalDiscount > 0 {
		fmt.Fprintf(&b, "Знижка за 10-те замовлення: -%.2f грн\n", result.PersonalDiscount)
	}
	if result.ReferralDiscount > 0 {
		fmt.Fprintf(&b, "Реферальна знижка: -%.2f грн\n", result.ReferralDiscount)
	}

	return strings.TrimRight(b.String(), "\n")
}

func buildItems(priced *carts.Priced) []Item {
	items := make([]Item, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		items = append(items, Item{
			ProductID:   line.Key.ProductID,
			ProductName: line.Product.Name,
			Height:      line.Key.Height,
			Quantity:    line.Quantity,
			PriceUAH:    line.UnitPrice,
			TotalUAH:    line.LineTotal,
		})
	}
	return items
}

// Get возвращает заказ по критерию.
func (s *Service) Get(ctx context.Context, criteria GetCriteria) (*Order, error) {
	return s.storage.GetOrder(ctx, criteria)
}

// ListByCustomer - история заказов покупателя.
func (s *Service) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]*Order, error) {
	return s.storage.ListOrders(ctx, ListCriteria{CustomerID: &customerID, Limit: limit})
}

// ListRecent - последние заказы для админского экрана.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Order, error) {
	return s.storage.ListOrders(ctx, ListCriteria{Limit: limit})
}

// Transition - результат смены статуса для отправки уведомления.
type Transition struct {
	Order    *Order
	Customer *customers.Customer
	From     Status
	To       Status
}

// TransitionStatus переводит заказ в новый статус и применяет бухгалтерию.
// Смена статуса первична: ошибки начислений логируются и не откатывают её.
func (s *Service) TransitionStatus(ctx context.Context, orderID int64, to Status) (*Transition, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("unknown order status %q", to)
	}

	order, err := s.storage.GetOrder(ctx, GetCriteria{ID: &orderID})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	from := order.Status
	if from == to {
		return &Transition{Order: order, From: from, To: to}, nil
	}

	updated, err := s.storage.UpdateOrder(ctx, GetCriteria{ID: &orderID}, UpdateParams{Status: &to})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	transition := &Transition{Order: updated, From: from, To: to}

	customer, err := s.customerStorage.GetCustomer(ctx, customers.GetCriteria{ID: &order.CustomerID})
	if err != nil || customer == nil {
		s.logger.Error("Status ledger: customer lookup failed",
			slog.Int64("order_id", orderID),
			slog.Any("error", err))
		return transition, nil
	}

	applied, events := ApplyStatusTransition(from, to, *order, *customer, s.rules)
	s.persistLedger(ctx, orderID, customer, applied, events)

	transition.Customer = &applied
	return transition, nil
}

// persistLedger применяет результат ApplyStatusTransition best-effort:
// каждая неудача логируется и не мешает остальным.
func (s *Service) persistLedger(ctx context.Context, orderID int64, before *customers.Customer, applied customers.Customer, events []LedgerEvent) {
	if _, err := s.customerStorage.UpdateCustomer(ctx,
		customers.GetCriteria{ID: &before.ID},
		customers.UpdateParams{
			TotalOrders:          &applied.TotalOrders,
			TotalSpent:           &applied.TotalSpent,
			LoyaltyPoints:        &applied.LoyaltyPoints,
			NextOrderDiscount:    &applied.NextOrderDiscount,
			ReferralBalance:      &applied.ReferralBalance,
			ReferralBonusAwarded: &applied.ReferralBonusAwarded,
		},
	); err != nil {
		s.logger.Error("Status ledger: customer update failed",
			slog.Int64("customer_id", before.ID),
			slog.Any("error", err))
	}

	for _, event := range events {
		switch event.Type {
		case EventReferralBonusDue:
			s.creditReferrer(ctx, event.ReferrerID, event.Amount)

		case EventReferralDeductionCommitted:
			if _, err := s.storage.UpdateOrder(ctx,
				GetCriteria{ID: &orderID},
				UpdateParams{ReferralDiscountPending: lo.ToPtr(0.0)},
			); err != nil {
				s.logger.Error("Status ledger: clearing referral pending failed",
					slog.Int64("order_id", orderID),
					slog.Any("error", err))
			}

		case EventTenthOrderDiscountGranted:
			s.logger.Info("Tenth order discount granted",
				slog.Int64("customer_id", before.ID),
				slog.Float64("amount", event.Amount))
		}
	}
}

func (s *Service) creditReferrer(ctx context.Context, referrerID int64, amount float64) {
	referrer, err := s.customerStorage.GetCustomer(ctx, customers.GetCriteria{ID: &referrerID})
	if err != nil || referrer == nil {
		s.logger.Error("Status ledger: referrer lookup failed",
			slog.Int64("referrer_id", referrerID),
			slog.Any("error", err))
		return
	}

	if _, err := s.customerStorage.UpdateCustomer(ctx,
		customers.GetCriteria{ID: &referrerID},
		customers.UpdateParams{ReferralBalance: lo.ToPtr(referrer.ReferralBalance + amount)},
	); err != nil {
		s.logger.Error("Status ledger: referrer credit failed",
			slog.Int64("referrer_id", referrerID),
			slog.Any("error", err))
	}
}
