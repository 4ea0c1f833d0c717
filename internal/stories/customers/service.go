package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Service provides business logic for customer operations
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// GetByTelegramID возвращает покупателя или nil если он ещё не зарегистрирован.
func (s *Service) GetByTelegramID(ctx context.Context, telegramID int64) (*Customer, error) {
	return s.storage.GetCustomer(ctx, GetCriteria{TelegramID: &telegramID})
}

// GetOrCreateByTelegramID находит покупателя по Telegram ID или регистрирует нового
// с уникальным реферальным кодом.
func (s *Service) GetOrCreateByTelegramID(ctx context.Context, telegramID int64) (*Customer, error) {
	existing, err := s.storage.GetCustomer(ctx, GetCriteria{TelegramID: &telegramID})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := s.storage.CreateCustomer(ctx, Customer{
		TelegramID:   telegramID,
		CustomerType: TypeFlowerShop,
		ReferralCode: NewReferralCode(),
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// BindReferrer привязывает реферера по коду из deep-link /start.
// Работает только один раз и только до первого заказа; свой код не засчитывается.
func (s *Service) BindReferrer(ctx context.Context, customer *Customer, code string) error {
	code = strings.TrimSpace(code)
	if code == "" || customer.ReferredBy != nil || customer.ReferralCode == code {
		return nil
	}

	referrer, err := s.storage.GetCustomer(ctx, GetCriteria{ReferralCode: &code})
	if err != nil {
		return fmt.Errorf("lookup referrer by code: %w", err)
	}
	if referrer == nil || referrer.ID == customer.ID {
		return nil
	}

	if _, err := s.storage.UpdateCustomer(ctx, GetCriteria{ID: &customer.ID}, UpdateParams{
		ReferredBy: &referrer.ID,
	}); err != nil {
		return fmt.Errorf("bind referrer: %w", err)
	}

	if _, err := s.storage.UpdateCustomer(ctx, GetCriteria{ID: &referrer.ID}, UpdateParams{
		ReferralCount: lo.ToPtr(referrer.ReferralCount + 1),
	}); err != nil {
		return fmt.Errorf("bump referral count: %w", err)
	}

	customer.ReferredBy = &referrer.ID
	return nil
}

// UpdateContact обновляет контактные поля из данных оформления заказа.
func (s *Service) UpdateContact(ctx context.Context, customerID int64, name, phone, address string) (*Customer, error) {
	return s.storage.UpdateCustomer(ctx, GetCriteria{ID: &customerID}, UpdateParams{
		Name:    &name,
		Phone:   &phone,
		Address: &address,
	})
}

// SetLanguage сохраняет выбранный язык.
func (s *Service) SetLanguage(ctx context.Context, customerID int64, language string) error {
	_, err := s.storage.UpdateCustomer(ctx, GetCriteria{ID: &customerID}, UpdateParams{
		Language: &language,
	})
	return err
}

// SetProfile сохраняет город и тип покупателя из онбординга.
func (s *Service) SetProfile(ctx context.Context, customerID int64, city string, ct CustomerType) error {
	_, err := s.storage.UpdateCustomer(ctx, GetCriteria{ID: &customerID}, UpdateParams{
		City:         &city,
		CustomerType: &ct,
	})
	return err
}

// ListForBroadcast возвращает незаблокированных покупателей для рассылки.
func (s *Service) ListForBroadcast(ctx context.Context) ([]*Customer, error) {
	return s.storage.ListCustomers(ctx, ListCriteria{NotBlocked: true})
}

// NewReferralCode генерирует короткий реферальный код.
func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
