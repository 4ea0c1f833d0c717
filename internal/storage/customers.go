package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"kvitka-bot/internal/stories/customers"
)

const customersTable = "customers"

var customerRowFields = fields(customerRow{})

type customerRow struct {
	ID         int64  `db:"id"`
	TelegramID int64  `db:"telegram_id"`
	Name       string `db:"name"`
	Phone      string `db:"phone"`
	Address    string `db:"address"`
	City       string `db:"city"`
	Language   string `db:"language"`

	CustomerType string `db:"customer_type"`

	TotalOrders       int     `db:"total_orders"`
	TotalSpent        float64 `db:"total_spent"`
	LoyaltyPoints     int     `db:"loyalty_points"`
	NextOrderDiscount float64 `db:"next_order_discount"`

	ReferralCode         string        `db:"referral_code"`
	ReferralBalance      float64       `db:"referral_balance"`
	ReferralCount        int           `db:"referral_count"`
	ReferredBy           sql.NullInt64 `db:"referred_by"`
	ReferralBonusAwarded bool          `db:"referral_bonus_awarded"`

	IsBlocked bool `db:"is_blocked"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (c customerRow) ToModel() *customers.Customer {
	var referredBy *int64
	if c.ReferredBy.Valid {
		referredBy = &c.ReferredBy.Int64
	}

	return &customers.Customer{
		ID:         c.ID,
		TelegramID: c.TelegramID,
		Name:       c.Name,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		Language:   c.Language,

		CustomerType: customers.CustomerType(c.CustomerType),

		TotalOrders:       c.TotalOrders,
		TotalSpent:        c.TotalSpent,
		LoyaltyPoints:     c.LoyaltyPoints,
		NextOrderDiscount: c.NextOrderDiscount,

		ReferralCode:         c.ReferralCode,
		ReferralBalance:      c.ReferralBalance,
		ReferralCount:        c.ReferralCount,
		ReferredBy:           referredBy,
		ReferralBonusAwarded: c.ReferralBonusAwarded,

		IsBlocked: c.IsBlocked,

		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *storageImpl) CreateCustomer(ctx context.Context, customer customers.Customer) (*customers.Customer, error) {
	params := map[string]interface{}{
		"telegram_id":   customer.TelegramID,
		"name":          customer.Name,
		"phone":         customer.Phone,
		"address":       customer.Address,
		"city":          customer.City,
		"language":      customer.Language,
		"customer_type": string(customer.CustomerType),
		"referral_code": customer.ReferralCode,
		"created_at":    s.now(),
		"updated_at":    s.now(),
	}

	q, args, err := s.stmtBuilder().
		Insert(customersTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetCustomer(ctx, customers.GetCriteria{ID: &id})
}

func (s *storageImpl) GetCustomer(ctx context.Context, criteria customers.GetCriteria) (*customers.Customer, error) {
	query := s.stmtBuilder().
		Select(customerRowFields).
		From(customersTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.TelegramID != nil {
		query = query.Where(sq.Eq{"telegram_id": *criteria.TelegramID})
	}
	if criteria.ReferralCode != nil {
		query = query.Where(sq.Eq{"referral_code": *criteria.ReferralCode})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row customerRow
	err = s.db.GetContext(ctx, &row, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return row.ToModel(), nil
}

func (s *storageImpl) UpdateCustomer(ctx context.Context, criteria customers.GetCriteria, params customers.UpdateParams) (*customers.Customer, error) {
	query := s.stmtBuilder().
		Update(customersTable).
		Set("updated_at", s.now())

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.TelegramID != nil {
		query = query.Where(sq.Eq{"telegram_id": *criteria.TelegramID})
	}
	if criteria.ReferralCode != nil {
		query = query.Where(sq.Eq{"referral_code": *criteria.ReferralCode})
	}

	if params.Name != nil {
		query = query.Set("name", *params.Name)
	}
	if params.Phone != nil {
		query = query.Set("phone", *params.Phone)
	}
	if params.Address != nil {
		query = query.Set("address", *params.Address)
	}
	if params.City != nil {
		query = query.Set("city", *params.City)
	}
	if params.Language != nil {
		query = query.Set("language", *params.Language)
	}
	if params.CustomerType != nil {
		query = query.Set("customer_type", string(*params.CustomerType))
	}
	if params.TotalOrders != nil {
		query = query.Set("total_orders", *params.TotalOrders)
	}
	if params.TotalSpent != nil {
		query = query.Set("total_spent", *params.TotalSpent)
	}
	if params.LoyaltyPoints != nil {
		query = query.Set("loyalty_points", *params.LoyaltyPoints)
	}
	if params.NextOrderDiscount != nil {
		query = query.Set("next_order_discount", *params.NextOrderDiscount)
	}
	if params.ReferralBalance != nil {
		query = query.Set("referral_balance", *params.ReferralBalance)
	}
	if params.ReferralCount != nil {
		query = query.Set("referral_count", *params.ReferralCount)
	}
	if params.ReferredBy != nil {
		query = query.Set("referred_by", *params.ReferredBy)
	}
	if params.ReferralBonusAwarded != nil {
		query = query.Set("referral_bonus_awarded", *params.ReferralBonusAwarded)
	}
	if params.IsBlocked != nil {
		query = query.Set("is_blocked", *params.IsBlocked)
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetCustomer(ctx, criteria)
}

func (s *storageImpl) ListCustomers(ctx context.Context, criteria customers.ListCriteria) ([]*customers.Customer, error) {
	query := s.stmtBuilder().
		Select(customerRowFields).
		From(customersTable)

	if criteria.NotBlocked {
		query = query.Where(sq.Eq{"is_blocked": false})
	}
	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		query = query.Offset(uint64(criteria.Offset))
	}

	query = query.OrderBy("created_at DESC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []customerRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*customers.Customer
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}
