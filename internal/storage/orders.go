package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	sqlite "github.com/mattn/go-sqlite3"

	"kvitka-bot/internal/infra/sqlite3"
	"kvitka-bot/internal/stories/orders"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"
)

var (
	orderRowFields     = fields(orderRow{})
	orderItemRowFields = fields(orderItemRow{})
)

type orderRow struct {
	ID          int64  `db:"id"`
	OrderNumber string `db:"order_number"`
	CustomerID  int64  `db:"customer_id"`
	Status      string `db:"status"`

	TotalUAH float64 `db:"total_uah"`
	Comment  string  `db:"comment"`

	ReferralDiscountPending float64 `db:"referral_discount_pending"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (o orderRow) ToModel() *orders.Order {
	return &orders.Order{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Status:      orders.Status(o.Status),

		TotalUAH: o.TotalUAH,
		Comment:  o.Comment,

		ReferralDiscountPending: o.ReferralDiscountPending,

		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

type orderItemRow struct {
	ID          int64   `db:"id"`
	OrderID     int64   `db:"order_id"`
	ProductID   int64   `db:"product_id"`
	ProductName string  `db:"product_name"`
	Height      string  `db:"height"`
	Quantity    int     `db:"quantity"`
	PriceUAH    float64 `db:"price_uah"`
	TotalUAH    float64 `db:"total_uah"`
}

func (i orderItemRow) ToModel() orders.Item {
	return orders.Item{
		ID:          i.ID,
		OrderID:     i.OrderID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Height:      i.Height,
		Quantity:    i.Quantity,
		PriceUAH:    i.PriceUAH,
		TotalUAH:    i.TotalUAH,
	}
}

// CreateOrder пишет заказ вместе со строками одной транзакцией.
// Коллизия номера заказа превращается в orders.ErrDuplicateOrderNumber.
func (s *storageImpl) CreateOrder(ctx context.Context, order orders.Order) (*orders.Order, error) {
	var orderID int64

	err := sqlite3.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q, args, err := s.stmtBuilder().
			Insert(ordersTable).
			SetMap(map[string]interface{}{
				"order_number":              order.OrderNumber,
				"customer_id":               order.CustomerID,
				"status":                    string(order.Status),
				"total_uah":                 order.TotalUAH,
				"comment":                   order.Comment,
				"referral_discount_pending": order.ReferralDiscountPending,
				"created_at":                s.now(),
				"updated_at":                s.now(),
			}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}

		result, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		orderID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("result.LastInsertId: %w", err)
		}

		for _, item := range order.Items {
			q, args, err := s.stmtBuilder().
				Insert(orderItemsTable).
				SetMap(map[string]interface{}{
					"order_id":     orderID,
					"product_id":   item.ProductID,
					"product_name": item.ProductName,
					"height":       item.Height,
					"quantity":     item.Quantity,
					"price_uah":    item.PriceUAH,
					"total_uah":    item.TotalUAH,
				}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build sql query: %w", err)
			}

			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("tx.ExecContext: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, orders.ErrDuplicateOrderNumber
		}
		return nil, err
	}

	return s.GetOrder(ctx, orders.GetCriteria{ID: &orderID})
}

func (s *storageImpl) GetOrder(ctx context.Context, criteria orders.GetCriteria) (*orders.Order, error) {
	query := s.stmtBuilder().
		Select(orderRowFields).
		From(ordersTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.OrderNumber != nil {
		query = query.Where(sq.Eq{"order_number": *criteria.OrderNumber})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row orderRow
	err = s.db.GetContext(ctx, &row, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	order := row.ToModel()

	items, err := s.listOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (s *storageImpl) ListOrders(ctx context.Context, criteria orders.ListCriteria) ([]*orders.Order, error) {
	query := s.stmtBuilder().
		Select(orderRowFields).
		From(ordersTable)

	if criteria.CustomerID != nil {
		query = query.Where(sq.Eq{"customer_id": *criteria.CustomerID})
	}
	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}

	query = query.OrderBy("created_at DESC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []orderRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*orders.Order
	for _, row := range rows {
		order := row.ToModel()

		items, err := s.listOrderItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items

		result = append(result, order)
	}

	return result, nil
}

func (s *storageImpl) UpdateOrder(ctx context.Context, criteria orders.GetCriteria, params orders.UpdateParams) (*orders.Order, error) {
	query := s.stmtBuilder().
		Update(ordersTable).
		Set("updated_at", s.now())

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.OrderNumber != nil {
		query = query.Where(sq.Eq{"order_number": *criteria.OrderNumber})
	}

	if params.Status != nil {
		query = query.Set("status", string(*params.Status))
	}
	if params.ReferralDiscountPending != nil {
		query = query.Set("referral_discount_pending", *params.ReferralDiscountPending)
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetOrder(ctx, criteria)
}

func (s *storageImpl) listOrderItems(ctx context.Context, orderID int64) ([]orders.Item, error) {
	q, args, err := s.stmtBuilder().
		Select(orderItemRowFields).
		From(orderItemsTable).
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []orderItemRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var items []orders.Item
	for _, row := range rows {
		items = append(items, row.ToModel())
	}

	return items, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite.ErrConstraintUnique
	}
	return false
}
