package orderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/proxyluxe/backend/internal/domain"
	"github.com/proxyluxe/backend/internal/pg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderColumns = `
    id, user_id, type, country, quantity, tariff, period_days,
    proxy_type, goal, total_price, status, proxy_seller_id, order_id,
    end_date, created_at, updated_at
`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.UserID, &order.Type, &order.Country, &order.Quantity,
		&order.Tariff, &order.PeriodDays, &order.ProxyType, &order.Goal,
		&order.TotalPrice, &order.Status, &order.ProxySellerID, &order.OrderID,
		&order.EndDate, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE id = $1
    `
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

// FindByIDForUpdate locks the order row for the current transaction.
// The status re-check on the locked row is what makes settlement safe
// to run concurrently.
func (r *Repository) FindByIDForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE id = $1
        FOR UPDATE
    `
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't lock order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindByProxySellerID(ctx context.Context, proxySellerID string) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE proxy_seller_id = $1
    `
	order, err := scanOrder(r.db.QueryRow(ctx, query, proxySellerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order by proxy-seller id", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// FindPackageKeysByUserID lists resident package keys the user already
// paid for, so a new resident purchase extends instead of duplicating.
func (r *Repository) FindPackageKeysByUserID(ctx context.Context, userID string) ([]string, error) {
	query := `
        SELECT proxy_seller_id
        FROM orders
        WHERE user_id = $1
          AND type = 'resident'
          AND status = 'PAID'
          AND proxy_seller_id IS NOT NULL
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get package keys", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			zap.L().Error("can't scan package key", zap.Error(err))
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
        INSERT INTO orders (user_id, type, country, quantity, tariff, period_days,
                            proxy_type, goal, total_price, status, proxy_seller_id,
                            order_id, end_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		order.UserID, order.Type, order.Country, order.Quantity, order.Tariff,
		order.PeriodDays, order.ProxyType, order.Goal, order.TotalPrice,
		order.Status, order.ProxySellerID, order.OrderID, order.EndDate,
	).Scan(&order.ID)
	if err != nil {
		zap.L().Error("can't save order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

// MarkPaid flips a pending order to PAID and records the upstream ids.
func (r *Repository) MarkPaid(ctx context.Context, orderID string, proxySellerID *string, upstreamOrderID *string, price decimal.Decimal, endDate time.Time) error {
	query := `
        UPDATE orders
        SET status = 'PAID', proxy_seller_id = $2, order_id = $3,
            total_price = $4, end_date = $5, updated_at = now()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, orderID, proxySellerID, upstreamOrderID, price, endDate)
	if err != nil {
		zap.L().Error("can't mark order paid", zap.String("orderID", orderID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) UpdateEndDate(ctx context.Context, orderID string, endDate time.Time) error {
	query := `
        UPDATE orders
        SET end_date = $2, updated_at = now()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, orderID, endDate)
	if err != nil {
		zap.L().Error("can't update end date", zap.String("orderID", orderID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeletePending removes an unpaid order. Paid orders are never deleted.
func (r *Repository) DeletePending(ctx context.Context, orderID, userID string) (bool, error) {
	query := `
        DELETE FROM orders
        WHERE id = $1 AND user_id = $2 AND status = 'PENDING'
    `
	tag, err := r.db.Exec(ctx, query, orderID, userID)
	if err != nil {
		zap.L().Error("can't delete order", zap.String("orderID", orderID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ExpiringOrder is a paid order close to its end date, joined with the
// owner's contacts for the reminder email.
type ExpiringOrder struct {
	Order domain.Order
	Email string
	Lang  string
}

func (r *Repository) FindExpiring(ctx context.Context, from, to time.Time) ([]ExpiringOrder, error) {
	query := `
        SELECT o.id, o.user_id, o.type, o.country, o.quantity, o.tariff, o.period_days,
               o.proxy_type, o.goal, o.total_price, o.status, o.proxy_seller_id, o.order_id,
               o.end_date, o.created_at, o.updated_at, u.email, u.lang
        FROM orders o
        JOIN users u ON u.id = o.user_id
        WHERE o.status = 'PAID' AND o.end_date BETWEEN $1 AND $2
        ORDER BY o.end_date ASC
    `
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		zap.L().Error("can't get expiring orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var expiring []ExpiringOrder
	for rows.Next() {
		var e ExpiringOrder
		err := rows.Scan(
			&e.Order.ID, &e.Order.UserID, &e.Order.Type, &e.Order.Country, &e.Order.Quantity,
			&e.Order.Tariff, &e.Order.PeriodDays, &e.Order.ProxyType, &e.Order.Goal,
			&e.Order.TotalPrice, &e.Order.Status, &e.Order.ProxySellerID, &e.Order.OrderID,
			&e.Order.EndDate, &e.Order.CreatedAt, &e.Order.UpdatedAt, &e.Email, &e.Lang,
		)
		if err != nil {
			zap.L().Error("can't scan expiring order", zap.Error(err))
			return nil, err
		}
		expiring = append(expiring, e)
	}
	return expiring, nil
}
