package paymentrepo

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

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// FindRecent returns the latest payment with the same user, amount and
// method since the given time. Gateways redeliver callbacks, so an
// identical payment inside the window is treated as a duplicate.
func (repo *Repository) FindRecent(ctx context.Context, userID string, price decimal.Decimal, method string, since time.Time) (*domain.Payment, error) {
	query := `
        SELECT id, user_id, price, method, inv, created_at
        FROM payments
        WHERE user_id = $1 AND price = $2 AND method = $3 AND created_at >= $4
        ORDER BY created_at DESC
        LIMIT 1
    `
	var payment domain.Payment
	err := repo.db.QueryRow(ctx, query, userID, price, method, since).
		Scan(&payment.ID, &payment.UserID, &payment.Price, &payment.Method, &payment.Inv, &payment.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find recent payment", zap.Error(err))
		return nil, err
	}
	return &payment, nil
}

// FindByInv looks a payment up by gateway invoice id, with no time
// bound: an invoice is credited at most once, ever.
func (repo *Repository) FindByInv(ctx context.Context, inv string) (*domain.Payment, error) {
	query := `
        SELECT id, user_id, price, method, inv, created_at
        FROM payments
        WHERE inv = $1
    `
	var payment domain.Payment
	err := repo.db.QueryRow(ctx, query, inv).
		Scan(&payment.ID, &payment.UserID, &payment.Price, &payment.Method, &payment.Inv, &payment.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find payment by inv", zap.Error(err))
		return nil, err
	}
	return &payment, nil
}

func (repo *Repository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `
        INSERT INTO payments (user_id, price, method, inv)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	err := repo.db.QueryRow(ctx, query, payment.UserID, payment.Price, payment.Method, payment.Inv).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		zap.L().Error("can't save payment", zap.Error(err))
		return nil, err
	}
	return payment, nil
}

func (repo *Repository) FindByUserID(ctx context.Context, userID string) ([]domain.Payment, error) {
	query := `
        SELECT id, user_id, price, method, inv, created_at
        FROM payments
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := repo.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get payments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		err := rows.Scan(&payment.ID, &payment.UserID, &payment.Price, &payment.Method, &payment.Inv, &payment.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan payment row", zap.Error(err))
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}
