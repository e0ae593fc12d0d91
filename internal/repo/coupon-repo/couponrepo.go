package couponrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/proxyluxe/backend/internal/domain"
	"github.com/proxyluxe/backend/internal/pg"
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

func (repo *Repository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
        SELECT code, discount, "limit"
        FROM coupons
        WHERE code = $1
    `
	var coupon domain.Coupon
	err := repo.db.QueryRow(ctx, query, code).Scan(&coupon.Code, &coupon.Discount, &coupon.Limit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find coupon", zap.Error(err))
		return nil, err
	}
	return &coupon, nil
}

// Consume burns one use of the coupon. The guarded decrement makes an
// exhausted coupon report false instead of going negative.
func (repo *Repository) Consume(ctx context.Context, code string) (bool, error) {
	query := `
        UPDATE coupons
        SET "limit" = "limit" - 1
        WHERE code = $1 AND "limit" > 0
    `
	tag, err := repo.db.Exec(ctx, query, code)
	if err != nil {
		zap.L().Error("can't consume coupon", zap.String("code", code), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
