package userrepo

import (
	"context"
	"errors"

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

func (repo *Repository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
        SELECT id, email, password_hash, balance, lang, is_verified, created_at
        FROM users
        WHERE id = $1
    `
	var user domain.User
	err := repo.db.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Balance, &user.Lang, &user.IsVerified, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
        SELECT id, email, password_hash, balance, lang, is_verified, created_at
        FROM users
        WHERE email = $1
    `
	var user domain.User
	err := repo.db.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Balance, &user.Lang, &user.IsVerified, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find user by email", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (email, password_hash, lang)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	err := repo.db.QueryRow(ctx, query, user.Email, user.PasswordHash, user.Lang).Scan(&user.ID)
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// DecrementBalance debits the user only when the balance covers the
// amount; the boolean reports whether the debit happened.
func (repo *Repository) DecrementBalance(ctx context.Context, userID string, amount decimal.Decimal) (bool, error) {
	query := `
        UPDATE users
        SET balance = balance - $2
        WHERE id = $1 AND balance >= $2
    `
	tag, err := repo.db.Exec(ctx, query, userID, amount)
	if err != nil {
		zap.L().Error("can't decrement balance", zap.String("userID", userID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (repo *Repository) IncrementBalance(ctx context.Context, userID string, amount decimal.Decimal) error {
	query := `
        UPDATE users
        SET balance = balance + $2
        WHERE id = $1
    `
	tag, err := repo.db.Exec(ctx, query, userID, amount)
	if err != nil {
		zap.L().Error("can't increment balance", zap.String("userID", userID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (repo *Repository) FindReferralByUserID(ctx context.Context, userID string) (*domain.Referral, error) {
	query := `
        SELECT id, partner_id, user_id, created_at
        FROM referrals
        WHERE user_id = $1
    `
	var ref domain.Referral
	err := repo.db.QueryRow(ctx, query, userID).Scan(&ref.ID, &ref.PartnerID, &ref.UserID, &ref.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find referral", zap.Error(err))
		return nil, err
	}
	return &ref, nil
}
