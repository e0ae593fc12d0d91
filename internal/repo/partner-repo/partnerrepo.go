package partnerrepo

import (
	"context"

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

func (repo *Repository) CreateTransaction(ctx context.Context, tx *domain.PartnerTransaction) error {
	query := `
        INSERT INTO partner_transactions (partner_id, amount)
        VALUES ($1, $2)
    `
	_, err := repo.db.Exec(ctx, query, tx.PartnerID, tx.Amount)
	if err != nil {
		zap.L().Error("can't save partner transaction", zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) FindTransactionsByPartnerID(ctx context.Context, partnerID string) ([]domain.PartnerTransaction, error) {
	query := `
        SELECT id, partner_id, amount, created_at
        FROM partner_transactions
        WHERE partner_id = $1
        ORDER BY created_at DESC
    `
	rows, err := repo.db.Query(ctx, query, partnerID)
	if err != nil {
		zap.L().Error("can't get partner transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var txs []domain.PartnerTransaction
	for rows.Next() {
		var tx domain.PartnerTransaction
		if err := rows.Scan(&tx.ID, &tx.PartnerID, &tx.Amount, &tx.CreatedAt); err != nil {
			zap.L().Error("can't scan partner transaction", zap.Error(err))
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
