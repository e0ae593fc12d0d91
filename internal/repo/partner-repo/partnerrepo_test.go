package partnerrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/proxyluxe/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_CreateTransaction(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("commission recorded", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO partner_transactions (partner_id, amount)")).
			WithArgs("partner-1", decimal.NewFromInt(15)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.CreateTransaction(context.Background(), &domain.PartnerTransaction{
			PartnerID: "partner-1",
			Amount:    decimal.NewFromInt(15),
		})
		assert.NoError(t, err)
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO partner_transactions (partner_id, amount)")).
			WithArgs("partner-1", decimal.NewFromInt(15)).
			WillReturnError(errors.New("db error"))

		err := repo.CreateTransaction(context.Background(), &domain.PartnerTransaction{
			PartnerID: "partner-1",
			Amount:    decimal.NewFromInt(15),
		})
		assert.Error(t, err)
	})
}

func TestRepository_FindTransactionsByPartnerID(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("commissions listed", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "partner_id", "amount", "created_at"}).
			AddRow("tx-1", "partner-1", decimal.NewFromInt(15), time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)).
			AddRow("tx-2", "partner-1", decimal.RequireFromString("1.44"), time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE partner_id = $1")).
			WithArgs("partner-1").
			WillReturnRows(rows)

		txs, err := repo.FindTransactionsByPartnerID(context.Background(), "partner-1")
		assert.NoError(t, err)
		assert.Len(t, txs, 2)
		assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("1.44")))
	})

	t.Run("no commissions", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "partner_id", "amount", "created_at"})
		mock.ExpectQuery(regexp.QuoteMeta("WHERE partner_id = $1")).
			WithArgs("partner-2").
			WillReturnRows(rows)

		txs, err := repo.FindTransactionsByPartnerID(context.Background(), "partner-2")
		assert.NoError(t, err)
		assert.Empty(t, txs)
	})
}
