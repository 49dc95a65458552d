package postgres

import (
	"context"

	"github.com/frahmantamala/leave-management/internal/accrual"
	"github.com/frahmantamala/leave-management/internal/balance"
	balancePostgres "github.com/frahmantamala/leave-management/internal/balance/postgres"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"gorm.io/gorm"
)

type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

var _ accrual.Transactor = (*Transactor)(nil)

func (t *Transactor) WithinTx(ctx context.Context, fn func(tx accrual.Tx) error) error {
	return database.WithinTransaction(ctx, t.db, func(tx *gorm.DB) error {
		return fn(accrual.Tx{
			Runs:   NewRunRepository(tx),
			Ledger: balance.NewLedger(balancePostgres.NewBalanceRepository(tx)),
		})
	})
}
