package postgres

import (
	"context"

	"github.com/frahmantamala/leave-management/internal/approval"
	approvalPostgres "github.com/frahmantamala/leave-management/internal/approval/postgres"
	"github.com/frahmantamala/leave-management/internal/balance"
	balancePostgres "github.com/frahmantamala/leave-management/internal/balance/postgres"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"github.com/frahmantamala/leave-management/internal/leave"
	"gorm.io/gorm"
)

// Transactor binds the request, approval and balance stores to one GORM
// transaction per state transition.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

var _ leave.Transactor = (*Transactor)(nil)

func (t *Transactor) WithinTx(ctx context.Context, fn func(tx leave.Tx) error) error {
	return database.WithinTransaction(ctx, t.db, func(tx *gorm.DB) error {
		return fn(leave.Tx{
			Requests: NewLeaveRepository(tx),
			Flow:     approval.NewFlow(approvalPostgres.NewApprovalRepository(tx)),
			Ledger:   balance.NewLedger(balancePostgres.NewBalanceRepository(tx)),
		})
	})
}
