package postgres

import (
	"context"

	"github.com/frahmantamala/leave-management/internal/accrual"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

var _ accrual.RunLedger = (*RunRepository)(nil)

// Claim relies on ON CONFLICT DO NOTHING so a repeat does not abort the
// surrounding postgres transaction.
func (r *RunRepository) Claim(ctx context.Context, job, period string, employeeID int64, runID string) (bool, error) {
	run := &leaveDatamodel.BalanceJobRun{
		Job:        job,
		Period:     period,
		EmployeeID: employeeID,
		RunID:      runID,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(run)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
