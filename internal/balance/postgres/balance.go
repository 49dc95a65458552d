package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/leave-management/internal/balance"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BalanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository expects db to be a transaction handle when the
// repository backs a Ledger, so the row locks last until commit.
func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

var _ balance.Repository = (*BalanceRepository)(nil)

func (r *BalanceRepository) LockEmployee(ctx context.Context, employeeID int64) (*employeeDatamodel.Employee, error) {
	var emp employeeDatamodel.Employee
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", employeeID).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &emp, nil
}

func (r *BalanceRepository) FindForUpdate(ctx context.Context, employeeID, leaveTypeID int64) (*leaveDatamodel.LeaveBalance, error) {
	return r.find(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), employeeID, leaveTypeID)
}

func (r *BalanceRepository) Find(ctx context.Context, employeeID, leaveTypeID int64) (*leaveDatamodel.LeaveBalance, error) {
	return r.find(ctx, r.db.WithContext(ctx), employeeID, leaveTypeID)
}

func (r *BalanceRepository) find(ctx context.Context, q *gorm.DB, employeeID, leaveTypeID int64) (*leaveDatamodel.LeaveBalance, error) {
	var b leaveDatamodel.LeaveBalance
	err := q.Where("employee_id = ? AND leave_type_id = ?", employeeID, leaveTypeID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BalanceRepository) Insert(ctx context.Context, b *leaveDatamodel.LeaveBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BalanceRepository) SetBalance(ctx context.Context, id int64, value int) error {
	return r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveBalance{}).
		Where("id = ?", id).
		Update("balance", value).Error
}

func (r *BalanceRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*leaveDatamodel.LeaveBalance, error) {
	var rows []*leaveDatamodel.LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("leave_type_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *BalanceRepository) SumByEmployee(ctx context.Context, employeeID int64) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveBalance{}).
		Where("employee_id = ?", employeeID).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	return total, err
}

func (r *BalanceRepository) AddToEmployeeTotal(ctx context.Context, employeeID int64, delta int) error {
	return r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Where("id = ?", employeeID).
		Update("total_leave_balance", gorm.Expr("total_leave_balance + ?", delta)).Error
}

func (r *BalanceRepository) SetEmployeeTotal(ctx context.Context, employeeID int64, total int) error {
	return r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Where("id = ?", employeeID).
		Update("total_leave_balance", total).Error
}

func (r *BalanceRepository) ResetNonCarryForward(ctx context.Context, employeeID int64) (int64, error) {
	nonCarry := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveType{}).
		Select("id").
		Where("is_carry_forward = ?", false)

	res := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveBalance{}).
		Where("employee_id = ? AND leave_type_id IN (?)", employeeID, nonCarry).
		Update("balance", 0)
	return res.RowsAffected, res.Error
}

func (r *BalanceRepository) EmployeeIDsWithBalances(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveBalance{}).
		Distinct().
		Order("employee_id ASC").
		Pluck("employee_id", &ids).Error
	return ids, err
}
